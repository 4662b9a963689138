package repository

import (
	"context"
	"time"

	storageRepository "GrainHero/internal/modules/storage/domain/repository"
	"GrainHero/internal/modules/telemetry/domain/entity"
)

type ReadingRepository interface {
	// Insert stores r unless a reading with the same silo, device and
	// captured_at exists. It reports whether a row was written.
	Insert(ctx context.Context, r *entity.EnvironmentalReading) (bool, error)
	ListBySilo(ctx context.Context, tenantID, siloID string, since time.Time, limit int) ([]entity.EnvironmentalReading, error)
}

// TelemetryUnitOfWork binds reading storage and the silo snapshot to one
// transaction.
type TelemetryUnitOfWork interface {
	Transaction(ctx context.Context, fn func(readings ReadingRepository, silos storageRepository.SiloRepository) error) error
}
