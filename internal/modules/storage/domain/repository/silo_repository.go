package repository

import (
	"context"

	"GrainHero/internal/modules/storage/domain/entity"
)

type SiloRepository interface {
	Create(ctx context.Context, s *entity.Silo) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Silo, error)
	// GetByIDForUpdate row-locks the silo for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, tenantID, id string) (*entity.Silo, error)
	ListByTenant(ctx context.Context, tenantID string) ([]entity.Silo, error)
	// ListWithSnapshot returns active silos that have recorded any reading,
	// across tenants. Used by the stale sensor sweep.
	ListWithSnapshot(ctx context.Context) ([]entity.Silo, error)
	// UpdateSnapshot writes the snapshot columns of s if the stored version
	// still equals s.Version, bumping it.
	UpdateSnapshot(ctx context.Context, s *entity.Silo) (bool, error)
	// Occupy places batchID in the silo and adds quantityKg to occupancy.
	Occupy(ctx context.Context, siloID, batchID string, quantityKg float64) error
	// Release clears batchID from the silo and subtracts quantityKg from
	// occupancy, floored at zero.
	Release(ctx context.Context, siloID, batchID string, quantityKg float64) (bool, error)
}
