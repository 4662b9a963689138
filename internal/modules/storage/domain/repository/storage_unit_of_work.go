package repository

import "context"

// StorageUnitOfWork runs fn in one transaction with repositories bound to it.
type StorageUnitOfWork interface {
	Transaction(ctx context.Context, fn func(silos SiloRepository, batches BatchRepository, transitions TransitionRepository) error) error
}
