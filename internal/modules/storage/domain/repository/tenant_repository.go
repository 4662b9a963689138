package repository

import (
	"context"

	"GrainHero/internal/modules/storage/domain/entity"
)

type TenantRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Tenant, error)
	Create(ctx context.Context, t *entity.Tenant) error
	GetPolicy(ctx context.Context, tenantID string) (*entity.TenantPolicy, error)
	SavePolicy(ctx context.Context, p *entity.TenantPolicy) error
}
