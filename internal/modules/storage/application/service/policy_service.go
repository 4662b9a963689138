package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"GrainHero/internal/config"
	"GrainHero/internal/modules/storage/application/dto/request"
	"GrainHero/internal/modules/storage/domain/entity"
	"GrainHero/internal/modules/storage/domain/repository"
	"GrainHero/pkg/redis"
	"GrainHero/pkg/xerr"
	"GrainHero/pkg/zlog"

	"go.uber.org/zap"
)

const policyCachePrefix = "grainhero:policy:"

// PolicyService resolves tenant policy with engine defaults applied. Results
// are cached in Redis when it is connected.
type PolicyService interface {
	Resolve(ctx context.Context, tenantID string) (entity.Policy, error)
	Update(ctx context.Context, tenantID string, req request.UpdatePolicyRequest) (entity.Policy, error)
	// RequireActiveTenant returns NotFound for unknown tenants and Forbidden
	// for suspended ones.
	RequireActiveTenant(ctx context.Context, tenantID string) error
}

type policyServiceImpl struct {
	tenantRepo repository.TenantRepository
	defaults   config.EngineConfig
	cacheTTL   time.Duration
}

func NewPolicyService(tenantRepo repository.TenantRepository, defaults config.EngineConfig) PolicyService {
	ttl := time.Duration(defaults.PolicyCacheSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &policyServiceImpl{tenantRepo: tenantRepo, defaults: defaults, cacheTTL: ttl}
}

func (s *policyServiceImpl) Resolve(ctx context.Context, tenantID string) (entity.Policy, error) {
	if cached, ok := s.fromCache(ctx, tenantID); ok {
		return cached, nil
	}

	row, err := s.tenantRepo.GetPolicy(ctx, tenantID)
	if err != nil {
		zlog.Error("load tenant policy failed", zap.String("tenant_id", tenantID), zap.Error(err))
		return entity.Policy{}, xerr.ErrServerError
	}
	p := s.merge(tenantID, row)
	s.toCache(ctx, p)
	return p, nil
}

func (s *policyServiceImpl) Update(ctx context.Context, tenantID string, req request.UpdatePolicyRequest) (entity.Policy, error) {
	if req.StalenessWindowSeconds < 0 || req.DedupWindowSeconds < 0 {
		return entity.Policy{}, xerr.ErrParam
	}
	row := &entity.TenantPolicy{
		TenantId:               tenantID,
		AutoHoldOnCritical:     req.AutoHoldOnCritical,
		StalenessWindowSeconds: req.StalenessWindowSeconds,
		DedupWindowSeconds:     req.DedupWindowSeconds,
	}
	if err := s.tenantRepo.SavePolicy(ctx, row); err != nil {
		zlog.Error("save tenant policy failed", zap.String("tenant_id", tenantID), zap.Error(err))
		return entity.Policy{}, xerr.ErrServerError
	}
	if redis.IsConnected() {
		if _, err := redis.Del(ctx, policyCachePrefix+tenantID); err != nil {
			zlog.Warn("policy cache invalidation failed", zap.String("tenant_id", tenantID), zap.Error(err))
		}
	}
	return s.merge(tenantID, row), nil
}

func (s *policyServiceImpl) RequireActiveTenant(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		return xerr.ErrForbidden
	}
	t, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		zlog.Error("load tenant failed", zap.String("tenant_id", tenantID), zap.Error(err))
		return xerr.ErrServerError
	}
	if t == nil {
		return xerr.New(xerr.Forbidden, "unknown tenant")
	}
	if !t.Active {
		return xerr.New(xerr.Forbidden, "tenant is inactive")
	}
	return nil
}

func (s *policyServiceImpl) merge(tenantID string, row *entity.TenantPolicy) entity.Policy {
	p := entity.Policy{
		TenantId:           tenantID,
		AutoHoldOnCritical: s.defaults.AutoHoldOnCritical,
		Staleness:          s.defaults.Staleness(),
		DedupWindow:        s.defaults.DedupWindow(),
	}
	if row == nil {
		return p
	}
	p.AutoHoldOnCritical = row.AutoHoldOnCritical
	if row.StalenessWindowSeconds > 0 {
		p.Staleness = time.Duration(row.StalenessWindowSeconds) * time.Second
	}
	if row.DedupWindowSeconds > 0 {
		p.DedupWindow = time.Duration(row.DedupWindowSeconds) * time.Second
	}
	return p
}

func (s *policyServiceImpl) fromCache(ctx context.Context, tenantID string) (entity.Policy, bool) {
	if !redis.IsConnected() {
		return entity.Policy{}, false
	}
	raw, err := redis.Get(ctx, policyCachePrefix+tenantID)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zlog.Warn("policy cache read failed", zap.String("tenant_id", tenantID), zap.Error(err))
		}
		return entity.Policy{}, false
	}
	var p entity.Policy
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return entity.Policy{}, false
	}
	return p, true
}

func (s *policyServiceImpl) toCache(ctx context.Context, p entity.Policy) {
	if !redis.IsConnected() {
		return
	}
	b, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := redis.Set(ctx, policyCachePrefix+p.TenantId, b, s.cacheTTL); err != nil {
		zlog.Warn("policy cache write failed", zap.String("tenant_id", p.TenantId), zap.Error(err))
	}
}
