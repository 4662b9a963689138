package service

import (
	"context"
	"errors"
	"time"

	alertService "GrainHero/internal/modules/alert/application/service"
	"GrainHero/internal/modules/alert/domain/dedup"
	riskService "GrainHero/internal/modules/risk/application/service"
	riskEntity "GrainHero/internal/modules/risk/domain/entity"
	"GrainHero/internal/modules/risk/domain/scoring"
	storageRequest "GrainHero/internal/modules/storage/application/dto/request"
	storageService "GrainHero/internal/modules/storage/application/service"
	storageEntity "GrainHero/internal/modules/storage/domain/entity"
	"GrainHero/internal/modules/storage/domain/lifecycle"
	storageRepository "GrainHero/internal/modules/storage/domain/repository"
	telemetryRequest "GrainHero/internal/modules/telemetry/application/dto/request"
	telemetryService "GrainHero/internal/modules/telemetry/application/service"
	telemetryEntity "GrainHero/internal/modules/telemetry/domain/entity"
	"GrainHero/pkg/keylock"
	"GrainHero/pkg/xerr"
	"GrainHero/pkg/zlog"

	"go.uber.org/zap"
)

const autoHoldReason = "critical spoilage risk"

// IngestOutcome is everything one accepted reading caused.
type IngestOutcome struct {
	Reading       *telemetryEntity.EnvironmentalReading
	Duplicate     bool
	Advanced      bool
	Assessment    *riskEntity.RiskAssessment
	Transition    *storageService.TransitionResult
	Notifications []*alertService.DispatchResult
}

// RecomputeOutcome is the result of an on-demand assessment.
type RecomputeOutcome struct {
	Assessment    *riskEntity.RiskAssessment
	Transition    *storageService.TransitionResult
	Notifications []*alertService.DispatchResult
}

// PipelineService runs the engine units. Every unit that touches a silo
// holds that silo's lock for its whole duration.
type PipelineService interface {
	Ingest(ctx context.Context, tenantID string, req telemetryRequest.ReadingRequest) (*IngestOutcome, error)
	Recompute(ctx context.Context, tenantID, batchID string) (*RecomputeOutcome, error)
	Intake(ctx context.Context, tenantID, actor string, req storageRequest.IntakeRequest) (*storageEntity.GrainBatch, error)
	Transition(ctx context.Context, tenantID, actor, batchID string, req storageRequest.TransitionRequest) (*storageService.TransitionResult, error)
	// SweepStaleSensors raises a sensor health notification for every silo
	// whose recorded channels went stale. It returns the number of silos
	// reported.
	SweepStaleSensors(ctx context.Context) (int, error)
	RunRetention(ctx context.Context, batchRetention, notificationRetention time.Duration) error
}

type pipelineServiceImpl struct {
	normalizer    telemetryService.NormalizerService
	scoring       riskService.ScoringService
	lifecycle     storageService.LifecycleService
	policies      storageService.PolicyService
	dispatcher    alertService.DispatcherService
	notifications alertService.NotificationService
	siloRepo      storageRepository.SiloRepository
	locker        keylock.Locker
	timeout       time.Duration
	now           func() time.Time
}

func NewPipelineService(
	normalizer telemetryService.NormalizerService,
	scoringSvc riskService.ScoringService,
	lifecycleSvc storageService.LifecycleService,
	policies storageService.PolicyService,
	dispatcher alertService.DispatcherService,
	notifications alertService.NotificationService,
	siloRepo storageRepository.SiloRepository,
	locker keylock.Locker,
	timeout time.Duration,
) PipelineService {
	if locker == nil {
		locker = keylock.New()
	}
	return &pipelineServiceImpl{
		normalizer:    normalizer,
		scoring:       scoringSvc,
		lifecycle:     lifecycleSvc,
		policies:      policies,
		dispatcher:    dispatcher,
		notifications: notifications,
		siloRepo:      siloRepo,
		locker:        locker,
		timeout:       timeout,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func siloKey(id string) string {
	return "silo:" + id
}

func (s *pipelineServiceImpl) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *pipelineServiceImpl) Ingest(ctx context.Context, tenantID string, req telemetryRequest.ReadingRequest) (*IngestOutcome, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	unlock, err := s.locker.Lock(ctx, siloKey(req.SiloId))
	if err != nil {
		return nil, err
	}
	defer unlock()

	res, err := s.normalizer.Normalize(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}
	out := &IngestOutcome{Reading: res.Reading, Duplicate: res.Duplicate, Advanced: res.Advanced}
	if !res.Advanced || res.Silo == nil || !res.Silo.HasCurrentBatch() {
		return out, nil
	}

	policy, err := s.policies.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	assessed, err := s.assess(ctx, tenantID, *res.Silo.CurrentBatchId, policy)
	if errors.Is(err, riskService.ErrBatchTerminal) {
		zlog.Debug("silo batch is terminal, skip scoring",
			zap.String("silo_id", res.Silo.Id), zap.String("batch_id", *res.Silo.CurrentBatchId))
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	out.Assessment = assessed.Assessment
	out.Transition = assessed.Transition
	out.Notifications = assessed.Notifications
	return out, nil
}

func (s *pipelineServiceImpl) Recompute(ctx context.Context, tenantID, batchID string) (*RecomputeOutcome, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	batch, err := s.lifecycle.GetBatch(ctx, tenantID, batchID)
	if err != nil {
		return nil, err
	}
	unlock, err := s.locker.Lock(ctx, siloKey(batch.SiloId))
	if err != nil {
		return nil, err
	}
	defer unlock()

	policy, err := s.policies.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.assess(ctx, tenantID, batchID, policy)
}

// assess scores the batch, applies auto-hold and raises the resulting
// notifications. The caller holds the silo lock.
func (s *pipelineServiceImpl) assess(ctx context.Context, tenantID, batchID string, policy storageEntity.Policy) (*RecomputeOutcome, error) {
	res, err := s.scoring.Assess(ctx, tenantID, batchID, policy.Staleness)
	if err != nil {
		return nil, err
	}
	out := &RecomputeOutcome{Assessment: res.Assessment}
	ref := dedup.BatchRef{
		TenantId:  tenantID,
		BatchId:   res.Batch.Id,
		BatchCode: res.Batch.BatchCode,
		SiloId:    res.Batch.SiloId,
	}

	a := res.Assessment
	if res.NoData {
		// nothing new was measured; the carried level was already reported
		return out, nil
	}
	recovery := a.RiskLevel == scoring.LevelLow
	if !recovery || len(res.Stale) == 0 {
		if ev, ok := dedup.FromAssessment(ref, res.PreviousLevel, a.RiskLevel, a.RiskScore, a.Factors(), a.ComputedAt); ok {
			out.Notifications = s.dispatch(ctx, ev, policy, out.Notifications)
		}
	}

	if a.RiskLevel == scoring.LevelCritical && policy.AutoHoldOnCritical &&
		lifecycle.CanTransition(res.Batch.Status, storageEntity.BatchStatusDamaged) {
		tr, err := s.lifecycle.Transition(ctx, tenantID, storageEntity.ActorRiskEngine, batchID, storageEntity.BatchStatusDamaged, autoHoldReason)
		if err != nil {
			zlog.Error("auto-hold transition failed",
				zap.String("tenant_id", tenantID), zap.String("batch_id", batchID), zap.Error(err))
		} else {
			out.Transition = tr
			if ev, ok := dedup.FromTransition(ref, tr.From, tr.To, tr.Actor, s.now()); ok {
				out.Notifications = s.dispatch(ctx, ev, policy, out.Notifications)
			}
		}
	}
	return out, nil
}

// dispatch raises ev and appends the result. Failures are logged: the state
// change that caused the event is already committed.
func (s *pipelineServiceImpl) dispatch(ctx context.Context, ev dedup.Event, policy storageEntity.Policy, acc []*alertService.DispatchResult) []*alertService.DispatchResult {
	r, err := s.dispatcher.Dispatch(ctx, ev, policy.DedupWindow)
	if err != nil {
		zlog.Error("raise notification failed",
			zap.String("tenant_id", ev.TenantId), zap.String("entity_id", ev.EntityId), zap.Error(err))
		return acc
	}
	return append(acc, r)
}

func (s *pipelineServiceImpl) Intake(ctx context.Context, tenantID, actor string, req storageRequest.IntakeRequest) (*storageEntity.GrainBatch, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	unlock, err := s.locker.Lock(ctx, siloKey(req.SiloId))
	if err != nil {
		return nil, err
	}
	defer unlock()

	batch, err := s.lifecycle.Intake(ctx, tenantID, actor, req)
	if err != nil {
		return nil, err
	}

	silo, err := s.siloRepo.GetByID(ctx, tenantID, batch.SiloId)
	if err != nil || silo == nil || silo.Snapshot().Empty() {
		return batch, nil
	}
	policy, err := s.policies.Resolve(ctx, tenantID)
	if err != nil {
		return batch, nil
	}
	if assessed, err := s.assess(ctx, tenantID, batch.Id, policy); err != nil {
		zlog.Warn("initial assessment failed", zap.String("batch_id", batch.Id), zap.Error(err))
	} else if assessed.Transition != nil {
		return assessed.Transition.Batch, nil
	} else if fresh, err := s.lifecycle.GetBatch(ctx, tenantID, batch.Id); err == nil {
		return fresh, nil
	}
	return batch, nil
}

func (s *pipelineServiceImpl) Transition(ctx context.Context, tenantID, actor, batchID string, req storageRequest.TransitionRequest) (*storageService.TransitionResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	batch, err := s.lifecycle.GetBatch(ctx, tenantID, batchID)
	if err != nil {
		return nil, err
	}
	unlock, err := s.locker.Lock(ctx, siloKey(batch.SiloId))
	if err != nil {
		return nil, err
	}
	defer unlock()

	tr, err := s.lifecycle.Transition(ctx, tenantID, actor, batchID, req.Status, req.Reason)
	if err != nil {
		return nil, err
	}
	ref := dedup.BatchRef{TenantId: tenantID, BatchId: tr.Batch.Id, BatchCode: tr.Batch.BatchCode, SiloId: tr.Batch.SiloId}
	if ev, ok := dedup.FromTransition(ref, tr.From, tr.To, actor, s.now()); ok {
		policy, err := s.policies.Resolve(ctx, tenantID)
		if err == nil {
			s.dispatch(ctx, ev, policy, nil)
		}
	}
	return tr, nil
}

func (s *pipelineServiceImpl) SweepStaleSensors(ctx context.Context) (int, error) {
	silos, err := s.siloRepo.ListWithSnapshot(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now()
	policies := make(map[string]storageEntity.Policy)
	reported := 0
	for i := range silos {
		silo := &silos[i]
		policy, ok := policies[silo.TenantId]
		if !ok {
			policy, err = s.policies.Resolve(ctx, silo.TenantId)
			if err != nil {
				zlog.Warn("resolve policy failed", zap.String("tenant_id", silo.TenantId), zap.Error(err))
				continue
			}
			policies[silo.TenantId] = policy
		}
		stale := StaleChannels(silo.Snapshot(), now, policy.Staleness)
		ev, ok := dedup.FromSensorHealth(silo.TenantId, silo.Id, silo.Name, stale, now)
		if !ok {
			continue
		}
		if _, err := s.dispatcher.Dispatch(ctx, ev, policy.DedupWindow); err != nil {
			zlog.Error("sensor health notification failed", zap.String("silo_id", silo.Id), zap.Error(err))
			continue
		}
		reported++
	}
	return reported, nil
}

// StaleChannels lists the recorded channels of snap older than window.
// Channels that never reported are not stale.
func StaleChannels(snap storageEntity.Snapshot, now time.Time, window time.Duration) []string {
	var out []string
	check := func(name string, ch storageEntity.Channel) {
		if ch.Value != nil && !ch.Fresh(now, window) {
			out = append(out, name)
		}
	}
	check(scoring.ChannelTemperature, snap.Temperature)
	check(scoring.ChannelHumidity, snap.Humidity)
	check(scoring.ChannelCo2, snap.Co2)
	return out
}

func (s *pipelineServiceImpl) RunRetention(ctx context.Context, batchRetention, notificationRetention time.Duration) error {
	var errs []error
	if batchRetention > 0 {
		n, err := s.lifecycle.PurgeTerminal(ctx, s.now().Add(-batchRetention))
		if err != nil {
			errs = append(errs, err)
		} else if n > 0 {
			zlog.Info("terminal batches purged", zap.Int64("count", n))
		}
	}
	if notificationRetention > 0 {
		if _, err := s.notifications.Purge(ctx, notificationRetention); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// IsRejection reports whether err is a client error that retrying cannot fix.
func IsRejection(err error) bool {
	var ce *xerr.CodeError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Code != xerr.InternalServerError && ce.Code != xerr.StaleAssessmentRace
}
