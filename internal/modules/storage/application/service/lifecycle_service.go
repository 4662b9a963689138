package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"GrainHero/internal/modules/storage/application/dto/request"
	"GrainHero/internal/modules/storage/domain/entity"
	"GrainHero/internal/modules/storage/domain/lifecycle"
	"GrainHero/internal/modules/storage/domain/repository"
	"GrainHero/pkg/util"
	"GrainHero/pkg/xerr"
	"GrainHero/pkg/zlog"

	"go.uber.org/zap"
)

// TransitionResult describes a committed status change.
type TransitionResult struct {
	Batch *entity.GrainBatch
	From  string
	To    string
	Actor string
}

// LifecycleService owns batch status changes and the silo occupancy they
// imply. Callers serialize on the silo before invoking it.
type LifecycleService interface {
	Intake(ctx context.Context, tenantID, actor string, req request.IntakeRequest) (*entity.GrainBatch, error)
	Transition(ctx context.Context, tenantID, actor, batchID, target, reason string) (*TransitionResult, error)
	GetBatch(ctx context.Context, tenantID, batchID string) (*entity.GrainBatch, error)
	GetSilo(ctx context.Context, tenantID, siloID string) (*entity.Silo, error)
	History(ctx context.Context, tenantID, batchID string) ([]entity.BatchTransition, error)
	// PurgeTerminal soft-deletes batches that reached a terminal status
	// before cutoff.
	PurgeTerminal(ctx context.Context, cutoff time.Time) (int64, error)
}

type lifecycleServiceImpl struct {
	siloRepo       repository.SiloRepository
	batchRepo      repository.BatchRepository
	transitionRepo repository.TransitionRepository
	uow            repository.StorageUnitOfWork
	now            func() time.Time
}

func NewLifecycleService(siloRepo repository.SiloRepository, batchRepo repository.BatchRepository, transitionRepo repository.TransitionRepository, uow repository.StorageUnitOfWork) LifecycleService {
	return &lifecycleServiceImpl{
		siloRepo:       siloRepo,
		batchRepo:      batchRepo,
		transitionRepo: transitionRepo,
		uow:            uow,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

var errVersionConflict = errors.New("batch version changed")

func (s *lifecycleServiceImpl) Intake(ctx context.Context, tenantID, actor string, req request.IntakeRequest) (*entity.GrainBatch, error) {
	req.BatchCode = strings.TrimSpace(req.BatchCode)
	req.GrainType = strings.TrimSpace(req.GrainType)
	if req.BatchCode == "" || req.GrainType == "" || req.SiloId == "" || req.QuantityKg <= 0 {
		return nil, xerr.ErrParam
	}
	now := s.now()
	intakeDate := req.IntakeDate.UTC()
	if req.IntakeDate.IsZero() {
		intakeDate = now
	}

	batch := &entity.GrainBatch{
		Id:         util.GenerateID("B"),
		TenantId:   tenantID,
		BatchCode:  req.BatchCode,
		GrainType:  req.GrainType,
		QuantityKg: req.QuantityKg,
		IntakeDate: intakeDate,
		SiloId:     req.SiloId,
		Status:     entity.BatchStatusStored,
	}

	err := s.uow.Transaction(ctx, func(silos repository.SiloRepository, batches repository.BatchRepository, transitions repository.TransitionRepository) error {
		silo, err := silos.GetByIDForUpdate(ctx, tenantID, req.SiloId)
		if err != nil {
			return err
		}
		if err := checkEnterStored(silo, batch); err != nil {
			return err
		}
		if err := batches.Create(ctx, batch); err != nil {
			return err
		}
		if err := silos.Occupy(ctx, silo.Id, batch.Id, batch.QuantityKg); err != nil {
			return err
		}
		return transitions.Create(ctx, &entity.BatchTransition{
			Id:       util.GenerateID("X"),
			TenantId: tenantID,
			BatchId:  batch.Id,
			SiloId:   silo.Id,
			ToStatus: entity.BatchStatusStored,
			Actor:    actor,
			Reason:   "intake",
		})
	})
	if err != nil {
		return nil, s.wrap(err, "intake", zap.String("tenant_id", tenantID), zap.String("silo_id", req.SiloId))
	}
	zlog.Info("batch intake",
		zap.String("tenant_id", tenantID), zap.String("batch_id", batch.Id),
		zap.String("silo_id", batch.SiloId), zap.Float64("quantity_kg", batch.QuantityKg))
	return batch, nil
}

func (s *lifecycleServiceImpl) Transition(ctx context.Context, tenantID, actor, batchID, target, reason string) (*TransitionResult, error) {
	if !lifecycle.IsKnown(target) {
		return nil, xerr.WithReason(xerr.InvalidTransition, "unknown_status", "unknown target status "+target)
	}
	var result *TransitionResult
	err := s.uow.Transaction(ctx, func(silos repository.SiloRepository, batches repository.BatchRepository, transitions repository.TransitionRepository) error {
		b, err := batches.GetByIDForUpdate(ctx, tenantID, batchID)
		if err != nil {
			return err
		}
		if b == nil {
			return xerr.ErrNotFound
		}
		from := b.Status
		if !lifecycle.CanTransition(from, target) {
			return xerr.WithReason(xerr.InvalidTransition, from+"->"+target,
				"batch cannot move from "+from+" to "+target)
		}

		switch {
		case lifecycle.EntersStored(from, target):
			silo, err := silos.GetByIDForUpdate(ctx, tenantID, b.SiloId)
			if err != nil {
				return err
			}
			if err := checkEnterStored(silo, b); err != nil {
				return err
			}
			if err := silos.Occupy(ctx, silo.Id, b.Id, b.QuantityKg); err != nil {
				return err
			}
		case lifecycle.LeavesStored(from, target):
			released, err := silos.Release(ctx, b.SiloId, b.Id, b.QuantityKg)
			if err != nil {
				return err
			}
			if !released {
				zlog.Warn("silo did not hold leaving batch",
					zap.String("batch_id", b.Id), zap.String("silo_id", b.SiloId))
			}
		}

		var terminalAt *time.Time
		if lifecycle.IsTerminal(target) {
			now := s.now()
			terminalAt = &now
		}
		ok, err := batches.UpdateStatus(ctx, b, target, terminalAt)
		if err != nil {
			return err
		}
		if !ok {
			return errVersionConflict
		}
		if err := transitions.Create(ctx, &entity.BatchTransition{
			Id:         util.GenerateID("X"),
			TenantId:   tenantID,
			BatchId:    b.Id,
			SiloId:     b.SiloId,
			FromStatus: from,
			ToStatus:   target,
			Actor:      actor,
			Reason:     reason,
		}); err != nil {
			return err
		}
		result = &TransitionResult{Batch: b, From: from, To: target, Actor: actor}
		return nil
	})
	if err != nil {
		return nil, s.wrap(err, "transition", zap.String("tenant_id", tenantID), zap.String("batch_id", batchID))
	}
	zlog.Info("batch transition",
		zap.String("tenant_id", tenantID), zap.String("batch_id", batchID),
		zap.String("from", result.From), zap.String("to", result.To), zap.String("actor", actor))
	return result, nil
}

// checkEnterStored applies the entry rules for the stored state. Capacity is
// checked before availability.
func checkEnterStored(silo *entity.Silo, b *entity.GrainBatch) error {
	if silo == nil {
		return xerr.WithReason(xerr.SiloUnavailable, "unknown_silo", "silo not found")
	}
	if silo.CurrentOccupancyKg+b.QuantityKg > silo.CapacityKg {
		return xerr.WithReason(xerr.CapacityExceeded, "insufficient_capacity", "insufficient silo capacity")
	}
	if silo.Status != entity.SiloStatusActive {
		return xerr.WithReason(xerr.SiloUnavailable, "silo_"+silo.Status, "silo is "+silo.Status)
	}
	if silo.HasCurrentBatch() && *silo.CurrentBatchId != b.Id {
		return xerr.WithReason(xerr.SiloUnavailable, "silo_occupied", "silo already holds a batch")
	}
	return nil
}

func (s *lifecycleServiceImpl) GetBatch(ctx context.Context, tenantID, batchID string) (*entity.GrainBatch, error) {
	b, err := s.batchRepo.GetByID(ctx, tenantID, batchID)
	if err != nil {
		zlog.Error("load batch failed", zap.String("batch_id", batchID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if b == nil {
		return nil, xerr.ErrNotFound
	}
	return b, nil
}

func (s *lifecycleServiceImpl) GetSilo(ctx context.Context, tenantID, siloID string) (*entity.Silo, error) {
	silo, err := s.siloRepo.GetByID(ctx, tenantID, siloID)
	if err != nil {
		zlog.Error("load silo failed", zap.String("silo_id", siloID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if silo == nil {
		return nil, xerr.ErrNotFound
	}
	return silo, nil
}

func (s *lifecycleServiceImpl) History(ctx context.Context, tenantID, batchID string) ([]entity.BatchTransition, error) {
	if _, err := s.GetBatch(ctx, tenantID, batchID); err != nil {
		return nil, err
	}
	out, err := s.transitionRepo.ListByBatch(ctx, tenantID, batchID)
	if err != nil {
		zlog.Error("load transitions failed", zap.String("batch_id", batchID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return out, nil
}

func (s *lifecycleServiceImpl) PurgeTerminal(ctx context.Context, cutoff time.Time) (int64, error) {
	var total int64
	for {
		batches, err := s.batchRepo.ListTerminalBefore(ctx, cutoff, 500)
		if err != nil {
			return total, err
		}
		if len(batches) == 0 {
			return total, nil
		}
		ids := make([]string, 0, len(batches))
		for _, b := range batches {
			ids = append(ids, b.Id)
		}
		n, err := s.batchRepo.SoftDelete(ctx, ids)
		if err != nil {
			return total, err
		}
		total += n
		if len(batches) < 500 || n == 0 {
			return total, nil
		}
	}
}

func (s *lifecycleServiceImpl) wrap(err error, op string, fields ...zap.Field) error {
	var ce *xerr.CodeError
	if errors.As(err, &ce) {
		return ce
	}
	if errors.Is(err, errVersionConflict) {
		return xerr.WithReason(xerr.InvalidTransition, "concurrent_update", "batch changed concurrently, retry")
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	zlog.Error(op+" failed", append(fields, zap.Error(err))...)
	return xerr.ErrServerError
}
