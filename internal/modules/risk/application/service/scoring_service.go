package service

import (
	"context"
	"errors"
	"time"

	"GrainHero/internal/modules/risk/domain/entity"
	"GrainHero/internal/modules/risk/domain/repository"
	"GrainHero/internal/modules/risk/domain/scoring"
	"GrainHero/internal/modules/risk/infrastructure/model"
	storageEntity "GrainHero/internal/modules/storage/domain/entity"
	"GrainHero/internal/modules/storage/domain/lifecycle"
	storageRepository "GrainHero/internal/modules/storage/domain/repository"
	"GrainHero/pkg/metrics"
	"GrainHero/pkg/util"
	"GrainHero/pkg/xerr"
	"GrainHero/pkg/zlog"

	"go.uber.org/zap"
)

const historyDepth = 10

// ErrBatchTerminal is returned when scoring is requested for a batch that
// can no longer be assessed.
var ErrBatchTerminal = xerr.WithReason(xerr.InvalidTransition, "batch_terminal", "batch is in a terminal status")

var errRace = errors.New("batch version changed during assessment")

// AssessOutcome is a committed assessment and the level it replaced.
type AssessOutcome struct {
	Assessment    *entity.RiskAssessment
	Batch         *storageEntity.GrainBatch
	PreviousLevel string
	Stale         []string
	// NoData marks an assessment made without any fresh channel. It carries
	// the previous score and level forward instead of reclassifying.
	NoData bool
}

type ScoringService interface {
	// Assess scores the batch from its silo snapshot and makes the result
	// the batch's current assessment.
	Assess(ctx context.Context, tenantID, batchID string, staleness time.Duration) (*AssessOutcome, error)
	Current(ctx context.Context, tenantID, batchID string) (*entity.RiskAssessment, error)
	History(ctx context.Context, tenantID, batchID string, limit int) ([]entity.RiskAssessment, error)
}

type scoringServiceImpl struct {
	batchRepo      storageRepository.BatchRepository
	siloRepo       storageRepository.SiloRepository
	assessmentRepo repository.AssessmentRepository
	uow            repository.RiskUnitOfWork
	scorer         scoring.Scorer
	maxRetries     int
	now            func() time.Time
}

func NewScoringService(batchRepo storageRepository.BatchRepository, siloRepo storageRepository.SiloRepository, assessmentRepo repository.AssessmentRepository, uow repository.RiskUnitOfWork, scorer scoring.Scorer, maxRetries int) ScoringService {
	if scorer == nil {
		scorer = model.NewThresholdModel()
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &scoringServiceImpl{
		batchRepo:      batchRepo,
		siloRepo:       siloRepo,
		assessmentRepo: assessmentRepo,
		uow:            uow,
		scorer:         scorer,
		maxRetries:     maxRetries,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *scoringServiceImpl) Assess(ctx context.Context, tenantID, batchID string, staleness time.Duration) (*AssessOutcome, error) {
	for attempt := 0; ; attempt++ {
		out, err := s.assessOnce(ctx, tenantID, batchID, staleness)
		if err == nil {
			metrics.AssessmentsWritten.WithLabelValues(out.Assessment.RiskLevel).Inc()
			return out, nil
		}
		if !errors.Is(err, errRace) {
			return nil, s.wrap(err, tenantID, batchID)
		}
		metrics.AssessmentRaces.Inc()
		if attempt >= s.maxRetries {
			zlog.Warn("assessment retries exhausted",
				zap.String("tenant_id", tenantID), zap.String("batch_id", batchID), zap.Int("attempts", attempt+1))
			return nil, xerr.ErrStaleAssessment
		}
		zlog.Debug("assessment race, retrying", zap.String("batch_id", batchID), zap.Int("attempt", attempt+1))
	}
}

func (s *scoringServiceImpl) assessOnce(ctx context.Context, tenantID, batchID string, staleness time.Duration) (*AssessOutcome, error) {
	batch, err := s.batchRepo.GetByID(ctx, tenantID, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, xerr.ErrNotFound
	}
	if lifecycle.IsTerminal(batch.Status) {
		return nil, ErrBatchTerminal
	}
	silo, err := s.siloRepo.GetByID(ctx, tenantID, batch.SiloId)
	if err != nil {
		return nil, err
	}
	if silo == nil {
		return nil, xerr.ErrNotFound
	}
	past, err := s.assessmentRepo.ListHistory(ctx, tenantID, batchID, historyDepth)
	if err != nil {
		return nil, err
	}

	now := s.now()
	history := make([]scoring.Point, 0, len(past))
	for _, a := range past {
		history = append(history, scoring.Point{Score: a.RiskScore, Humidity: a.Humidity, Co2: a.Co2, ComputedAt: a.ComputedAt})
	}
	snap := silo.Snapshot()
	cond := scoring.Conditions{
		Temperature: scoring.Reading{Value: snap.Temperature.Value, At: snap.Temperature.At},
		Humidity:    scoring.Reading{Value: snap.Humidity.Value, At: snap.Humidity.At},
		Co2:         scoring.Reading{Value: snap.Co2.Value, At: snap.Co2.At},
	}
	result, err := scoring.Evaluate(ctx, s.scorer, cond, batch.GrainType,
		model.ElapsedSince(batch.IntakeDate, now), history, now, staleness)
	if err != nil {
		return nil, err
	}

	a := &entity.RiskAssessment{
		Id:              util.GenerateID("A"),
		TenantId:        tenantID,
		BatchId:         batch.Id,
		SiloId:          silo.Id,
		RiskScore:       result.Score,
		RiskLevel:       result.Level,
		SpoilageLabel:   result.Label,
		ConfidenceScore: result.Confidence,
		ModelName:       s.scorer.Name(),
		Temperature:     result.Input.Temperature,
		Humidity:        result.Input.Humidity,
		Co2:             result.Input.Co2,
		IsCurrent:       true,
		ComputedAt:      now,
	}
	a.SetFactors(result.Factors)
	if result.NoData && batch.RiskLevel != "" {
		a.RiskScore = batch.RiskScore
		a.RiskLevel = batch.RiskLevel
		a.SpoilageLabel = batch.SpoilageLabel
	}

	previous := batch.RiskLevel
	err = s.uow.Transaction(ctx, func(assessments repository.AssessmentRepository, batches storageRepository.BatchRepository) error {
		if _, err := assessments.ClearCurrent(ctx, batch.Id); err != nil {
			return err
		}
		if err := assessments.Insert(ctx, a); err != nil {
			return err
		}
		ok, err := batches.UpdateRisk(ctx, batch.Id, batch.Version, storageRepository.RiskColumns{
			Score:        a.RiskScore,
			Label:        a.SpoilageLabel,
			Level:        a.RiskLevel,
			AssessmentId: a.Id,
		})
		if err != nil {
			return err
		}
		if !ok {
			return errRace
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	batch.RiskScore = a.RiskScore
	batch.RiskLevel = a.RiskLevel
	batch.SpoilageLabel = a.SpoilageLabel
	batch.CurrentAssessmentId = &a.Id
	batch.Version++
	zlog.Info("risk assessed",
		zap.String("tenant_id", tenantID), zap.String("batch_id", batch.Id),
		zap.Float64("score", a.RiskScore), zap.String("level", a.RiskLevel),
		zap.Float64("confidence", a.ConfidenceScore), zap.Strings("factors", result.Factors))
	return &AssessOutcome{Assessment: a, Batch: batch, PreviousLevel: previous, Stale: result.Stale, NoData: result.NoData}, nil
}

func (s *scoringServiceImpl) Current(ctx context.Context, tenantID, batchID string) (*entity.RiskAssessment, error) {
	if err := s.requireBatch(ctx, tenantID, batchID); err != nil {
		return nil, err
	}
	a, err := s.assessmentRepo.GetCurrent(ctx, tenantID, batchID)
	if err != nil {
		zlog.Error("load current assessment failed", zap.String("batch_id", batchID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if a == nil {
		return nil, xerr.New(xerr.NotFound, "batch has not been assessed yet")
	}
	return a, nil
}

func (s *scoringServiceImpl) History(ctx context.Context, tenantID, batchID string, limit int) ([]entity.RiskAssessment, error) {
	if err := s.requireBatch(ctx, tenantID, batchID); err != nil {
		return nil, err
	}
	out, err := s.assessmentRepo.ListHistory(ctx, tenantID, batchID, limit)
	if err != nil {
		zlog.Error("load assessment history failed", zap.String("batch_id", batchID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return out, nil
}

func (s *scoringServiceImpl) requireBatch(ctx context.Context, tenantID, batchID string) error {
	b, err := s.batchRepo.GetByID(ctx, tenantID, batchID)
	if err != nil {
		zlog.Error("load batch failed", zap.String("batch_id", batchID), zap.Error(err))
		return xerr.ErrServerError
	}
	if b == nil {
		return xerr.ErrNotFound
	}
	return nil
}

func (s *scoringServiceImpl) wrap(err error, tenantID, batchID string) error {
	var ce *xerr.CodeError
	if errors.As(err, &ce) {
		return ce
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	zlog.Error("assessment failed",
		zap.String("tenant_id", tenantID), zap.String("batch_id", batchID), zap.Error(err))
	return xerr.ErrServerError
}
