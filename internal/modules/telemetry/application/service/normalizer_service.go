package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	storageEntity "GrainHero/internal/modules/storage/domain/entity"
	storageRepository "GrainHero/internal/modules/storage/domain/repository"
	"GrainHero/internal/modules/telemetry/application/dto/request"
	"GrainHero/internal/modules/telemetry/domain/entity"
	"GrainHero/internal/modules/telemetry/domain/repository"
	"GrainHero/internal/modules/telemetry/domain/validate"
	"GrainHero/pkg/metrics"
	"GrainHero/pkg/util"
	"GrainHero/pkg/xerr"
	"GrainHero/pkg/zlog"

	"go.uber.org/zap"
)

// NormalizeResult reports what an accepted reading changed.
type NormalizeResult struct {
	Reading   *entity.EnvironmentalReading
	Silo      *storageEntity.Silo
	Duplicate bool
	Advanced  bool
}

type NormalizerService interface {
	// Normalize validates req, stores it and advances the silo snapshot when
	// the reading is newer than it. Rejections are InvalidReading errors
	// carrying a reason code.
	Normalize(ctx context.Context, tenantID string, req request.ReadingRequest) (*NormalizeResult, error)
	Recent(ctx context.Context, tenantID, siloID string, since time.Time, limit int) ([]entity.EnvironmentalReading, error)
}

type normalizerServiceImpl struct {
	readingRepo repository.ReadingRepository
	uow         repository.TelemetryUnitOfWork
	skew        time.Duration
	now         func() time.Time
}

func NewNormalizerService(readingRepo repository.ReadingRepository, uow repository.TelemetryUnitOfWork, skew time.Duration) NormalizerService {
	return &normalizerServiceImpl{
		readingRepo: readingRepo,
		uow:         uow,
		skew:        skew,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

var errSnapshotConflict = errors.New("silo snapshot changed concurrently")

func reject(reason string) error {
	metrics.ReadingsRejected.WithLabelValues(reason).Inc()
	return xerr.WithReason(xerr.InvalidReading, reason, "reading rejected: "+reason)
}

func (s *normalizerServiceImpl) Normalize(ctx context.Context, tenantID string, req request.ReadingRequest) (*NormalizeResult, error) {
	now := s.now()
	raw := validate.Raw{
		DeviceId:    req.DeviceId,
		SiloId:      req.SiloId,
		Temperature: req.Temperature,
		Humidity:    req.Humidity,
		Co2:         req.Co2,
		CapturedAt:  req.CapturedAt,
	}
	if req.SiloId == "" {
		return nil, reject(validate.ReasonUnknownSilo)
	}
	if reason := validate.Check(raw, now, s.skew); reason != "" {
		return nil, reject(reason)
	}

	reading := &entity.EnvironmentalReading{
		Id:          util.GenerateID("R"),
		TenantId:    tenantID,
		SiloId:      req.SiloId,
		DeviceId:    req.DeviceId,
		Temperature: req.Temperature,
		Humidity:    req.Humidity,
		Co2:         req.Co2,
		CapturedAt:  req.CapturedAt.UTC().Truncate(time.Millisecond),
		ReceivedAt:  now,
	}

	result := &NormalizeResult{Reading: reading}
	err := s.uow.Transaction(ctx, func(readings repository.ReadingRepository, silos storageRepository.SiloRepository) error {
		silo, err := silos.GetByIDForUpdate(ctx, tenantID, req.SiloId)
		if err != nil {
			return err
		}
		if silo == nil {
			return reject(validate.ReasonUnknownSilo)
		}
		result.Silo = silo

		inserted, err := readings.Insert(ctx, reading)
		if err != nil {
			return err
		}
		if !inserted {
			result.Duplicate = true
			return nil
		}
		if silo.SnapshotAt != nil && !reading.CapturedAt.After(*silo.SnapshotAt) {
			return nil
		}

		applyReading(silo, reading)
		ok, err := silos.UpdateSnapshot(ctx, silo)
		if err != nil {
			return err
		}
		if !ok {
			return errSnapshotConflict
		}
		result.Advanced = true
		return nil
	})
	if err != nil {
		var ce *xerr.CodeError
		if errors.As(err, &ce) {
			return nil, ce
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		zlog.Error("store reading failed",
			zap.String("tenant_id", tenantID), zap.String("silo_id", req.SiloId), zap.Error(err))
		return nil, xerr.ErrServerError
	}

	metrics.ReadingsAccepted.WithLabelValues(strconv.FormatBool(result.Advanced)).Inc()
	if result.Duplicate {
		zlog.Debug("duplicate reading ignored",
			zap.String("silo_id", req.SiloId), zap.String("device_id", req.DeviceId),
			zap.Time("captured_at", reading.CapturedAt))
	}
	return result, nil
}

// applyReading replaces the snapshot channels present in r.
func applyReading(silo *storageEntity.Silo, r *entity.EnvironmentalReading) {
	at := r.CapturedAt
	if r.Temperature != nil {
		v := *r.Temperature
		silo.Temperature, silo.TemperatureAt = &v, &at
	}
	if r.Humidity != nil {
		v := *r.Humidity
		silo.Humidity, silo.HumidityAt = &v, &at
	}
	if r.Co2 != nil {
		v := *r.Co2
		silo.Co2, silo.Co2At = &v, &at
	}
	silo.SnapshotAt = &at
}

func (s *normalizerServiceImpl) Recent(ctx context.Context, tenantID, siloID string, since time.Time, limit int) ([]entity.EnvironmentalReading, error) {
	out, err := s.readingRepo.ListBySilo(ctx, tenantID, siloID, since, limit)
	if err != nil {
		zlog.Error("list readings failed", zap.String("silo_id", siloID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return out, nil
}
