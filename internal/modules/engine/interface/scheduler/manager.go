package scheduler

import (
	"context"
	"time"

	"GrainHero/internal/modules/engine/application/service"
	"GrainHero/pkg/zlog"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Config struct {
	SweepCron             string
	RetentionCron         string
	BatchRetention        time.Duration
	NotificationRetention time.Duration
	JobTimeout            time.Duration
}

// SchedulerManager runs the stale-sensor sweep and the retention purge.
type SchedulerManager struct {
	cron     *cron.Cron
	pipeline service.PipelineService
	cfg      Config
}

func NewSchedulerManager(pipeline service.PipelineService, cfg Config) *SchedulerManager {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	return &SchedulerManager{
		// standard 5-field expressions, no seconds
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		pipeline: pipeline,
		cfg:      cfg,
	}
}

func (m *SchedulerManager) Start() error {
	if m.cfg.SweepCron != "" {
		if _, err := m.cron.AddFunc(m.cfg.SweepCron, m.Sweep); err != nil {
			return err
		}
	}
	if m.cfg.RetentionCron != "" {
		if _, err := m.cron.AddFunc(m.cfg.RetentionCron, m.Retention); err != nil {
			return err
		}
	}
	m.cron.Start()
	zlog.Info("engine scheduler started",
		zap.String("sweep", m.cfg.SweepCron), zap.String("retention", m.cfg.RetentionCron))
	return nil
}

// Stop waits for running jobs to finish.
func (m *SchedulerManager) Stop() {
	<-m.cron.Stop().Done()
}

func (m *SchedulerManager) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.JobTimeout)
	defer cancel()
	n, err := m.pipeline.SweepStaleSensors(ctx)
	if err != nil {
		zlog.Error("stale sensor sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		zlog.Info("stale sensor sweep", zap.Int("silos", n))
	}
}

func (m *SchedulerManager) Retention() {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.JobTimeout)
	defer cancel()
	if err := m.pipeline.RunRetention(ctx, m.cfg.BatchRetention, m.cfg.NotificationRetention); err != nil {
		zlog.Error("retention run failed", zap.Error(err))
	}
}
