package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"GrainHero/internal/modules/engine/application/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePipeline struct {
	service.PipelineService
	sweeps    int
	sweepErr  error
	retention []time.Duration
}

func (f *fakePipeline) SweepStaleSensors(ctx context.Context) (int, error) {
	f.sweeps++
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("sweep without deadline")
	}
	return 2, f.sweepErr
}

func (f *fakePipeline) RunRetention(ctx context.Context, batchRetention, notificationRetention time.Duration) error {
	f.retention = append(f.retention, batchRetention, notificationRetention)
	return nil
}

func TestJobsCallPipeline(t *testing.T) {
	p := &fakePipeline{sweepErr: errors.New("boom")}
	m := NewSchedulerManager(p, Config{
		BatchRetention:        48 * time.Hour,
		NotificationRetention: 72 * time.Hour,
	})

	m.Sweep()
	m.Retention()
	assert.Equal(t, 1, p.sweeps)
	assert.Equal(t, []time.Duration{48 * time.Hour, 72 * time.Hour}, p.retention)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	m := NewSchedulerManager(&fakePipeline{}, Config{SweepCron: "every now and then"})
	assert.Error(t, m.Start())
}

func TestStartAndStop(t *testing.T) {
	m := NewSchedulerManager(&fakePipeline{}, Config{SweepCron: "*/5 * * * *", RetentionCron: "30 3 * * *"})
	require.NoError(t, m.Start())
	assert.Len(t, m.cron.Entries(), 2)
	m.Stop()
}
