package event

import (
	"context"
	"errors"
	"testing"

	"GrainHero/internal/modules/engine/application/service"
	riskService "GrainHero/internal/modules/risk/application/service"
	"GrainHero/internal/modules/telemetry/application/dto/request"
	"GrainHero/pkg/mq"
	"GrainHero/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePipeline struct {
	service.PipelineService
	err      error
	tenants  []string
	readings []request.ReadingRequest
}

func (f *fakePipeline) Ingest(ctx context.Context, tenantID string, req request.ReadingRequest) (*service.IngestOutcome, error) {
	f.tenants = append(f.tenants, tenantID)
	f.readings = append(f.readings, req)
	if f.err != nil {
		return nil, f.err
	}
	return &service.IngestOutcome{Advanced: true}, nil
}

func TestHandleUsesEnvelopeTenant(t *testing.T) {
	p := &fakePipeline{}
	h := NewTelemetryHandler(p)

	err := h.Handle(context.Background(), mq.Message{
		Value:   []byte(`{"tenant_id":"t1","reading":{"device_id":"d1","silo_id":"s1","humidity":60,"captured_at":"2026-05-01T10:00:00Z"}}`),
		Headers: map[string]string{mq.HeaderTenantID: "t2"},
	})
	require.NoError(t, err)
	require.Len(t, p.tenants, 1)
	assert.Equal(t, "t1", p.tenants[0])
	assert.Equal(t, "s1", p.readings[0].SiloId)
	assert.Equal(t, 60.0, *p.readings[0].Humidity)
}

func TestHandleFallsBackToHeaderTenant(t *testing.T) {
	p := &fakePipeline{}
	h := NewTelemetryHandler(p)

	err := h.Handle(context.Background(), mq.Message{
		Value:   []byte(`{"reading":{"silo_id":"s1","captured_at":"2026-05-01T10:00:00Z"}}`),
		Headers: map[string]string{mq.HeaderTenantID: "t2"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, p.tenants)
}

func TestHandleDropsUnusableMessages(t *testing.T) {
	p := &fakePipeline{}
	h := NewTelemetryHandler(p)

	assert.NoError(t, h.Handle(context.Background(), mq.Message{Value: []byte("not json")}))
	assert.NoError(t, h.Handle(context.Background(), mq.Message{Value: []byte(`{"reading":{"silo_id":"s1"}}`)}))
	assert.Empty(t, p.tenants)
}

func TestHandleCommitsRejectionsAndRetriesTransient(t *testing.T) {
	msg := mq.Message{Value: []byte(`{"tenant_id":"t1","reading":{"silo_id":"s1"}}`)}

	p := &fakePipeline{err: xerr.WithReason(xerr.InvalidReading, "humidity_out_of_range", "bad")}
	assert.NoError(t, NewTelemetryHandler(p).Handle(context.Background(), msg))

	p = &fakePipeline{err: riskService.ErrBatchTerminal}
	assert.NoError(t, NewTelemetryHandler(p).Handle(context.Background(), msg))

	p = &fakePipeline{err: xerr.ErrStaleAssessment}
	assert.Error(t, NewTelemetryHandler(p).Handle(context.Background(), msg))

	p = &fakePipeline{err: errors.New("db down")}
	assert.Error(t, NewTelemetryHandler(p).Handle(context.Background(), msg))
}
