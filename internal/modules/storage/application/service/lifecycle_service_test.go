package service

import (
	"context"
	"testing"
	"time"

	"GrainHero/internal/modules/storage/application/dto/request"
	"GrainHero/internal/modules/storage/domain/entity"
	"GrainHero/internal/modules/storage/infrastructure/persistence"
	"GrainHero/internal/testkit"
	"GrainHero/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLifecycle(t *testing.T) (LifecycleService, *gorm.DB) {
	t.Helper()
	db := testkit.OpenDB(t)
	svc := NewLifecycleService(
		persistence.NewSiloRepository(db),
		persistence.NewBatchRepository(db),
		persistence.NewTransitionRepository(db),
		persistence.NewStorageUnitOfWork(db),
	)
	return svc, db
}

func intake(code, silo string, qty float64) request.IntakeRequest {
	return request.IntakeRequest{BatchCode: code, GrainType: "Rice", QuantityKg: qty, SiloId: silo}
}

func codeOf(err error) int {
	return xerr.CodeOf(err)
}

func TestIntakeOccupiesSilo(t *testing.T) {
	svc, db := newLifecycle(t)
	testkit.SeedTenant(t, db, "t1")
	testkit.SeedSilo(t, db, "t1", "s1", 10000)

	b, err := svc.Intake(context.Background(), "t1", "u1", intake("B-001", "s1", 4000))
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusStored, b.Status)

	silo := testkit.LoadSilo(t, db, "s1")
	assert.Equal(t, 4000.0, silo.CurrentOccupancyKg)
	require.NotNil(t, silo.CurrentBatchId)
	assert.Equal(t, b.Id, *silo.CurrentBatchId)

	history, err := svc.History(context.Background(), "t1", b.Id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "intake", history[0].Reason)
	assert.Equal(t, entity.BatchStatusStored, history[0].ToStatus)
}

func TestIntakeCapacityExceeded(t *testing.T) {
	svc, db := newLifecycle(t)
	testkit.SeedTenant(t, db, "t1")
	testkit.SeedSilo(t, db, "t1", "s1", 10000)
	require.NoError(t, db.Model(&entity.Silo{}).Where("id = ?", "s1").
		Update("current_occupancy_kg", 9000).Error)

	_, err := svc.Intake(context.Background(), "t1", "u1", intake("B-002", "s1", 2000))
	require.Error(t, err)
	assert.Equal(t, xerr.CapacityExceeded, codeOf(err))

	silo := testkit.LoadSilo(t, db, "s1")
	assert.Equal(t, 9000.0, silo.CurrentOccupancyKg)
	assert.Nil(t, silo.CurrentBatchId)

	var n int64
	require.NoError(t, db.Model(&entity.GrainBatch{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCapacityCheckedBeforeAvailability(t *testing.T) {
	svc, db := newLifecycle(t)
	testkit.SeedTenant(t, db, "t1")
	testkit.SeedSilo(t, db, "t1", "s1", 1000)
	testkit.SetSiloStatus(t, db, "s1", entity.SiloStatusMaintenance)

	_, err := svc.Intake(context.Background(), "t1", "u1", intake("B-003", "s1", 5000))
	assert.Equal(t, xerr.CapacityExceeded, codeOf(err))

	_, err = svc.Intake(context.Background(), "t1", "u1", intake("B-003", "s1", 500))
	require.Error(t, err)
	assert.Equal(t, xerr.SiloUnavailable, codeOf(err))
}

func TestIntakeIntoOccupiedSilo(t *testing.T) {
	svc, db := newLifecycle(t)
	testkit.SeedTenant(t, db, "t1")
	testkit.SeedSilo(t, db, "t1", "s1", 10000)

	_, err := svc.Intake(context.Background(), "t1", "u1", intake("B-1", "s1", 1000))
	require.NoError(t, err)
	_, err = svc.Intake(context.Background(), "t1", "u1", intake("B-2", "s1", 1000))
	require.Error(t, err)
	assert.Equal(t, xerr.SiloUnavailable, codeOf(err))
}

func TestIntakeIntoForeignSilo(t *testing.T) {
	svc, db := newLifecycle(t)
	testkit.SeedTenant(t, db, "t1")
	testkit.SeedTenant(t, db, "t2")
	testkit.SeedSilo(t, db, "t2", "s2", 10000)

	_, err := svc.Intake(context.Background(), "t1", "u1", intake("B-1", "s2", 100))
	assert.Equal(t, xerr.SiloUnavailable, codeOf(err))
	assert.Nil(t, testkit.LoadSilo(t, db, "s2").CurrentBatchId)
}

func TestDispatchReleasesSilo(t *testing.T) {
	svc, db := newLifecycle(t)
	testkit.SeedTenant(t, db, "t1")
	testkit.SeedSilo(t, db, "t1", "s1", 10000)
	b, err := svc.Intake(context.Background(), "t1", "u1", intake("B-1", "s1", 3000))
	require.NoError(t, err)

	tr, err := svc.Transition(context.Background(), "t1", "u2", b.Id, entity.BatchStatusDispatched, "truck 7")
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusStored, tr.From)
	assert.Equal(t, entity.BatchStatusDispatched, tr.To)

	silo := testkit.LoadSilo(t, db, "s1")
	assert.Nil(t, silo.CurrentBatchId)
	assert.Equal(t, 0.0, silo.CurrentOccupancyKg)

	stored := testkit.LoadBatch(t, db, b.Id)
	assert.Equal(t, entity.BatchStatusDispatched, stored.Status)
	assert.NotNil(t, stored.TerminalAt)

	history, err := svc.History(context.Background(), "t1", b.Id)
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestReleaseFloorsOccupancyAtZero(t *testing.T) {
	svc, db := newLifecycle(t)
	testkit.SeedTenant(t, db, "t1")
	testkit.SeedSilo(t, db, "t1", "s1", 10000)
	b, err := svc.Intake(context.Background(), "t1", "u1", intake("B-1", "s1", 3000))
	require.NoError(t, err)
	require.NoError(t, db.Model(&entity.Silo{}).Where("id = ?", "s1").
		Update("current_occupancy_kg", 1000).Error)

	_, err = svc.Transition(context.Background(), "t1", "u1", b.Id, entity.BatchStatusOnHold, "inspection")
	require.NoError(t, err)
	assert.Equal(t, 0.0, testkit.LoadSilo(t, db, "s1").CurrentOccupancyKg)
}

func TestTerminalBatchCannotMove(t *testing.T) {
	svc, db := newLifecycle(t)
	testkit.SeedTenant(t, db, "t1")
	testkit.SeedSilo(t, db, "t1", "s1", 10000)
	b, err := svc.Intake(context.Background(), "t1", "u1", intake("B-1", "s1", 3000))
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), "t1", "u1", b.Id, entity.BatchStatusSold, "")
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), "t1", "u1", b.Id, entity.BatchStatusStored, "")
	require.Error(t, err)
	assert.Equal(t, xerr.InvalidTransition, codeOf(err))

	_, err = svc.Transition(context.Background(), "t1", "u1", b.Id, "lost", "")
	assert.Equal(t, xerr.InvalidTransition, codeOf(err))
}

func TestOnHoldBackToStoredNeedsFreeSilo(t *testing.T) {
	svc, db := newLifecycle(t)
	testkit.SeedTenant(t, db, "t1")
	testkit.SeedSilo(t, db, "t1", "s1", 10000)
	first, err := svc.Intake(context.Background(), "t1", "u1", intake("B-1", "s1", 3000))
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), "t1", "u1", first.Id, entity.BatchStatusOnHold, "")
	require.NoError(t, err)

	second, err := svc.Intake(context.Background(), "t1", "u1", intake("B-2", "s1", 3000))
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), "t1", "u1", first.Id, entity.BatchStatusStored, "")
	assert.Equal(t, xerr.SiloUnavailable, codeOf(err))
	assert.Equal(t, entity.BatchStatusOnHold, testkit.LoadBatch(t, db, first.Id).Status)

	_, err = svc.Transition(context.Background(), "t1", "u1", second.Id, entity.BatchStatusDispatched, "")
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), "t1", "u1", first.Id, entity.BatchStatusStored, "")
	require.NoError(t, err)
	silo := testkit.LoadSilo(t, db, "s1")
	require.NotNil(t, silo.CurrentBatchId)
	assert.Equal(t, first.Id, *silo.CurrentBatchId)
}

func TestCrossTenantBatchIsNotFound(t *testing.T) {
	svc, db := newLifecycle(t)
	testkit.SeedTenant(t, db, "t1")
	testkit.SeedTenant(t, db, "t2")
	testkit.SeedSilo(t, db, "t1", "s1", 10000)
	b, err := svc.Intake(context.Background(), "t1", "u1", intake("B-1", "s1", 3000))
	require.NoError(t, err)

	_, err = svc.GetBatch(context.Background(), "t2", b.Id)
	assert.Equal(t, xerr.NotFound, codeOf(err))
	_, err = svc.Transition(context.Background(), "t2", "u9", b.Id, entity.BatchStatusSold, "")
	assert.Equal(t, xerr.NotFound, codeOf(err))
	assert.Equal(t, entity.BatchStatusStored, testkit.LoadBatch(t, db, b.Id).Status)
}

func TestPurgeTerminal(t *testing.T) {
	svc, db := newLifecycle(t)
	testkit.SeedTenant(t, db, "t1")
	testkit.SeedSilo(t, db, "t1", "s1", 10000)
	b, err := svc.Intake(context.Background(), "t1", "u1", intake("B-1", "s1", 3000))
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), "t1", "u1", b.Id, entity.BatchStatusSold, "")
	require.NoError(t, err)

	n, err := svc.PurgeTerminal(context.Background(), time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = svc.PurgeTerminal(context.Background(), time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = svc.GetBatch(context.Background(), "t1", b.Id)
	assert.Equal(t, xerr.NotFound, codeOf(err))
}
