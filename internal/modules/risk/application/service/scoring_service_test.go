package service

import (
	"context"
	"testing"
	"time"

	"GrainHero/internal/modules/risk/domain/repository"
	"GrainHero/internal/modules/risk/domain/scoring"
	"GrainHero/internal/modules/risk/infrastructure/persistence"
	storageEntity "GrainHero/internal/modules/storage/domain/entity"
	storageRepository "GrainHero/internal/modules/storage/domain/repository"
	storagePersistence "GrainHero/internal/modules/storage/infrastructure/persistence"
	"GrainHero/internal/testkit"
	"GrainHero/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const staleness = 15 * time.Minute

// racingUnitOfWork bumps the batch version before each of the first races
// transactions, as a concurrent writer would.
type racingUnitOfWork struct {
	inner   repository.RiskUnitOfWork
	db      *gorm.DB
	batchID string
	races   int
}

func (u *racingUnitOfWork) Transaction(ctx context.Context, fn func(assessments repository.AssessmentRepository, batches storageRepository.BatchRepository) error) error {
	if u.races > 0 {
		u.races--
		if err := u.db.Model(&storageEntity.GrainBatch{}).Where("id = ?", u.batchID).
			Update("version", gorm.Expr("version + 1")).Error; err != nil {
			return err
		}
	}
	return u.inner.Transaction(ctx, fn)
}

func setup(t *testing.T) *gorm.DB {
	t.Helper()
	db := testkit.OpenDB(t)
	testkit.SeedTenant(t, db, "t1")
	testkit.SeedTenant(t, db, "t2")
	testkit.SeedSilo(t, db, "t1", "s1", 10000)
	testkit.SeedStoredBatch(t, db, "t1", "s1", "b1", "Rice", 5000, time.Now().UTC().Add(-10*24*time.Hour))
	return db
}

func newScoring(db *gorm.DB, uow repository.RiskUnitOfWork) ScoringService {
	if uow == nil {
		uow = persistence.NewRiskUnitOfWork(db)
	}
	return NewScoringService(
		storagePersistence.NewBatchRepository(db),
		storagePersistence.NewSiloRepository(db),
		persistence.NewAssessmentRepository(db),
		uow,
		nil,
		3,
	)
}

func countCurrent(t *testing.T, db *gorm.DB, batchID string) int64 {
	t.Helper()
	n, err := persistence.NewAssessmentRepository(db).CountCurrent(context.Background(), batchID)
	require.NoError(t, err)
	return n
}

func TestAssessCriticalRice(t *testing.T) {
	db := setup(t)
	testkit.SetSnapshot(t, db, "s1", testkit.Float(30), testkit.Float(85), testkit.Float(1200), time.Now().UTC().Add(-time.Minute))
	svc := newScoring(db, nil)

	out, err := svc.Assess(context.Background(), "t1", "b1", staleness)
	require.NoError(t, err)
	a := out.Assessment
	assert.GreaterOrEqual(t, a.RiskScore, 85.0)
	assert.Equal(t, scoring.LevelCritical, a.RiskLevel)
	assert.Equal(t, scoring.LabelSpoiled, a.SpoilageLabel)
	assert.Contains(t, a.Factors(), "high_humidity")
	assert.Contains(t, a.Factors(), "elevated_co2")
	assert.Equal(t, "", out.PreviousLevel)

	b := testkit.LoadBatch(t, db, "b1")
	assert.Equal(t, scoring.LevelCritical, b.RiskLevel)
	require.NotNil(t, b.CurrentAssessmentId)
	assert.Equal(t, a.Id, *b.CurrentAssessmentId)
	assert.Equal(t, storageEntity.BatchStatusStored, b.Status)
}

func TestExactlyOneCurrentAssessment(t *testing.T) {
	db := setup(t)
	testkit.SetSnapshot(t, db, "s1", testkit.Float(20), testkit.Float(60), testkit.Float(500), time.Now().UTC().Add(-time.Minute))
	svc := newScoring(db, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.Assess(context.Background(), "t1", "b1", staleness)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), countCurrent(t, db, "b1"))

	history, err := svc.History(context.Background(), "t1", "b1", 10)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	current, err := svc.Current(context.Background(), "t1", "b1")
	require.NoError(t, err)
	flagged := 0
	for _, a := range history {
		if a.IsCurrent {
			flagged++
			assert.Equal(t, current.Id, a.Id)
		}
	}
	assert.Equal(t, 1, flagged)
}

func TestAssessWithoutSensorData(t *testing.T) {
	db := setup(t)
	svc := newScoring(db, nil)

	out, err := svc.Assess(context.Background(), "t1", "b1", staleness)
	require.NoError(t, err)
	assert.Equal(t, 0.0, out.Assessment.ConfidenceScore)
	assert.Contains(t, out.Assessment.Factors(), scoring.FactorNoSensorData)

	_, err = svc.Current(context.Background(), "t1", "b1")
	assert.NoError(t, err)
}

func TestAssessStaleChannelsExcluded(t *testing.T) {
	db := setup(t)
	testkit.SetSnapshot(t, db, "s1", testkit.Float(20), testkit.Float(90), nil, time.Now().UTC().Add(-time.Hour))
	svc := newScoring(db, nil)

	out, err := svc.Assess(context.Background(), "t1", "b1", staleness)
	require.NoError(t, err)
	assert.Nil(t, out.Assessment.Humidity)
	assert.Contains(t, out.Assessment.Factors(), scoring.StaleFactor(scoring.ChannelHumidity))
	assert.NotContains(t, out.Assessment.Factors(), "high_humidity")
	assert.Equal(t, 0.0, out.Assessment.ConfidenceScore)
}

func TestAllStaleCarriesPreviousLevel(t *testing.T) {
	db := setup(t)
	testkit.SetSnapshot(t, db, "s1", testkit.Float(30), testkit.Float(85), testkit.Float(1200), time.Now().UTC().Add(-time.Minute))
	svc := newScoring(db, nil)

	first, err := svc.Assess(context.Background(), "t1", "b1", staleness)
	require.NoError(t, err)
	require.Equal(t, scoring.LevelCritical, first.Assessment.RiskLevel)

	testkit.SetSnapshot(t, db, "s1", testkit.Float(30), testkit.Float(85), testkit.Float(1200), time.Now().UTC().Add(-2*time.Hour))
	out, err := svc.Assess(context.Background(), "t1", "b1", staleness)
	require.NoError(t, err)
	assert.True(t, out.NoData)
	assert.Equal(t, scoring.LevelCritical, out.PreviousLevel)

	a := out.Assessment
	assert.Equal(t, first.Assessment.RiskScore, a.RiskScore)
	assert.Equal(t, scoring.LevelCritical, a.RiskLevel)
	assert.Equal(t, scoring.LabelSpoiled, a.SpoilageLabel)
	assert.Equal(t, 0.0, a.ConfidenceScore)
	assert.Contains(t, a.Factors(), scoring.FactorNoSensorData)
	assert.Contains(t, a.Factors(), scoring.StaleFactor(scoring.ChannelHumidity))

	b := testkit.LoadBatch(t, db, "b1")
	assert.Equal(t, scoring.LevelCritical, b.RiskLevel)
	assert.Equal(t, scoring.LabelSpoiled, b.SpoilageLabel)
	assert.Equal(t, first.Assessment.RiskScore, b.RiskScore)
	require.NotNil(t, b.CurrentAssessmentId)
	assert.Equal(t, a.Id, *b.CurrentAssessmentId)
	assert.Equal(t, int64(1), countCurrent(t, db, "b1"))
}

func TestTerminalBatchIsNotAssessed(t *testing.T) {
	db := setup(t)
	require.NoError(t, db.Model(&storageEntity.GrainBatch{}).Where("id = ?", "b1").
		Update("status", storageEntity.BatchStatusSold).Error)
	svc := newScoring(db, nil)

	_, err := svc.Assess(context.Background(), "t1", "b1", staleness)
	assert.ErrorIs(t, err, ErrBatchTerminal)
	assert.Zero(t, countCurrent(t, db, "b1"))
}

func TestAssessRetriesOnRace(t *testing.T) {
	db := setup(t)
	testkit.SetSnapshot(t, db, "s1", testkit.Float(20), testkit.Float(60), testkit.Float(500), time.Now().UTC().Add(-time.Minute))
	uow := &racingUnitOfWork{inner: persistence.NewRiskUnitOfWork(db), db: db, batchID: "b1", races: 2}
	svc := newScoring(db, uow)

	_, err := svc.Assess(context.Background(), "t1", "b1", staleness)
	require.NoError(t, err)
	assert.Equal(t, int64(1), countCurrent(t, db, "b1"))
}

func TestAssessGivesUpAfterRetryBudget(t *testing.T) {
	db := setup(t)
	uow := &racingUnitOfWork{inner: persistence.NewRiskUnitOfWork(db), db: db, batchID: "b1", races: 10}
	svc := newScoring(db, uow)

	_, err := svc.Assess(context.Background(), "t1", "b1", staleness)
	require.Error(t, err)
	assert.Equal(t, xerr.StaleAssessmentRace, xerr.CodeOf(err))
	assert.Zero(t, countCurrent(t, db, "b1"))
}

func TestCrossTenantAssessmentIsNotFound(t *testing.T) {
	db := setup(t)
	svc := newScoring(db, nil)

	_, err := svc.Assess(context.Background(), "t2", "b1", staleness)
	assert.Equal(t, xerr.NotFound, xerr.CodeOf(err))
	_, err = svc.Current(context.Background(), "t2", "b1")
	assert.Equal(t, xerr.NotFound, xerr.CodeOf(err))
}
