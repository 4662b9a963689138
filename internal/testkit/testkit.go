// Package testkit opens throwaway databases and seeds fixtures for service
// tests.
package testkit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"GrainHero/internal/initial/schema"
	"GrainHero/internal/modules/storage/domain/entity"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB returns a migrated SQLite database living in t.TempDir.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "grainhero.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, schema.Migrate(db))
	return db
}

// SeedTenant inserts an active tenant.
func SeedTenant(t *testing.T, db *gorm.DB, id string) *entity.Tenant {
	t.Helper()
	tenant := &entity.Tenant{Id: id, Name: "tenant " + id, Active: true}
	require.NoError(t, db.WithContext(context.Background()).Create(tenant).Error)
	return tenant
}

// DeactivateTenant flips the active flag; Create cannot store false over the
// column default.
func DeactivateTenant(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	require.NoError(t, db.Model(&entity.Tenant{}).Where("id = ?", id).Update("active", false).Error)
}

// SeedSilo inserts an empty active silo with the given capacity.
func SeedSilo(t *testing.T, db *gorm.DB, tenantID, id string, capacityKg float64) *entity.Silo {
	t.Helper()
	silo := &entity.Silo{
		Id:         id,
		TenantId:   tenantID,
		Name:       "silo " + id,
		CapacityKg: capacityKg,
		Status:     entity.SiloStatusActive,
	}
	require.NoError(t, db.Create(silo).Error)
	return silo
}

// SetSiloStatus changes a silo's operational status.
func SetSiloStatus(t *testing.T, db *gorm.DB, id, status string) {
	t.Helper()
	require.NoError(t, db.Model(&entity.Silo{}).Where("id = ?", id).Update("status", status).Error)
}

// LoadSilo reads a silo back without tenant scoping.
func LoadSilo(t *testing.T, db *gorm.DB, id string) *entity.Silo {
	t.Helper()
	var silo entity.Silo
	require.NoError(t, db.Where("id = ?", id).First(&silo).Error)
	return &silo
}

// LoadBatch reads a batch back without tenant scoping.
func LoadBatch(t *testing.T, db *gorm.DB, id string) *entity.GrainBatch {
	t.Helper()
	var b entity.GrainBatch
	require.NoError(t, db.Unscoped().Where("id = ?", id).First(&b).Error)
	return &b
}

// SeedStoredBatch inserts a stored batch and makes it the silo's current
// batch.
func SeedStoredBatch(t *testing.T, db *gorm.DB, tenantID, siloID, id, grainType string, qty float64, intake time.Time) *entity.GrainBatch {
	t.Helper()
	now := time.Now().UTC()
	b := &entity.GrainBatch{
		Id:         id,
		TenantId:   tenantID,
		BatchCode:  "CODE-" + id,
		GrainType:  grainType,
		QuantityKg: qty,
		IntakeDate: intake.UTC(),
		SiloId:     siloID,
		Status:     entity.BatchStatusStored,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, db.Create(b).Error)
	require.NoError(t, db.Model(&entity.Silo{}).Where("id = ?", siloID).Updates(map[string]any{
		"current_batch_id":     id,
		"current_occupancy_kg": gorm.Expr("current_occupancy_kg + ?", qty),
	}).Error)
	return b
}

// SetSnapshot writes all three channels of a silo snapshot captured at at.
// A nil value leaves that channel empty.
func SetSnapshot(t *testing.T, db *gorm.DB, siloID string, temperature, humidity, co2 *float64, at time.Time) {
	t.Helper()
	at = at.UTC()
	updates := map[string]any{"snapshot_at": at}
	if temperature != nil {
		updates["temperature"] = *temperature
		updates["temperature_at"] = at
	}
	if humidity != nil {
		updates["humidity"] = *humidity
		updates["humidity_at"] = at
	}
	if co2 != nil {
		updates["co2"] = *co2
		updates["co2_at"] = at
	}
	require.NoError(t, db.Model(&entity.Silo{}).Where("id = ?", siloID).Updates(updates).Error)
}

func Float(v float64) *float64 {
	return &v
}
