package schema

import (
	alertEntity "GrainHero/internal/modules/alert/domain/entity"
	riskEntity "GrainHero/internal/modules/risk/domain/entity"
	storageEntity "GrainHero/internal/modules/storage/domain/entity"
	telemetryEntity "GrainHero/internal/modules/telemetry/domain/entity"

	"gorm.io/gorm"
)

// Models lists every persisted entity.
func Models() []interface{} {
	return []interface{}{
		&storageEntity.Tenant{},
		&storageEntity.TenantPolicy{},
		&storageEntity.Silo{},
		&storageEntity.GrainBatch{},
		&storageEntity.BatchTransition{},

		&telemetryEntity.EnvironmentalReading{},

		&riskEntity.RiskAssessment{},

		&alertEntity.Notification{},
		&alertEntity.NotificationDelivery{},
	}
}

// Migrate creates or updates the tables; it does not drop columns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
