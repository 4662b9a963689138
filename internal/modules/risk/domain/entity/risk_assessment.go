package entity

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// RiskAssessment is one scoring result for a batch. Exactly one row per
// assessed batch has IsCurrent set; the rest are history.
type RiskAssessment struct {
	Id              string         `gorm:"column:id;primaryKey;type:char(20)"`
	TenantId        string         `gorm:"column:tenant_id;index;type:char(20);not null"`
	BatchId         string         `gorm:"column:batch_id;type:char(20);not null;index:idx_assessment_batch_current,priority:1"`
	SiloId          string         `gorm:"column:silo_id;type:char(20);not null"`
	RiskScore       float64        `gorm:"column:risk_score;not null"`
	RiskLevel       string         `gorm:"column:risk_level;type:varchar(20);not null"`
	SpoilageLabel   string         `gorm:"column:spoilage_label;type:varchar(20);not null"`
	ConfidenceScore float64        `gorm:"column:confidence_score;not null"`
	KeyRiskFactors  datatypes.JSON `gorm:"column:key_risk_factors"`
	ModelName       string         `gorm:"column:model_name;type:varchar(64);not null"`
	Temperature     *float64       `gorm:"column:temperature"`
	Humidity        *float64       `gorm:"column:humidity"`
	Co2             *float64       `gorm:"column:co2"`
	IsCurrent       bool           `gorm:"column:is_current;not null;default:false;index:idx_assessment_batch_current,priority:2"`
	ComputedAt      time.Time      `gorm:"column:computed_at;precision:3;not null;index"`
}

func (RiskAssessment) TableName() string {
	return "risk_assessment"
}

// Factors decodes KeyRiskFactors.
func (a *RiskAssessment) Factors() []string {
	if len(a.KeyRiskFactors) == 0 {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(a.KeyRiskFactors, &out); err != nil {
		return []string{}
	}
	return out
}

func (a *RiskAssessment) SetFactors(factors []string) {
	if factors == nil {
		factors = []string{}
	}
	b, _ := json.Marshal(factors)
	a.KeyRiskFactors = datatypes.JSON(b)
}
