package respond

import (
	"time"

	"GrainHero/internal/modules/risk/domain/entity"
)

type AssessmentRespond struct {
	Id              string    `json:"id"`
	BatchId         string    `json:"batch_id"`
	SiloId          string    `json:"silo_id"`
	RiskScore       float64   `json:"risk_score"`
	RiskLevel       string    `json:"risk_level"`
	SpoilageLabel   string    `json:"spoilage_label"`
	ConfidenceScore float64   `json:"confidence_score"`
	KeyRiskFactors  []string  `json:"key_risk_factors"`
	ModelName       string    `json:"model_name"`
	IsCurrent       bool      `json:"is_current"`
	ComputedAt      time.Time `json:"computed_at"`
}

func NewAssessmentRespond(a *entity.RiskAssessment) *AssessmentRespond {
	if a == nil {
		return nil
	}
	return &AssessmentRespond{
		Id:              a.Id,
		BatchId:         a.BatchId,
		SiloId:          a.SiloId,
		RiskScore:       a.RiskScore,
		RiskLevel:       a.RiskLevel,
		SpoilageLabel:   a.SpoilageLabel,
		ConfidenceScore: a.ConfidenceScore,
		KeyRiskFactors:  a.Factors(),
		ModelName:       a.ModelName,
		IsCurrent:       a.IsCurrent,
		ComputedAt:      a.ComputedAt,
	}
}

func NewAssessmentList(items []entity.RiskAssessment) []*AssessmentRespond {
	out := make([]*AssessmentRespond, 0, len(items))
	for i := range items {
		out = append(out, NewAssessmentRespond(&items[i]))
	}
	return out
}
