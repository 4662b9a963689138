package dedup

import (
	"fmt"
	"strings"
	"time"

	"GrainHero/internal/modules/alert/domain/entity"
)

// Event is a notification candidate. Several events with the same Key inside
// the dedup window collapse into one notification.
type Event struct {
	TenantId      string
	EntityType    string
	EntityId      string
	BatchId       string
	SiloId        string
	Category      string
	Discriminator string
	Type          string
	Title         string
	Message       string
	ActionUrl     string
	At            time.Time
}

func (e Event) Key() string {
	return Key(e.TenantId, e.EntityType, e.EntityId, e.Category, e.Discriminator)
}

func (e Event) Severity() int {
	return Severity(e.Type)
}

// Risk levels as produced by scoring. Duplicated here to keep the alert
// domain free of a scoring import.
const (
	levelLow      = "low"
	levelMedium   = "medium"
	levelHigh     = "high"
	levelCritical = "critical"
)

// BatchRef is the batch context an event describes.
type BatchRef struct {
	TenantId  string
	BatchId   string
	BatchCode string
	SiloId    string
}

// FromAssessment maps an assessment result to an event. Low risk only
// produces an event when it recovers from high or critical.
func FromAssessment(b BatchRef, previousLevel, level string, score float64, factors []string, at time.Time) (Event, bool) {
	ev := Event{
		TenantId:      b.TenantId,
		EntityType:    entity.EntityBatch,
		EntityId:      b.BatchId,
		BatchId:       b.BatchId,
		SiloId:        b.SiloId,
		Category:      entity.CategorySpoilage,
		Discriminator: level,
		ActionUrl:     "/batches/" + b.BatchId + "/risk",
		At:            at,
	}
	detail := ""
	if len(factors) > 0 {
		detail = " Factors: " + strings.Join(factors, ", ") + "."
	}
	switch level {
	case levelCritical:
		ev.Type = entity.TypeCritical
		ev.Title = "Critical spoilage risk"
		ev.Message = fmt.Sprintf("Batch %s risk score %.1f is critical.%s", b.BatchCode, score, detail)
	case levelHigh:
		ev.Type = entity.TypeWarning
		ev.Title = "High spoilage risk"
		ev.Message = fmt.Sprintf("Batch %s risk score %.1f is high.%s", b.BatchCode, score, detail)
	case levelMedium:
		ev.Type = entity.TypeInfo
		ev.Title = "Elevated spoilage risk"
		ev.Message = fmt.Sprintf("Batch %s risk score %.1f needs attention.%s", b.BatchCode, score, detail)
	case levelLow:
		if previousLevel != levelHigh && previousLevel != levelCritical {
			return Event{}, false
		}
		ev.Type = entity.TypeSuccess
		ev.Title = "Spoilage risk recovered"
		ev.Message = fmt.Sprintf("Batch %s risk score dropped to %.1f from %s.", b.BatchCode, score, previousLevel)
	default:
		return Event{}, false
	}
	return ev, true
}

// FromTransition maps a batch status change to an event. Intake and other
// unlisted moves produce none.
func FromTransition(b BatchRef, from, to, actor string, at time.Time) (Event, bool) {
	ev := Event{
		TenantId:      b.TenantId,
		EntityType:    entity.EntityBatch,
		EntityId:      b.BatchId,
		BatchId:       b.BatchId,
		SiloId:        b.SiloId,
		Category:      entity.CategoryBatch,
		Discriminator: to,
		ActionUrl:     "/batches/" + b.BatchId,
		At:            at,
	}
	by := ""
	if actor != "" {
		by = " by " + actor
	}
	switch {
	case to == "damaged":
		ev.Type = entity.TypeWarning
		ev.Title = "Batch marked damaged"
		ev.Message = fmt.Sprintf("Batch %s was marked damaged%s.", b.BatchCode, by)
	case to == "on_hold":
		ev.Type = entity.TypeWarning
		ev.Title = "Batch on hold"
		ev.Message = fmt.Sprintf("Batch %s was put on hold%s.", b.BatchCode, by)
	case to == "dispatched" || to == "sold":
		ev.Category = entity.CategoryDispatch
		ev.Type = entity.TypeSuccess
		ev.Title = "Batch " + to
		ev.Message = fmt.Sprintf("Batch %s was %s%s.", b.BatchCode, to, by)
	case from == "on_hold" && to == "stored":
		ev.Type = entity.TypeInfo
		ev.Title = "Batch released from hold"
		ev.Message = fmt.Sprintf("Batch %s is back in storage%s.", b.BatchCode, by)
	default:
		return Event{}, false
	}
	return ev, true
}

// FromSensorHealth reports stale channels on a silo.
func FromSensorHealth(tenantID, siloID, siloName string, stale []string, at time.Time) (Event, bool) {
	if len(stale) == 0 {
		return Event{}, false
	}
	return Event{
		TenantId:      tenantID,
		EntityType:    entity.EntitySilo,
		EntityId:      siloID,
		SiloId:        siloID,
		Category:      entity.CategorySystem,
		Discriminator: "stale_sensor",
		Type:          entity.TypeWarning,
		Title:         "Sensor data stale",
		Message:       fmt.Sprintf("Silo %s has stale sensors: %s.", siloName, strings.Join(stale, ", ")),
		ActionUrl:     "/silos/" + siloID + "/conditions",
		At:            at,
	}, true
}
