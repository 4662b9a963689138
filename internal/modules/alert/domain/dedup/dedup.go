// Package dedup defines notification identity: the dedup key, the time
// bucket index and the severity order used for escalation.
package dedup

import (
	"strings"
	"time"

	"GrainHero/internal/modules/alert/domain/entity"
)

// Key identifies repeats of one event for one entity.
func Key(tenantID, entityType, entityID, category, discriminator string) string {
	return strings.Join([]string{tenantID, entityType + ":" + entityID, category, discriminator}, "|")
}

// Bucket truncates t to the window boundary. A notification's bucket follows
// its last_event_at.
func Bucket(t time.Time, window time.Duration) time.Time {
	if window <= 0 {
		return t.UTC()
	}
	return t.UTC().Truncate(window)
}

// Buckets lists the buckets that may hold a notification whose last event
// lies within window before at.
func Buckets(at time.Time, window time.Duration) []time.Time {
	cur := Bucket(at, window)
	return []time.Time{cur, cur.Add(-window)}
}

// Severity orders notification types for escalation.
func Severity(notificationType string) int {
	switch notificationType {
	case entity.TypeSuccess:
		return 0
	case entity.TypeInfo:
		return 1
	case entity.TypeWarning:
		return 2
	case entity.TypeCritical:
		return 3
	}
	return 0
}
