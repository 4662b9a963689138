// Package lifecycle holds the batch status transition table.
package lifecycle

import (
	"GrainHero/internal/modules/storage/domain/entity"
)

var transitions = map[string][]string{
	entity.BatchStatusStored: {
		entity.BatchStatusDispatched,
		entity.BatchStatusSold,
		entity.BatchStatusDamaged,
		entity.BatchStatusOnHold,
	},
	entity.BatchStatusOnHold: {
		entity.BatchStatusStored,
		entity.BatchStatusDamaged,
		entity.BatchStatusDispatched,
	},
}

// IsKnown reports whether status is one of the batch statuses.
func IsKnown(status string) bool {
	switch status {
	case entity.BatchStatusStored, entity.BatchStatusDispatched, entity.BatchStatusSold,
		entity.BatchStatusDamaged, entity.BatchStatusOnHold:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition or scoring may happen.
func IsTerminal(status string) bool {
	switch status {
	case entity.BatchStatusDispatched, entity.BatchStatusSold, entity.BatchStatusDamaged:
		return true
	}
	return false
}

// CanTransition reports whether to is reachable from from in one step.
func CanTransition(from, to string) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Targets lists the statuses reachable from from.
func Targets(from string) []string {
	out := make([]string, len(transitions[from]))
	copy(out, transitions[from])
	return out
}

// EntersStored reports whether moving from -> to places the batch in a silo.
func EntersStored(from, to string) bool {
	return to == entity.BatchStatusStored && from != entity.BatchStatusStored
}

// LeavesStored reports whether moving from -> to releases the silo.
func LeavesStored(from, to string) bool {
	return from == entity.BatchStatusStored && to != entity.BatchStatusStored
}
