package util

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateShortUUID returns a v4 UUID without dashes.
func GenerateShortUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// GenerateID returns a prefixed id such as "N3f2a..." used as primary keys.
func GenerateID(prefix string) string {
	id := GenerateShortUUID()
	if len(id) > 19 {
		id = id[:19]
	}
	return prefix + id
}
