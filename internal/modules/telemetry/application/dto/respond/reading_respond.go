package respond

import "time"

type IngestRespond struct {
	ReadingId  string    `json:"reading_id,omitempty"`
	SiloId     string    `json:"silo_id"`
	CapturedAt time.Time `json:"captured_at"`
	Duplicate  bool      `json:"duplicate"`
	Advanced   bool      `json:"snapshot_advanced"`
	Assessed   bool      `json:"assessed"`
}
