package domain

import "time"

type StoreID string

// Status values as they arrive from ingestion. Anything else is carried
// through storage but ignored by the report computation.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// StatusObservation is one point-in-time poll result for a store.
// Append-only; duplicates per store per instant are legal and simply counted.
type StatusObservation struct {
	StoreID      StoreID   `json:"store_id"`
	TimestampUTC time.Time `json:"timestamp_utc"`
	Status       string    `json:"status"`
}

// BusinessHours is one local open/close window for a store.
// Day follows the source data: 0 = Monday ... 6 = Sunday.
type BusinessHours struct {
	StoreID    StoreID `json:"store_id"`
	Day        int     `json:"day"`
	OpenLocal  string  `json:"start_time_local"` // "HH:MM:SS"
	CloseLocal string  `json:"end_time_local"`   // "HH:MM:SS"
}

// StoreTimezone maps a store to an IANA zone name, at most one per store.
// Stores without an entry are treated as UTC.
type StoreTimezone struct {
	StoreID  StoreID `json:"store_id"`
	Timezone string  `json:"timezone_str"`
}
