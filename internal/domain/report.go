package domain

import (
	"errors"
	"time"
)

var (
	// ErrInvalidRange is returned synchronously on submit; no job is created.
	ErrInvalidRange = errors.New("start_time must not be after end_time")

	// ErrReportNotFound is returned when polling an unknown report id.
	ErrReportNotFound = errors.New("report not found")
)

// ReportRequest describes one report run. Nil times take the defaults the
// service has always used: End = now, Start = End - 24h.
type ReportRequest struct {
	StoreID StoreID    `json:"store_id,omitempty"` // empty means all stores
	Start   *time.Time `json:"start_time,omitempty"`
	End     *time.Time `json:"end_time,omitempty"`
}

// WindowMetrics holds the counts for one trailing window. Availability is nil
// (not zero) when the window contains no counted observations.
type WindowMetrics struct {
	Uptime       int      `json:"uptime"`
	Downtime     int      `json:"downtime"`
	Availability *float64 `json:"availability_percent"`
}

// AggregateRecord is one store's row in a finished report.
type AggregateRecord struct {
	StoreID  StoreID       `json:"store_id"`
	Timezone string        `json:"timezone"`
	LastHour WindowMetrics `json:"last_hour"`
	LastDay  WindowMetrics `json:"last_day"`
	LastWeek WindowMetrics `json:"last_week"`
}

type ReportState string

const (
	StateQueued     ReportState = "QUEUED"
	StateInProgress ReportState = "IN_PROGRESS"
	StateCompleted  ReportState = "COMPLETED"
	StateFailed     ReportState = "FAILED"
)

func (s ReportState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// JobView is the poller-facing snapshot of one report job.
type JobView struct {
	ReportID    string      `json:"report_id"`
	State       ReportState `json:"state"`
	Path        string      `json:"path,omitempty"`   // set once COMPLETED
	Reason      string      `json:"reason,omitempty"` // set once FAILED
	SubmittedAt time.Time   `json:"submitted_at"`
	FinishedAt  *time.Time  `json:"finished_at,omitempty"`
}
