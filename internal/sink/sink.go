package sink

import (
	"context"
	"strconv"

	"github.com/hamed0406/storewatch/internal/domain"
)

// Sink persists one finished report and returns a handle (a file path) the
// registry hands back to pollers.
type Sink interface {
	Write(ctx context.Context, reportID string, records []domain.AggregateRecord) (string, error)
}

// Columns is the artifact header. One row per store follows, percent cells
// left empty when the window had nothing to count.
var Columns = []string{
	"store_id",
	"uptime_last_hour", "downtime_last_hour", "availability_last_hour_percent",
	"uptime_last_day", "downtime_last_day", "availability_last_day_percent",
	"uptime_last_week", "downtime_last_week", "availability_last_week_percent",
}

func row(rec domain.AggregateRecord) []string {
	out := make([]string, 0, len(Columns))
	out = append(out, string(rec.StoreID))
	for _, w := range []domain.WindowMetrics{rec.LastHour, rec.LastDay, rec.LastWeek} {
		out = append(out,
			strconv.Itoa(w.Uptime),
			strconv.Itoa(w.Downtime),
			formatPercent(w.Availability),
		)
	}
	return out
}

func formatPercent(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}
