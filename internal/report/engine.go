package report

import (
	"math"
	"sort"
	"time"

	"github.com/hamed0406/storewatch/internal/domain"
)

// Trailing windows, all measured back from the report's end time.
const (
	windowHour = time.Hour
	windowDay  = 24 * time.Hour
	windowWeek = 7 * 24 * time.Hour
)

// Aggregate computes per-store uptime/downtime counts over the last hour, day
// and week ending at rangeEnd. Observations outside [rangeStart, rangeEnd]
// (inclusive on both ends) are dropped first; a store with no observation in
// that full range is omitted from the result entirely. Output is sorted by
// store id, so the same snapshot and range always yield the same sequence.
func Aggregate(observations []domain.StatusObservation, timezones []domain.StoreTimezone, rangeStart, rangeEnd time.Time) []domain.AggregateRecord {
	byStore := make(map[domain.StoreID][]domain.StatusObservation)
	for _, o := range observations {
		byStore[o.StoreID] = append(byStore[o.StoreID], o)
	}
	zones := make(map[domain.StoreID]string, len(timezones))
	for _, t := range timezones {
		zones[t.StoreID] = t.Timezone
	}

	ids := make([]domain.StoreID, 0, len(byStore))
	for id := range byStore {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]domain.AggregateRecord, 0, len(ids))
	for _, id := range ids {
		var inRange []domain.StatusObservation
		for _, o := range byStore[id] {
			if o.TimestampUTC.Before(rangeStart) || o.TimestampUTC.After(rangeEnd) {
				continue
			}
			inRange = append(inRange, o)
		}
		if len(inRange) == 0 {
			continue
		}
		out = append(out, domain.AggregateRecord{
			StoreID:  id,
			Timezone: resolveZone(zones[id]),
			LastHour: windowCounts(inRange, rangeEnd, windowHour),
			LastDay:  windowCounts(inRange, rangeEnd, windowDay),
			LastWeek: windowCounts(inRange, rangeEnd, windowWeek),
		})
	}
	return out
}

// resolveZone maps a store's configured timezone to a loadable IANA name.
// Missing or malformed names fall back to UTC rather than failing the store.
func resolveZone(name string) string {
	if name == "" {
		return "UTC"
	}
	if _, err := time.LoadLocation(name); err != nil {
		return "UTC"
	}
	return name
}

func windowCounts(obs []domain.StatusObservation, end time.Time, window time.Duration) domain.WindowMetrics {
	cutoff := end.Add(-window)
	var up, down int
	for _, o := range obs {
		if o.TimestampUTC.Before(cutoff) {
			continue
		}
		switch o.Status {
		case domain.StatusActive:
			up++
		case domain.StatusInactive:
			down++
		}
	}
	m := domain.WindowMetrics{Uptime: up, Downtime: down}
	if total := up + down; total > 0 {
		pct := math.Round(float64(up)/float64(total)*100*100) / 100
		m.Availability = &pct
	}
	return m
}
