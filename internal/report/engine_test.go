package report

import (
	"reflect"
	"testing"
	"time"

	"github.com/hamed0406/storewatch/internal/domain"
)

var testEnd = time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)

func obsAt(store string, status string, minutesBeforeEnd int) domain.StatusObservation {
	return domain.StatusObservation{
		StoreID:      domain.StoreID(store),
		TimestampUTC: testEnd.Add(-time.Duration(minutesBeforeEnd) * time.Minute),
		Status:       status,
	}
}

func TestAggregate_HourlyAvailability(t *testing.T) {
	// 54 active + 6 inactive minutes inside the last hour
	var obs []domain.StatusObservation
	for i := 0; i < 54; i++ {
		obs = append(obs, obsAt("S1", domain.StatusActive, i))
	}
	for i := 54; i < 60; i++ {
		obs = append(obs, obsAt("S1", domain.StatusInactive, i))
	}

	recs := Aggregate(obs, nil, testEnd.Add(-7*24*time.Hour), testEnd)
	if len(recs) != 1 {
		t.Fatalf("want 1 record, got %d", len(recs))
	}
	h := recs[0].LastHour
	if h.Uptime != 54 || h.Downtime != 6 {
		t.Fatalf("want 54/6, got %d/%d", h.Uptime, h.Downtime)
	}
	if h.Availability == nil || *h.Availability != 90.0 {
		t.Fatalf("want availability 90.0, got %v", h.Availability)
	}
}

func TestAggregate_EmptyWindowHasNilAvailability(t *testing.T) {
	// only observation is 2h before end: hour window is empty, day/week count it
	obs := []domain.StatusObservation{obsAt("S2", domain.StatusActive, 120)}

	recs := Aggregate(obs, nil, testEnd.Add(-7*24*time.Hour), testEnd)
	if len(recs) != 1 {
		t.Fatalf("want 1 record, got %d", len(recs))
	}
	r := recs[0]
	if r.LastHour.Uptime != 0 || r.LastHour.Downtime != 0 || r.LastHour.Availability != nil {
		t.Fatalf("hour window should be empty with nil availability: %+v", r.LastHour)
	}
	if r.LastDay.Uptime != 1 || r.LastDay.Availability == nil || *r.LastDay.Availability != 100.0 {
		t.Fatalf("day window wrong: %+v", r.LastDay)
	}
	if r.LastWeek.Uptime != 1 {
		t.Fatalf("week window wrong: %+v", r.LastWeek)
	}
}

func TestAggregate_MissingOrMalformedTimezoneDefaultsUTC(t *testing.T) {
	obs := []domain.StatusObservation{
		obsAt("S1", domain.StatusActive, 1),
		obsAt("S2", domain.StatusActive, 1),
		obsAt("S3", domain.StatusActive, 1),
	}
	tzs := []domain.StoreTimezone{
		{StoreID: "S1", Timezone: "America/Chicago"},
		{StoreID: "S2", Timezone: "Not/AZone"},
		// S3 has no entry at all
	}

	recs := Aggregate(obs, tzs, testEnd.Add(-time.Hour), testEnd)
	if len(recs) != 3 {
		t.Fatalf("want 3 records, got %d", len(recs))
	}
	if recs[0].Timezone != "America/Chicago" {
		t.Fatalf("S1 timezone: %q", recs[0].Timezone)
	}
	if recs[1].Timezone != "UTC" {
		t.Fatalf("malformed zone should default to UTC, got %q", recs[1].Timezone)
	}
	if recs[2].Timezone != "UTC" {
		t.Fatalf("missing zone should default to UTC, got %q", recs[2].Timezone)
	}
}

func TestAggregate_UnknownStatusIgnored(t *testing.T) {
	obs := []domain.StatusObservation{
		obsAt("S1", domain.StatusActive, 1),
		obsAt("S1", "maintenance", 2),
		obsAt("S1", domain.StatusInactive, 3),
	}
	recs := Aggregate(obs, nil, testEnd.Add(-time.Hour), testEnd)
	h := recs[0].LastHour
	if h.Uptime != 1 || h.Downtime != 1 {
		t.Fatalf("unknown status leaked into counts: %+v", h)
	}
	if h.Availability == nil || *h.Availability != 50.0 {
		t.Fatalf("want 50.0, got %v", h.Availability)
	}
}

func TestAggregate_RangeInclusiveOnBothEnds(t *testing.T) {
	start := testEnd.Add(-time.Hour)
	obs := []domain.StatusObservation{
		{StoreID: "S1", TimestampUTC: start, Status: domain.StatusActive},
		{StoreID: "S1", TimestampUTC: testEnd, Status: domain.StatusActive},
		{StoreID: "S1", TimestampUTC: start.Add(-time.Second), Status: domain.StatusActive},
		{StoreID: "S1", TimestampUTC: testEnd.Add(time.Second), Status: domain.StatusActive},
	}
	recs := Aggregate(obs, nil, start, testEnd)
	if got := recs[0].LastHour.Uptime; got != 2 {
		t.Fatalf("want exactly the boundary rows counted (2), got %d", got)
	}
}

func TestAggregate_StoreWithNothingInRangeOmitted(t *testing.T) {
	obs := []domain.StatusObservation{
		obsAt("S1", domain.StatusActive, 1),
		{StoreID: "OLD", TimestampUTC: testEnd.Add(-30 * 24 * time.Hour), Status: domain.StatusActive},
	}
	recs := Aggregate(obs, nil, testEnd.Add(-7*24*time.Hour), testEnd)
	if len(recs) != 1 || recs[0].StoreID != "S1" {
		t.Fatalf("store outside range should be absent: %+v", recs)
	}
}

func TestAggregate_RoundsToTwoDecimals(t *testing.T) {
	obs := []domain.StatusObservation{
		obsAt("S1", domain.StatusActive, 1),
		obsAt("S1", domain.StatusInactive, 2),
		obsAt("S1", domain.StatusInactive, 3),
	}
	recs := Aggregate(obs, nil, testEnd.Add(-time.Hour), testEnd)
	if got := recs[0].LastHour.Availability; got == nil || *got != 33.33 {
		t.Fatalf("want 33.33, got %v", got)
	}
}

func TestAggregate_DeterministicAndSorted(t *testing.T) {
	obs := []domain.StatusObservation{
		obsAt("Sb", domain.StatusActive, 1),
		obsAt("Sa", domain.StatusInactive, 1),
		obsAt("Sc", domain.StatusActive, 1),
	}
	first := Aggregate(obs, nil, testEnd.Add(-time.Hour), testEnd)
	second := Aggregate(obs, nil, testEnd.Add(-time.Hour), testEnd)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same snapshot produced different sequences:\n%+v\n%+v", first, second)
	}
	if first[0].StoreID != "Sa" || first[1].StoreID != "Sb" || first[2].StoreID != "Sc" {
		t.Fatalf("records not sorted by store id: %+v", first)
	}
}
