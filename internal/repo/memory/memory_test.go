package memory

import (
	"context"
	"testing"
	"time"

	"github.com/hamed0406/storewatch/internal/domain"
)

func TestMemoryStore_AppendAndList(t *testing.T) {
	ctx := context.Background()
	s := New()
	ts := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)

	err := s.AppendStatusObservations(ctx, []domain.StatusObservation{
		{StoreID: "S1", TimestampUTC: ts, Status: domain.StatusActive},
		{StoreID: "S2", TimestampUTC: ts, Status: domain.StatusInactive},
	})
	if err != nil {
		t.Fatalf("AppendStatusObservations: %v", err)
	}

	all, err := s.ListStatusObservations(ctx, "")
	if err != nil {
		t.Fatalf("ListStatusObservations: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("want 2 rows, got %d", len(all))
	}

	only, err := s.ListStatusObservations(ctx, "S1")
	if err != nil {
		t.Fatalf("ListStatusObservations filtered: %v", err)
	}
	if len(only) != 1 || only[0].StoreID != "S1" {
		t.Fatalf("filter wrong: %+v", only)
	}
}

func TestMemoryStore_UpsertTimezonesReplaces(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.UpsertTimezones(ctx, []domain.StoreTimezone{{StoreID: "S1", Timezone: "America/Chicago"}}); err != nil {
		t.Fatalf("UpsertTimezones: %v", err)
	}
	if err := s.UpsertTimezones(ctx, []domain.StoreTimezone{{StoreID: "S1", Timezone: "America/Denver"}}); err != nil {
		t.Fatalf("UpsertTimezones again: %v", err)
	}

	tzs, err := s.ListTimezones(ctx)
	if err != nil {
		t.Fatalf("ListTimezones: %v", err)
	}
	if len(tzs) != 1 || tzs[0].Timezone != "America/Denver" {
		t.Fatalf("upsert should replace: %+v", tzs)
	}
}

func TestMemoryStore_BusinessHours(t *testing.T) {
	ctx := context.Background()
	s := New()
	err := s.AppendBusinessHours(ctx, []domain.BusinessHours{
		{StoreID: "S1", Day: 0, OpenLocal: "09:00:00", CloseLocal: "17:00:00"},
	})
	if err != nil {
		t.Fatalf("AppendBusinessHours: %v", err)
	}
	hrs, err := s.ListBusinessHours(ctx)
	if err != nil {
		t.Fatalf("ListBusinessHours: %v", err)
	}
	if len(hrs) != 1 || hrs[0].OpenLocal != "09:00:00" {
		t.Fatalf("unexpected hours: %+v", hrs)
	}
}
