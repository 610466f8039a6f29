package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/storewatch/internal/domain"
	"github.com/hamed0406/storewatch/internal/repo/memory"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoader_StatusFile_SkipsBadRows(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, StatusFile,
		"store_id,status,timestamp_utc\n"+
			"S1,active,2023-01-25 18:13:22.47659 UTC\n"+
			"S1,INACTIVE ,2023-01-25T19:00:00Z\n"+
			"S2,active,not-a-timestamp\n"+
			",active,2023-01-25 18:13:22 UTC\n")

	store := memory.New()
	l := NewLoader(zap.NewNop(), store)
	if err := l.LoadFile(context.Background(), filepath.Join(dir, StatusFile)); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	rows, err := store.ListStatusObservations(context.Background(), "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 good rows, got %d: %+v", len(rows), rows)
	}
	want := time.Date(2023, 1, 25, 18, 13, 22, 476590000, time.UTC)
	if !rows[0].TimestampUTC.Equal(want) {
		t.Fatalf("dataset timestamp parsed wrong: %v", rows[0].TimestampUTC)
	}
	if rows[1].Status != domain.StatusInactive {
		t.Fatalf("status should be normalized: %q", rows[1].Status)
	}
}

func TestLoader_HoursFile_RejectsBadDay(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, HoursFile,
		"store_id,day,start_time_local,end_time_local\n"+
			"S1,0,09:00:00,17:00:00\n"+
			"S1,9,09:00:00,17:00:00\n")

	store := memory.New()
	l := NewLoader(zap.NewNop(), store)
	if err := l.LoadFile(context.Background(), filepath.Join(dir, HoursFile)); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	hrs, _ := store.ListBusinessHours(context.Background())
	if len(hrs) != 1 || hrs[0].Day != 0 {
		t.Fatalf("bad day should be skipped: %+v", hrs)
	}
}

func TestLoader_LoadDir_IngestsAllPresentFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, StatusFile,
		"store_id,status,timestamp_utc\nS1,active,2023-01-25 18:13:22 UTC\n")
	writeFile(t, dir, TimezoneFile,
		"store_id,timezone_str\nS1,America/Chicago\n")
	// hours file deliberately absent

	store := memory.New()
	l := NewLoader(zap.NewNop(), store)
	if err := l.LoadDir(context.Background(), dir); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}

	if rows, _ := store.ListStatusObservations(context.Background(), ""); len(rows) != 1 {
		t.Fatalf("status not loaded: %+v", rows)
	}
	tzs, _ := store.ListTimezones(context.Background())
	if len(tzs) != 1 || tzs[0].Timezone != "America/Chicago" {
		t.Fatalf("timezone not loaded: %+v", tzs)
	}
}

func TestLoader_ColumnOrderDoesNotMatter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, StatusFile,
		"timestamp_utc,store_id,status\n2023-01-25 18:13:22 UTC,S1,active\n")

	store := memory.New()
	l := NewLoader(zap.NewNop(), store)
	if err := l.LoadFile(context.Background(), filepath.Join(dir, StatusFile)); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	rows, _ := store.ListStatusObservations(context.Background(), "")
	if len(rows) != 1 || rows[0].StoreID != "S1" {
		t.Fatalf("header mapping failed: %+v", rows)
	}
}
