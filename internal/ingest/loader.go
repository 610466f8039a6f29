package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/storewatch/internal/domain"
	"github.com/hamed0406/storewatch/internal/repo"
)

// Source file names as shipped in the monitoring dataset.
const (
	StatusFile   = "store_status.csv"
	HoursFile    = "store_hours.csv"
	TimezoneFile = "store_timezone.csv"
)

const batchSize = 1000

// Timestamp layouts seen in store_status.csv exports, most common first.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999 UTC",
	"2006-01-02 15:04:05 UTC",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// Loader bulk-reads the three source CSVs into an ObservationWriter.
// Malformed rows are skipped and counted, never fatal.
type Loader struct {
	log *zap.Logger
	w   repo.ObservationWriter
}

func NewLoader(log *zap.Logger, w repo.ObservationWriter) *Loader {
	return &Loader{log: log, w: w}
}

// LoadDir ingests whichever of the three known files exist under dir.
func (l *Loader) LoadDir(ctx context.Context, dir string) error {
	for _, name := range []string{StatusFile, HoursFile, TimezoneFile} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			l.log.Info("ingest_file_absent", zap.String("path", path))
			continue
		}
		if err := l.LoadFile(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile dispatches on the base name of path.
func (l *Loader) LoadFile(ctx context.Context, path string) error {
	var loaded, skipped int
	var err error
	switch filepath.Base(path) {
	case StatusFile:
		loaded, skipped, err = l.loadStatuses(ctx, path)
	case HoursFile:
		loaded, skipped, err = l.loadHours(ctx, path)
	case TimezoneFile:
		loaded, skipped, err = l.loadTimezones(ctx, path)
	default:
		l.log.Info("ingest_file_ignored", zap.String("path", path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("ingest %s: %w", path, err)
	}
	l.log.Info("ingest_file_done",
		zap.String("path", path),
		zap.Int("loaded", loaded),
		zap.Int("skipped", skipped),
	)
	return nil
}

func (l *Loader) loadStatuses(ctx context.Context, path string) (loaded, skipped int, err error) {
	return readCSV(ctx, path, func(cols map[string]int, rec []string) (domain.StatusObservation, error) {
		ts, err := parseTimestamp(field(rec, cols, "timestamp_utc"))
		if err != nil {
			return domain.StatusObservation{}, err
		}
		id := field(rec, cols, "store_id")
		if id == "" {
			return domain.StatusObservation{}, fmt.Errorf("empty store_id")
		}
		return domain.StatusObservation{
			StoreID:      domain.StoreID(id),
			TimestampUTC: ts,
			Status:       strings.ToLower(strings.TrimSpace(field(rec, cols, "status"))),
		}, nil
	}, l.w.AppendStatusObservations, l.log)
}

func (l *Loader) loadHours(ctx context.Context, path string) (loaded, skipped int, err error) {
	return readCSV(ctx, path, func(cols map[string]int, rec []string) (domain.BusinessHours, error) {
		day, err := strconv.Atoi(strings.TrimSpace(field(rec, cols, "day")))
		if err != nil || day < 0 || day > 6 {
			return domain.BusinessHours{}, fmt.Errorf("day out of range: %q", field(rec, cols, "day"))
		}
		id := field(rec, cols, "store_id")
		if id == "" {
			return domain.BusinessHours{}, fmt.Errorf("empty store_id")
		}
		return domain.BusinessHours{
			StoreID:    domain.StoreID(id),
			Day:        day,
			OpenLocal:  strings.TrimSpace(field(rec, cols, "start_time_local")),
			CloseLocal: strings.TrimSpace(field(rec, cols, "end_time_local")),
		}, nil
	}, l.w.AppendBusinessHours, l.log)
}

func (l *Loader) loadTimezones(ctx context.Context, path string) (loaded, skipped int, err error) {
	return readCSV(ctx, path, func(cols map[string]int, rec []string) (domain.StoreTimezone, error) {
		id := field(rec, cols, "store_id")
		if id == "" {
			return domain.StoreTimezone{}, fmt.Errorf("empty store_id")
		}
		tz := strings.TrimSpace(field(rec, cols, "timezone_str"))
		if tz == "" {
			return domain.StoreTimezone{}, fmt.Errorf("empty timezone_str")
		}
		return domain.StoreTimezone{StoreID: domain.StoreID(id), Timezone: tz}, nil
	}, l.w.UpsertTimezones, l.log)
}

// readCSV streams one file through parse, flushing to write every batchSize
// rows. Rows parse rejects are logged and skipped.
func readCSV[T any](
	ctx context.Context,
	path string,
	parse func(cols map[string]int, rec []string) (T, error),
	write func(ctx context.Context, rows []T) error,
	log *zap.Logger,
) (loaded, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows become parse errors, not reader aborts

	header, err := r.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.ToLower(h))] = i
	}

	batch := make([]T, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := write(ctx, batch); err != nil {
			return err
		}
		loaded += len(batch)
		batch = batch[:0]
		return nil
	}

	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn("ingest_row_unreadable", zap.String("path", path), zap.Int("line", line), zap.Error(err))
			skipped++
			continue
		}
		row, err := parse(cols, rec)
		if err != nil {
			log.Warn("ingest_row_skipped", zap.String("path", path), zap.Int("line", line), zap.Error(err))
			skipped++
			continue
		}
		batch = append(batch, row)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return loaded, skipped, err
			}
		}
	}
	if err := flush(); err != nil {
		return loaded, skipped, err
	}
	return loaded, skipped, nil
}

func field(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp: %q", s)
}
