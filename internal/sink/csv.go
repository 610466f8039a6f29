package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hamed0406/storewatch/internal/domain"
)

var _ Sink = (*CSV)(nil)

// CSV writes one report_<id>.csv per finished job into Dir.
type CSV struct {
	Dir string
}

func NewCSV(dir string) *CSV {
	return &CSV{Dir: dir}
}

func (c *CSV) Write(ctx context.Context, reportID string, records []domain.AggregateRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", c.Dir, err)
	}

	path := filepath.Join(c.Dir, "report_"+reportID+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		f.Close()
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(row(rec)); err != nil {
			f.Close()
			return "", fmt.Errorf("write row for %s: %w", rec.StoreID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return "", fmt.Errorf("flush: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}
