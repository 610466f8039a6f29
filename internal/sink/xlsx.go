package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/hamed0406/storewatch/internal/domain"
)

var _ Sink = (*XLSX)(nil)

// XLSX is the spreadsheet flavour of the artifact, same columns as CSV.
type XLSX struct {
	Dir string
}

func NewXLSX(dir string) *XLSX {
	return &XLSX{Dir: dir}
}

func (x *XLSX) Write(ctx context.Context, reportID string, records []domain.AggregateRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(x.Dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", x.Dir, err)
	}

	const sheet = "Report"
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRow(f, sheet, 1, Columns); err != nil {
		return "", err
	}
	for i, rec := range records {
		if err := writeRow(f, sheet, i+2, row(rec)); err != nil {
			return "", err
		}
	}

	path := filepath.Join(x.Dir, "report_"+reportID+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	// SetSheetRow writes the whole row in one call.
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}
