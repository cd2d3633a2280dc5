package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/sadopc/dgdash/internal/report"
	"github.com/sadopc/dgdash/internal/timesheet"
)

const (
	metricsSheet    = "Metrics"
	totalsSheet     = "Totals"
	allocationSheet = "Allocation"
)

// ToXLSX writes a task report as a workbook with a per-period sheet and a
// totals sheet.
func ToXLSX(rep report.MetricsReport, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", metricsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := []any{"Date"}
	for _, name := range rep.Table.Columns {
		header = append(header, name)
	}
	if err := setRow(f, metricsSheet, 1, header); err != nil {
		return err
	}
	for i, row := range rep.Table.Rows {
		cells := []any{row.Period.Format(timesheet.DateLayout)}
		for _, h := range row.Hours {
			cells = append(cells, h)
		}
		if err := setRow(f, metricsSheet, i+2, cells); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(totalsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := setRow(f, totalsSheet, 1, []any{"Engineer", "Hours"}); err != nil {
		return err
	}
	r := 2
	for _, e := range rep.Totals.Engineers {
		if err := setRow(f, totalsSheet, r, []any{e.Name, e.Hours}); err != nil {
			return err
		}
		r++
	}
	if err := setRow(f, totalsSheet, r, []any{report.DepartmentKey, rep.Totals.Department}); err != nil {
		return err
	}

	return save(f, path)
}

// AllocationXLSX writes an allocation report as a single-sheet workbook.
func AllocationXLSX(rep report.AllocationReport, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", allocationSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := []any{"Engineer"}
	for _, name := range report.BucketNames() {
		header = append(header, name)
	}
	header = append(header, "Unclassified")
	if err := setRow(f, allocationSheet, 1, header); err != nil {
		return err
	}

	for i, row := range rep.Allocation.Rows {
		cells := []any{row.Engineer.Name}
		for _, h := range row.Hours {
			cells = append(cells, h)
		}
		cells = append(cells, row.Unclassified)
		if err := setRow(f, allocationSheet, i+2, cells); err != nil {
			return err
		}
	}

	return save(f, path)
}

func setRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func save(f *excelize.File, path string) error {
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write xlsx file: %w", err)
	}
	return nil
}
