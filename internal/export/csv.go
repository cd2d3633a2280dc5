package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/dgdash/internal/report"
	"github.com/sadopc/dgdash/internal/timesheet"
)

// MetricsCSV writes a task report: one row per period, one column per
// engineer, followed by a Total row.
func MetricsCSV(rep report.MetricsReport, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	header := append([]string{"Date"}, rep.Table.Columns...)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, row := range rep.Table.Rows {
		record := []string{row.Period.Format(timesheet.DateLayout)}
		for _, h := range row.Hours {
			record = append(record, formatHours(h))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	total := []string{"Total"}
	for _, name := range rep.Table.Columns {
		total = append(total, formatHours(rep.Totals.Hours(name)))
	}
	if err := w.Write(total); err != nil {
		return err
	}

	return w.Error()
}

// AllocationCSV writes one row per engineer with hours per bucket.
func AllocationCSV(rep report.AllocationReport, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := append([]string{"Engineer"}, report.BucketNames()...)
	header = append(header, "Unclassified")
	if err := w.Write(header); err != nil {
		return err
	}

	for _, row := range rep.Allocation.Rows {
		record := []string{row.Engineer.Name}
		for _, h := range row.Hours {
			record = append(record, formatHours(h))
		}
		record = append(record, formatHours(row.Unclassified))
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
