package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sadopc/dgdash/internal/report"
	"github.com/sadopc/dgdash/internal/timesheet"
)

const (
	formatTable = "table"
	formatCSV   = "csv"
	formatJSON  = "json"
)

func checkFormat(f string) error {
	switch f {
	case formatTable, formatCSV, formatJSON:
		return nil
	}
	return fmt.Errorf("--format %q: want table, csv or json", f)
}

func hours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func writeCSV(w io.Writer, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func allocationRows(rep report.AllocationReport) ([]string, [][]string) {
	headers := append([]string{"Engineer"}, report.BucketNames()...)
	headers = append(headers, "Total")
	rows := make([][]string, 0, len(rep.Allocation.Rows))
	for _, r := range rep.Allocation.Rows {
		row := []string{r.Engineer.Name}
		for _, h := range r.Hours {
			row = append(row, hours(h))
		}
		rows = append(rows, append(row, hours(r.Total())))
	}
	return headers, rows
}

func writeAllocation(w io.Writer, rep report.AllocationReport, format string) error {
	switch format {
	case formatJSON:
		type engineer struct {
			Engineer     string             `json:"engineer"`
			Buckets      map[string]float64 `json:"buckets"`
			Unclassified float64            `json:"unclassified"`
		}
		out := struct {
			Start     string     `json:"start"`
			End       string     `json:"end"`
			Engineers []engineer `json:"engineers"`
		}{
			Start: rep.Window.Start.Format(timesheet.DateLayout),
			End:   rep.Window.End.Format(timesheet.DateLayout),
		}
		for _, r := range rep.Allocation.Rows {
			e := engineer{Engineer: r.Engineer.Name, Buckets: map[string]float64{}, Unclassified: r.Unclassified}
			for i, b := range report.Buckets {
				e.Buckets[b.Name] = r.Hours[i]
			}
			out.Engineers = append(out.Engineers, e)
		}
		return writeJSON(w, out)
	case formatCSV:
		headers, rows := allocationRows(rep)
		return writeCSV(w, headers, rows)
	}

	fmt.Fprintf(w, "Time allocation %s\n", rep.Window)
	if rep.Allocation.Empty() {
		_, err := fmt.Fprintln(w, "No data for this period")
		return err
	}
	headers, rows := allocationRows(rep)
	return renderTable(w, headers, rows)
}

func metricsRows(rep report.MetricsReport) ([]string, [][]string) {
	headers := append([]string{"Date"}, rep.Table.Columns...)
	rows := make([][]string, 0, rep.Table.Len())
	for _, r := range rep.Table.Rows {
		row := []string{r.Period.Format(timesheet.DateLayout)}
		for _, h := range r.Hours {
			row = append(row, hours(h))
		}
		rows = append(rows, row)
	}
	return headers, rows
}

func writeMetrics(w io.Writer, rep report.MetricsReport, format string) error {
	switch format {
	case formatJSON:
		type period struct {
			Period string             `json:"period"`
			Hours  map[string]float64 `json:"hours"`
		}
		out := struct {
			TaskType string             `json:"task_type"`
			Tasks    []string           `json:"tasks"`
			Grouping string             `json:"grouping"`
			Periods  []period           `json:"periods"`
			Totals   map[string]float64 `json:"totals"`
		}{
			TaskType: rep.Query.Field.Column(),
			Tasks:    rep.Query.Numbers,
			Grouping: rep.Grouping.String(),
			Periods:  []period{},
			Totals:   rep.Totals.Map(),
		}
		for _, r := range rep.Table.Rows {
			p := period{Period: r.Period.Format(timesheet.DateLayout), Hours: map[string]float64{}}
			for i, name := range rep.Table.Columns {
				p.Hours[name] = r.Hours[i]
			}
			out.Periods = append(out.Periods, p)
		}
		return writeJSON(w, out)
	case formatCSV:
		headers, rows := metricsRows(rep)
		return writeCSV(w, headers, rows)
	}

	fmt.Fprintf(w, "%s %s by %s\n", rep.Query.Field.Column(), strings.Join(rep.Query.Numbers, ", "), strings.ToLower(rep.AxisLabel))
	if rep.Table.Len() == 0 {
		fmt.Fprintln(w, "No data for this period")
	} else {
		headers, rows := metricsRows(rep)
		if err := renderTable(w, headers, rows); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "Department Total: %s Hours\n", hours(rep.Totals.Department))
	for _, e := range rep.Totals.Engineers {
		fmt.Fprintf(w, "  %-10s %s\n", e.Name, hours(e.Hours))
	}
	return nil
}
