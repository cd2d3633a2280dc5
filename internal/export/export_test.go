package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sadopc/dgdash/internal/report"
	"github.com/sadopc/dgdash/internal/timesheet"
)

func day(s string) time.Time {
	d, err := timesheet.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func sampleEntries() []timesheet.Entry {
	return []timesheet.Entry{
		{Date: day("2024-01-01"), Engineer: "ashahinian", Hours: 4, ECR: "100"},
		{Date: day("2024-01-02"), Engineer: "jbarron", Hours: 3, ECR: "100"},
		{Date: day("2024-01-03"), Engineer: "jbarron", Hours: 1.5, Meetings: "standup"},
		{Date: day("2024-01-03"), Engineer: "jtorres", Hours: 2},
	}
}

func sampleMetrics() report.MetricsReport {
	q := report.Query{
		Field:    timesheet.ECR,
		Numbers:  []string{"100"},
		Window:   report.Window{Start: day("2024-01-01"), End: day("2024-01-03")},
		Grouping: report.GroupDaily,
	}
	m := report.TaskMetrics(sampleEntries(), q)
	return report.MetricsReport{
		Query:     q,
		Table:     m.Table,
		Totals:    report.Totals(m.Table),
		Grouping:  m.Grouping,
		AxisLabel: m.Grouping.Label(),
	}
}

func sampleAllocation() report.AllocationReport {
	w := report.Window{Start: day("2024-01-01"), End: day("2024-01-08")}
	return report.AllocationReport{Window: w, Allocation: report.Allocate(sampleEntries()), Rows: 4}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

// ============================================================
// CSV
// ============================================================

func TestMetricsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")
	if err := MetricsCSV(sampleMetrics(), path); err != nil {
		t.Fatalf("MetricsCSV: %v", err)
	}

	records := readCSV(t, path)
	// header + 2 periods + total
	if len(records) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(records))
	}

	want := append([]string{"Date"}, timesheet.RosterNames()...)
	for i, h := range want {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}
	if records[1][0] != "2024-01-01" || records[1][1] != "4" || records[1][2] != "0" {
		t.Fatalf("first period = %v", records[1])
	}
	last := records[3]
	if last[0] != "Total" || last[1] != "4" || last[2] != "3" {
		t.Fatalf("total row = %v", last)
	}
}

func TestMetricsCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	rep := report.MetricsReport{Table: report.WideTable{Columns: timesheet.RosterNames()}}
	rep.Totals = report.Totals(rep.Table)
	if err := MetricsCSV(rep, path); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, path)
	if len(records) != 2 {
		t.Fatalf("expected header and total only, got %d rows", len(records))
	}
}

func TestAllocationCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alloc.csv")
	if err := AllocationCSV(sampleAllocation(), path); err != nil {
		t.Fatal(err)
	}

	records := readCSV(t, path)
	if len(records) != 1+len(timesheet.Roster()) {
		t.Fatalf("expected header plus one row per engineer, got %d", len(records))
	}
	header := records[0]
	if header[0] != "Engineer" || header[len(header)-1] != "Unclassified" {
		t.Fatalf("header = %v", header)
	}
	// Jacob: 3h ECR, 1.5h Meetings
	jacob := records[2]
	if jacob[0] != "Jacob" || jacob[1] != "3" || jacob[4] != "1.5" {
		t.Fatalf("Jacob row = %v", jacob)
	}
	// Josiah's blank row is Misc.
	josiah := records[3]
	if josiah[5] != "2" {
		t.Fatalf("Josiah row = %v", josiah)
	}
}

func TestCSVBadPath(t *testing.T) {
	if err := MetricsCSV(sampleMetrics(), "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
	if err := AllocationCSV(sampleAllocation(), "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	if err := ToJSON(sampleMetrics(), path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var result jsonMetrics
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}
	if result.TaskType != "ECR" || result.Grouping != "daily" {
		t.Fatalf("header fields = %+v", result)
	}
	if result.Start != "2024-01-01" || result.End != "2024-01-03" {
		t.Fatalf("window = %s..%s", result.Start, result.End)
	}
	if len(result.Periods) != 2 {
		t.Fatalf("periods = %d, want 2", len(result.Periods))
	}
	if result.Totals[report.DepartmentKey] != 7 {
		t.Fatalf("department = %v, want 7", result.Totals[report.DepartmentKey])
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Fatal("JSON should be pretty-printed")
	}
}

func TestAllocationJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alloc.json")
	if err := AllocationJSON(sampleAllocation(), path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result jsonAllocation
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(result.Engineers) != len(timesheet.Roster()) {
		t.Fatalf("engineers = %d", len(result.Engineers))
	}
	andre := result.Engineers[0]
	if andre.Engineer != "Andre" || andre.Buckets["ECR"] != 4 {
		t.Fatalf("Andre = %+v", andre)
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(sampleMetrics(), "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// XLSX
// ============================================================

func TestToXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.xlsx")
	if err := ToXLSX(sampleMetrics(), path); err != nil {
		t.Fatalf("ToXLSX: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(metricsSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("metrics rows = %d, want 3", len(rows))
	}
	if rows[1][0] != "2024-01-01" || rows[1][1] != "4" {
		t.Fatalf("first period = %v", rows[1])
	}

	totals, err := f.GetRows(totalsSheet)
	if err != nil {
		t.Fatal(err)
	}
	last := totals[len(totals)-1]
	if last[0] != report.DepartmentKey || last[1] != "7" {
		t.Fatalf("department row = %v", last)
	}
}

func TestAllocationXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alloc.xlsx")
	if err := AllocationXLSX(sampleAllocation(), path); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(allocationSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1+len(timesheet.Roster()) {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[2][0] != "Jacob" || rows[2][1] != "3" {
		t.Fatalf("Jacob row = %v", rows[2])
	}
}

func TestToXLSXBadPath(t *testing.T) {
	if err := ToXLSX(sampleMetrics(), "/nonexistent/dir/file.xlsx"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// formatHours (internal helper)
// ============================================================

func TestFormatHours(t *testing.T) {
	tests := []struct {
		h    float64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{1.5, "1.5"},
		{0.25, "0.25"},
		{40, "40"},
	}
	for _, tt := range tests {
		if got := formatHours(tt.h); got != tt.want {
			t.Errorf("formatHours(%v) = %q, want %q", tt.h, got, tt.want)
		}
	}
}
