package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/dgdash/internal/config"
	"github.com/sadopc/dgdash/internal/report"
)

const fixture = `Date,Engineer,Time,ECR,EWR,Meetings
2024-01-01,ashahinian,4,100,,
2024-01-02,jbarron,3,100,,
2024-01-03,jtorres,1.5,,,standup
2024-01-04,jbarron,2,100,,
2024-01-04,malpert,2,,7,
`

// setup points the config at a fresh sqlite file and returns the work dir.
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "ts.db"))
	t.Setenv("LOG_PATH", filepath.Join(dir, "dgdash.log"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("ALLOCATION_WEEKS", "2")

	orig := now
	now = func() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = orig })
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand(Options{Out: &out, Err: &out})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func seed(t *testing.T, dir string) {
	t.Helper()
	path := filepath.Join(dir, "ts.csv")
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "import", path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Imported 5 rows from ts.csv") {
		t.Fatalf("import output = %q", out)
	}
}

// ============================================================
// Commands
// ============================================================

func TestTasks(t *testing.T) {
	seed(t, setup(t))

	out, err := run(t, "tasks", "--type", "ecr")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "100" {
		t.Fatalf("tasks = %q", out)
	}
}

func TestAllocationCSV(t *testing.T) {
	seed(t, setup(t))

	out, err := run(t, "allocation", "--from", "2024-01-01", "--to", "2024-01-08", "--format", "csv")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header plus 4 engineers, got %q", out)
	}
	if lines[0] != "Engineer,ECR,EWR,NPR,Meetings,Misc.,Total" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[2] != "Jacob,5,0,0,0,0,5" {
		t.Fatalf("Jacob = %q", lines[2])
	}
}

func TestAllocationDefaultWindow(t *testing.T) {
	seed(t, setup(t))

	out, err := run(t, "allocation")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "[2024-01-01, 2024-01-15)") {
		t.Fatalf("default window missing from %q", out)
	}
	if !strings.Contains(out, "Josiah") {
		t.Fatal("table should list the roster")
	}
}

func TestAllocationEmptyWindow(t *testing.T) {
	seed(t, setup(t))

	out, err := run(t, "allocation", "--from", "2023-01-01", "--to", "2023-02-01")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No data for this period") {
		t.Fatalf("output = %q", out)
	}
}

func TestMetricsJSON(t *testing.T) {
	seed(t, setup(t))

	out, err := run(t, "metrics", "--type", "ECR", "--tasks", "100", "--grouping", "daily", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var result struct {
		Grouping string             `json:"grouping"`
		Periods  []json.RawMessage  `json:"periods"`
		Totals   map[string]float64 `json:"totals"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if result.Grouping != "daily" || len(result.Periods) != 3 {
		t.Fatalf("result = %+v", result)
	}
	if result.Totals[report.DepartmentKey] != 9 || result.Totals["Jacob"] != 5 {
		t.Fatalf("totals = %v", result.Totals)
	}
}

func TestMetricsWindowFlags(t *testing.T) {
	seed(t, setup(t))

	out, err := run(t, "metrics", "--tasks", "100", "--from", "2024-01-02", "--to", "2024-01-04")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Department Total: 3 Hours") {
		t.Fatalf("output = %q", out)
	}
}

func TestMetricsTable(t *testing.T) {
	seed(t, setup(t))

	out, err := run(t, "metrics", "--tasks", "100")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"ECR 100 by days", "Department Total: 9 Hours", "Andre", "2024-01-04"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMetricsOutFile(t *testing.T) {
	dir := setup(t)
	seed(t, dir)

	path := filepath.Join(dir, "metrics.xlsx")
	if _, err := run(t, "metrics", "--tasks", "100", "--out", path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "metrics", "--tasks", "100", "--out", filepath.Join(dir, "metrics.txt")); err == nil {
		t.Fatal("expected error for unknown extension")
	}
}

func TestCommandErrors(t *testing.T) {
	seed(t, setup(t))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad format", []string{"allocation", "--format", "yaml"}, "--format"},
		{"bad from", []string{"allocation", "--from", "Jan 1"}, "--from"},
		{"not a task type", []string{"tasks", "--type", "NCR"}, "not a task type"},
		{"unknown type", []string{"tasks", "--type", "Color"}, "--type"},
		{"no tasks", []string{"metrics"}, "--tasks"},
		{"bad grouping", []string{"metrics", "--tasks", "1", "--grouping", "hourly"}, "--grouping"},
		{"missing file", []string{"import", "/nonexistent/ts.csv"}, "open csv file"},
	}
	for _, tt := range tests {
		_, err := run(t, tt.args...)
		if err == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("%s: error %q should mention %q", tt.name, err, tt.want)
		}
	}
}

func TestRootRunsDashboard(t *testing.T) {
	setup(t)

	var gotSvc *report.Service
	var gotCfg *config.Config
	root := NewRootCommand(Options{RunTUI: func(svc *report.Service, cfg *config.Config) error {
		gotSvc, gotCfg = svc, cfg
		return nil
	}})
	root.SetArgs([]string{})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if gotSvc == nil || gotCfg == nil {
		t.Fatal("dashboard should receive the service and config")
	}
	if gotCfg.AllocationWeeks != 2 {
		t.Fatalf("weeks = %d", gotCfg.AllocationWeeks)
	}
}

func TestBadConfig(t *testing.T) {
	setup(t)
	t.Setenv("DB_DRIVER", "oracle")

	if _, err := run(t, "tasks"); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
