package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/dgdash/internal/report"
	"github.com/sadopc/dgdash/internal/timesheet"
)

type jsonMetrics struct {
	ExportedAt string             `json:"exported_at"`
	TaskType   string             `json:"task_type"`
	Tasks      []string           `json:"tasks"`
	Start      string             `json:"start,omitempty"`
	End        string             `json:"end,omitempty"`
	Grouping   string             `json:"grouping"`
	Periods    []jsonPeriod       `json:"periods"`
	Totals     map[string]float64 `json:"totals"`
}

type jsonPeriod struct {
	Period string             `json:"period"`
	Hours  map[string]float64 `json:"hours"`
}

type jsonAllocation struct {
	ExportedAt string           `json:"exported_at"`
	Start      string           `json:"start"`
	End        string           `json:"end"`
	Engineers  []jsonEngineerAl `json:"engineers"`
}

type jsonEngineerAl struct {
	Engineer     string             `json:"engineer"`
	Buckets      map[string]float64 `json:"buckets"`
	Unclassified float64            `json:"unclassified,omitempty"`
}

func dateOrEmpty(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timesheet.DateLayout)
}

// ToJSON writes a task report as indented JSON.
func ToJSON(rep report.MetricsReport, path string) error {
	export := jsonMetrics{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		TaskType:   rep.Query.Field.Column(),
		Tasks:      rep.Query.Numbers,
		Start:      dateOrEmpty(rep.Query.Window.Start),
		End:        dateOrEmpty(rep.Query.Window.End),
		Grouping:   rep.Grouping.String(),
		Totals:     rep.Totals.Map(),
	}

	for _, row := range rep.Table.Rows {
		p := jsonPeriod{Period: row.Period.Format(timesheet.DateLayout), Hours: map[string]float64{}}
		for i, name := range rep.Table.Columns {
			p.Hours[name] = row.Hours[i]
		}
		export.Periods = append(export.Periods, p)
	}

	return writeJSON(export, path)
}

// AllocationJSON writes an allocation report as indented JSON.
func AllocationJSON(rep report.AllocationReport, path string) error {
	export := jsonAllocation{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Start:      dateOrEmpty(rep.Window.Start),
		End:        dateOrEmpty(rep.Window.End),
	}
	for _, row := range rep.Allocation.Rows {
		e := jsonEngineerAl{Engineer: row.Engineer.Name, Buckets: map[string]float64{}, Unclassified: row.Unclassified}
		for i, b := range report.Buckets {
			e.Buckets[b.Name] = row.Hours[i]
		}
		export.Engineers = append(export.Engineers, e)
	}
	return writeJSON(export, path)
}

func writeJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
