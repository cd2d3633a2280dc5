package report

import (
	"github.com/samber/lo"

	"github.com/sadopc/dgdash/internal/timesheet"
)

// DepartmentKey is the Summary.Map key holding the department total.
const DepartmentKey = "Department"

// EngineerTotal is one engineer's hours in a Summary.
type EngineerTotal struct {
	Name  string
	Hours float64
}

// Summary is the totals panel of a task report.
type Summary struct {
	Department float64
	// Engineers is in roster order and always holds the full roster.
	Engineers []EngineerTotal
}

// Hours returns the total for a roster name, or the department total for
// DepartmentKey.
func (s Summary) Hours(name string) float64 {
	if name == DepartmentKey {
		return s.Department
	}
	for _, e := range s.Engineers {
		if e.Name == name {
			return e.Hours
		}
	}
	return 0
}

// Map flattens the summary into name -> hours, including DepartmentKey.
func (s Summary) Map() map[string]float64 {
	m := lo.SliceToMap(s.Engineers, func(e EngineerTotal) (string, float64) { return e.Name, e.Hours })
	m[DepartmentKey] = s.Department
	return m
}

// Totals sums each roster column over all periods. Missing roster columns
// report zero and columns outside the roster are ignored.
func Totals(t WideTable) Summary {
	s := Summary{Engineers: make([]EngineerTotal, 0, len(timesheet.Roster()))}
	for _, name := range timesheet.RosterNames() {
		hours := lo.Sum(t.Column(name))
		s.Engineers = append(s.Engineers, EngineerTotal{Name: name, Hours: hours})
		s.Department += hours
	}
	return s
}
