package report

import (
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/sadopc/dgdash/internal/timesheet"
)

func normalizeTask(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// TaskNumbers returns the distinct non-blank values of field, uppercased,
// sorted in descending order.
func TaskNumbers(entries []timesheet.Entry, field timesheet.Field) []string {
	values := lo.FilterMap(entries, func(e timesheet.Entry, _ int) (string, bool) {
		v := normalizeTask(e.Text(field))
		return v, v != ""
	})
	tasks := lo.Uniq(values)
	sort.Sort(sort.Reverse(sort.StringSlice(tasks)))
	return tasks
}

// matchTasks keeps entries whose field value is one of numbers, ignoring case.
func matchTasks(entries []timesheet.Entry, field timesheet.Field, numbers []string) []timesheet.Entry {
	if len(numbers) == 0 {
		return nil
	}
	want := lo.SliceToMap(numbers, func(n string) (string, struct{}) {
		return normalizeTask(n), struct{}{}
	})
	return lo.Filter(entries, func(e timesheet.Entry, _ int) bool {
		_, ok := want[normalizeTask(e.Text(field))]
		return ok && e.Has(field)
	})
}

// Span is the date range a task was worked on.
type Span struct {
	First time.Time
	Last  time.Time
	// Grouping is chosen from Last-First, or FallbackGrouping when Empty.
	Grouping Grouping
	// Empty is set when no rows matched; First and Last are zero.
	Empty bool
}

// Window returns [First, Last+1 day) so the last worked day is included.
func (s Span) Window() Window {
	if s.Empty {
		return Window{}
	}
	return Window{Start: s.First, End: s.Last.AddDate(0, 0, 1)}
}

// FindSpan finds the first and last date any of numbers appears in field.
func FindSpan(entries []timesheet.Entry, field timesheet.Field, numbers []string) Span {
	matched := matchTasks(entries, field, numbers)
	if len(matched) == 0 {
		return Span{Empty: true, Grouping: FallbackGrouping}
	}
	first := lo.MinBy(matched, func(a, b timesheet.Entry) bool { return a.Date.Before(b.Date) }).Date
	last := lo.MaxBy(matched, func(a, b timesheet.Entry) bool { return a.Date.After(b.Date) }).Date
	return Span{
		First:    timesheet.Day(first),
		Last:     timesheet.Day(last),
		Grouping: ChooseGrouping(last.Sub(first)),
	}
}

// Query selects the rows of a task report.
type Query struct {
	Field   timesheet.Field
	Numbers []string
	Window  Window
	// Grouping left as GroupAuto is derived from the task span.
	Grouping Grouping
}

// WideRow is one period of a WideTable.
type WideRow struct {
	Period time.Time
	// Hours is aligned with WideTable.Columns.
	Hours []float64
}

// WideTable holds hours per period (rows) per engineer (columns).
type WideTable struct {
	Grouping Grouping
	Columns  []string
	Rows     []WideRow
}

// Len returns the number of periods.
func (t WideTable) Len() int { return len(t.Rows) }

// Column returns the hours of one column for every period, or nil when
// the column is absent.
func (t WideTable) Column(name string) []float64 {
	idx := lo.IndexOf(t.Columns, name)
	if idx < 0 {
		return nil
	}
	return lo.Map(t.Rows, func(r WideRow, _ int) float64 { return r.Hours[idx] })
}

// Metrics is a task report before totals.
type Metrics struct {
	Table WideTable
	// Grouping is the resolved grouping, never GroupAuto.
	Grouping Grouping
}

// TaskMetrics filters entries to q, buckets them by period and pivots
// engineers into columns ordered by the roster.
func TaskMetrics(entries []timesheet.Entry, q Query) Metrics {
	grouping := q.Grouping
	if grouping == GroupAuto {
		grouping = FindSpan(entries, q.Field, q.Numbers).Grouping
	}

	var filtered []timesheet.Entry
	if !q.Window.Empty() {
		filtered = lo.Filter(matchTasks(entries, q.Field, q.Numbers), func(e timesheet.Entry, _ int) bool {
			return q.Window.Contains(timesheet.Day(e.Date))
		})
	}

	pivot := pivotByPeriod(filtered, grouping)
	return Metrics{
		Table:    normalizeColumns(pivot, grouping),
		Grouping: grouping,
	}
}

type periodPivot struct {
	periods []time.Time
	// cells maps period -> engineer id -> hours.
	cells map[time.Time]map[string]float64
}

func pivotByPeriod(entries []timesheet.Entry, g Grouping) periodPivot {
	byPeriod := lo.GroupBy(entries, func(e timesheet.Entry) time.Time {
		return g.Start(timesheet.Day(e.Date))
	})

	p := periodPivot{cells: make(map[time.Time]map[string]float64, len(byPeriod))}
	for period, rows := range byPeriod {
		byEngineer := lo.GroupBy(rows, func(e timesheet.Entry) string { return e.Engineer })
		p.cells[period] = lo.MapValues(byEngineer, func(rs []timesheet.Entry, _ string) float64 {
			return lo.SumBy(rs, func(e timesheet.Entry) float64 { return e.Hours })
		})
		p.periods = append(p.periods, period)
	}
	sort.Slice(p.periods, func(i, j int) bool { return p.periods[i].Before(p.periods[j]) })
	return p
}

// normalizeColumns maps engineer ids to roster names in roster order,
// zero-filling missing engineers and dropping everyone else.
func normalizeColumns(p periodPivot, g Grouping) WideTable {
	roster := timesheet.Roster()
	t := WideTable{
		Grouping: g,
		Columns:  timesheet.RosterNames(),
		Rows:     make([]WideRow, 0, len(p.periods)),
	}
	for _, period := range p.periods {
		cells := p.cells[period]
		row := WideRow{Period: period, Hours: make([]float64, len(roster))}
		for i, eng := range roster {
			row.Hours[i] = cells[eng.ID]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
