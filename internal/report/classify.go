package report

import (
	"github.com/samber/lo"

	"github.com/sadopc/dgdash/internal/timesheet"
)

// Bucket is a task category for the time allocation report.
type Bucket struct {
	Name string
	// Key must be filled for a row to count. Unused when CatchAll is set.
	Key timesheet.Field
	// Exclusive must all be empty for a row to count.
	Exclusive []timesheet.Field
	CatchAll  bool
}

// otherThan returns the category fields except f, plus Meetings.
func otherThan(f timesheet.Field) []timesheet.Field {
	out := lo.Without(timesheet.CategoryFields, f)
	return append(out, timesheet.Meetings)
}

// Buckets are the allocation categories in display order.
var Buckets = []Bucket{
	{Name: "ECR", Key: timesheet.ECR, Exclusive: otherThan(timesheet.ECR)},
	{Name: "EWR", Key: timesheet.EWR, Exclusive: otherThan(timesheet.EWR)},
	{Name: "NPR", Key: timesheet.NPR, Exclusive: otherThan(timesheet.NPR)},
	{Name: "Meetings", Key: timesheet.Meetings},
	{
		Name:      "Misc.",
		CatchAll:  true,
		Exclusive: append(lo.Without(timesheet.CategoryFields), timesheet.Meetings),
	},
}

// BucketNames returns the bucket names in display order.
func BucketNames() []string {
	return lo.Map(Buckets, func(b Bucket, _ int) string { return b.Name })
}

func (b Bucket) matches(e timesheet.Entry) bool {
	if !b.CatchAll && !e.Has(b.Key) {
		return false
	}
	return lo.NoneBy(b.Exclusive, e.Has)
}

// Classify returns the index into Buckets that e counts toward. A meeting
// note wins over any category; otherwise rows with more than one category
// filled match nothing and report false.
func Classify(e timesheet.Entry) (int, bool) {
	for i, b := range Buckets {
		if b.matches(e) {
			return i, true
		}
	}
	return -1, false
}

// EngineerAllocation holds one engineer's hours per bucket.
type EngineerAllocation struct {
	Engineer timesheet.EngineerInfo
	// Hours is aligned with Buckets.
	Hours []float64
	// Unclassified counts hours from rows that matched no bucket.
	Unclassified float64
}

// Total is the sum over all buckets, excluding unclassified hours.
func (a EngineerAllocation) Total() float64 {
	return lo.Sum(a.Hours)
}

// Bucket returns the hours for the named bucket.
func (a EngineerAllocation) Bucket(name string) float64 {
	for i, b := range Buckets {
		if b.Name == name {
			return a.Hours[i]
		}
	}
	return 0
}

// Allocation is the time allocation report: one row per roster engineer.
type Allocation struct {
	Rows []EngineerAllocation
}

// Empty reports whether no hours landed in any bucket.
func (a Allocation) Empty() bool {
	return lo.EveryBy(a.Rows, func(r EngineerAllocation) bool { return r.Total() == 0 })
}

// Allocate sums hours per roster engineer per bucket. Engineers outside the
// roster are ignored.
func Allocate(entries []timesheet.Entry) Allocation {
	byEngineer := lo.GroupBy(entries, func(e timesheet.Entry) string { return e.Engineer })

	rows := make([]EngineerAllocation, 0, len(timesheet.Roster()))
	for _, eng := range timesheet.Roster() {
		row := EngineerAllocation{Engineer: eng, Hours: make([]float64, len(Buckets))}
		for _, e := range byEngineer[eng.ID] {
			if i, ok := Classify(e); ok {
				row.Hours[i] += e.Hours
			} else {
				row.Unclassified += e.Hours
			}
		}
		rows = append(rows, row)
	}
	return Allocation{Rows: rows}
}
