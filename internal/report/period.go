package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/dgdash/internal/timesheet"
)

// Grouping is the width of the time buckets a task report sums into.
type Grouping int

const (
	// GroupAuto picks a grouping from the task's date span.
	GroupAuto Grouping = iota
	GroupDaily
	GroupWeekly
	GroupMonthly
)

// FallbackGrouping is used when there is no data to derive a span from.
const FallbackGrouping = GroupMonthly

const week = 7 * 24 * time.Hour

// ChooseGrouping picks daily for spans under 15 weeks, weekly under 40,
// monthly otherwise.
func ChooseGrouping(span time.Duration) Grouping {
	switch {
	case span < 15*week:
		return GroupDaily
	case span < 40*week:
		return GroupWeekly
	default:
		return GroupMonthly
	}
}

func (g Grouping) String() string {
	switch g {
	case GroupDaily:
		return "daily"
	case GroupWeekly:
		return "weekly"
	case GroupMonthly:
		return "monthly"
	}
	return "auto"
}

// Label is the axis title for the grouping.
func (g Grouping) Label() string {
	switch g {
	case GroupDaily:
		return "Days"
	case GroupWeekly:
		return "Weeks"
	case GroupMonthly:
		return "Months"
	}
	return ""
}

// ParseGrouping accepts the names from String and the short forms 1d, 1w, 1mo.
func ParseGrouping(s string) (Grouping, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return GroupAuto, nil
	case "daily", "day", "1d":
		return GroupDaily, nil
	case "weekly", "week", "1w":
		return GroupWeekly, nil
	case "monthly", "month", "1mo":
		return GroupMonthly, nil
	}
	return GroupAuto, fmt.Errorf("unknown grouping %q", s)
}

// Start returns the first day of the period containing d. Weeks start on
// Monday. GroupAuto is treated as daily.
func (g Grouping) Start(d time.Time) time.Time {
	y, m, day := d.Date()
	switch g {
	case GroupWeekly:
		offset := (int(d.Weekday()) + 6) % 7
		return time.Date(y, m, day-offset, 0, 0, 0, 0, time.UTC)
	case GroupMonthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// Window is a half-open date range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Empty reports whether the window contains no days.
func (w Window) Empty() bool {
	return !w.Start.Before(w.End)
}

// Contains reports whether d falls in [Start, End).
func (w Window) Contains(d time.Time) bool {
	return !d.Before(w.Start) && d.Before(w.End)
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(timesheet.DateLayout), w.End.Format(timesheet.DateLayout))
}
