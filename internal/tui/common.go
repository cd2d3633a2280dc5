package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/dgdash/internal/report"
	"github.com/sadopc/dgdash/internal/timesheet"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTeam viewState = iota
	viewAllocation
	viewMetrics
	viewSettings
)

var viewNames = []string{"Team", "Allocation", "Task Metrics", "Settings"}

// now is swapped in tests.
var now = time.Now

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func today() time.Time {
	return timesheet.Day(now())
}

// defaultWindow is [today - weeks, today).
func defaultWindow(weeks int) report.Window {
	if weeks < 1 {
		weeks = 1
	}
	end := today()
	return report.Window{Start: end.AddDate(0, 0, -7*weeks), End: end}
}

func formatHours(h float64) string {
	return fmt.Sprintf("%.1fh", h)
}

func formatWindow(w report.Window) string {
	if w.Empty() {
		return "no dates"
	}
	last := w.End.AddDate(0, 0, -1)
	return fmt.Sprintf("%s - %s", w.Start.Format("Jan 02"), last.Format("Jan 02, 2006"))
}

// periodLabel renders a period start for a bar label.
func periodLabel(t time.Time, g report.Grouping) string {
	if g == report.GroupMonthly {
		return t.Format("Jan 06")
	}
	return t.Format("01/02")
}

func windowDays(w report.Window) int {
	return int(w.End.Sub(w.Start).Hours() / 24)
}
