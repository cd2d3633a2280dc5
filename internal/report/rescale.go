package report

import (
	"fmt"
	"time"

	"github.com/sadopc/dgdash/internal/timesheet"
)

// AxisEvent describes a change to a chart's x axis.
type AxisEvent struct {
	// Range holds the new axis bounds as date or datetime strings.
	Range *[2]string
	// AutoRange is set when the axis was reset to fit the data.
	AutoRange bool
}

// RescaleOutcome says what a chart should do after an axis event.
type RescaleOutcome int

const (
	RescaleNoop RescaleOutcome = iota
	RescaleRecompute
	RescaleError
)

func (o RescaleOutcome) String() string {
	switch o {
	case RescaleRecompute:
		return "recompute"
	case RescaleError:
		return "error"
	}
	return "noop"
}

// RescaleResult is the outcome of Rescale. Window is set for
// RescaleRecompute and Err for RescaleError.
type RescaleResult struct {
	Outcome RescaleOutcome
	Window  Window
	Err     error
}

// Rescale decides which window the totals should cover after an axis
// event. picker is the window chosen outside the chart.
func Rescale(ev AxisEvent, picker Window) RescaleResult {
	switch {
	case ev.Range != nil:
		start, err := axisDate(ev.Range[0])
		if err != nil {
			return RescaleResult{Outcome: RescaleError, Err: err}
		}
		end, err := axisDate(ev.Range[1])
		if err != nil {
			return RescaleResult{Outcome: RescaleError, Err: err}
		}
		return RescaleResult{Outcome: RescaleRecompute, Window: Window{Start: start, End: end}}
	case ev.AutoRange:
		if picker.Start.IsZero() || picker.End.IsZero() {
			return RescaleResult{Outcome: RescaleNoop}
		}
		return RescaleResult{Outcome: RescaleRecompute, Window: picker}
	}
	return RescaleResult{Outcome: RescaleNoop}
}

// axisDate reads the calendar date from the first ten characters of s.
func axisDate(s string) (time.Time, error) {
	if len(s) < len(timesheet.DateLayout) {
		return time.Time{}, fmt.Errorf("axis bound %q: too short for a date", s)
	}
	d, err := timesheet.ParseDay(s[:len(timesheet.DateLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("axis bound %q: %w", s, err)
	}
	return d, nil
}
