package store

import (
	"fmt"
	"time"

	"github.com/sadopc/dgdash/internal/timesheet"
)

type dialect struct {
	name   string
	driver string
	// placeholder returns the bind marker for the n-th argument (1-based).
	placeholder func(n int) string
	// dateArg converts a date into the value bound for a "Date" comparison.
	dateArg func(t time.Time) any
}

var dialects = map[string]dialect{
	"sqlite": {
		name:        "sqlite",
		driver:      "sqlite",
		placeholder: func(int) string { return "?" },
		dateArg:     func(t time.Time) any { return t.Format(timesheet.DateLayout) },
	},
	"postgres": {
		name:        "postgres",
		driver:      "pgx",
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		dateArg:     func(t time.Time) any { return timesheet.Day(t) },
	},
}

// Dialects lists the supported dialect names.
func Dialects() []string {
	return []string{"sqlite", "postgres"}
}
