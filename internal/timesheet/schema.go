package timesheet

import (
	"fmt"
	"strings"
)

// Field names one column of the timesheet table.
type Field int

const (
	Date Field = iota
	Engineer
	Time
	ECR
	EWR
	NPR
	NCR
	TR
	EN
	Model
	Meetings
	Other
	Comments
)

var fieldColumns = [...]string{
	Date:     "Date",
	Engineer: "Engineer",
	Time:     "Time",
	ECR:      "ECR",
	EWR:      "EWR",
	NPR:      "NPR",
	NCR:      "NCR",
	TR:       "TR",
	EN:       "EN",
	Model:    "Model",
	Meetings: "Meetings",
	Other:    "Other",
	Comments: "Comments",
}

// Columns lists every field in table order.
var Columns = []Field{Date, Engineer, Time, ECR, EWR, NPR, NCR, TR, EN, Model, Meetings, Other, Comments}

// CategoryFields are the task-number columns. A row normally fills at most one.
var CategoryFields = []Field{ECR, EWR, NPR, NCR, TR, EN, Model}

// TaskTypes are the fields offered as task types in reports.
var TaskTypes = []Field{ECR, EWR, NPR, Model, Meetings}

// Column returns the SQL column name.
func (f Field) Column() string {
	if f < 0 || int(f) >= len(fieldColumns) {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldColumns[f]
}

func (f Field) String() string { return f.Column() }

// IsText reports whether the field holds optional text.
func (f Field) IsText() bool {
	return f >= ECR && f <= Comments
}

// ParseField resolves a column name, ignoring case.
func ParseField(name string) (Field, error) {
	for _, f := range Columns {
		if strings.EqualFold(f.Column(), strings.TrimSpace(name)) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown timesheet field %q", name)
}
