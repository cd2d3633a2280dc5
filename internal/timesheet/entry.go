package timesheet

import (
	"strings"
	"time"
)

// Entry is one row of reported work: one engineer, one day.
// Empty strings stand in for NULL text columns.
type Entry struct {
	Date     time.Time
	Engineer string
	Hours    float64

	ECR      string
	EWR      string
	NPR      string
	NCR      string
	TR       string
	EN       string
	Model    string
	Meetings string
	Other    string
	Comments string
}

// Text returns the value of a text field. Non-text fields return "".
func (e Entry) Text(f Field) string {
	switch f {
	case ECR:
		return e.ECR
	case EWR:
		return e.EWR
	case NPR:
		return e.NPR
	case NCR:
		return e.NCR
	case TR:
		return e.TR
	case EN:
		return e.EN
	case Model:
		return e.Model
	case Meetings:
		return e.Meetings
	case Other:
		return e.Other
	case Comments:
		return e.Comments
	case Engineer:
		return e.Engineer
	}
	return ""
}

// SetText writes a text field. It is a no-op for Date and Time.
func (e *Entry) SetText(f Field, v string) {
	switch f {
	case ECR:
		e.ECR = v
	case EWR:
		e.EWR = v
	case NPR:
		e.NPR = v
	case NCR:
		e.NCR = v
	case TR:
		e.TR = v
	case EN:
		e.EN = v
	case Model:
		e.Model = v
	case Meetings:
		e.Meetings = v
	case Other:
		e.Other = v
	case Comments:
		e.Comments = v
	case Engineer:
		e.Engineer = v
	}
}

// Has reports whether a text field holds anything besides whitespace.
func (e Entry) Has(f Field) bool {
	return strings.TrimSpace(e.Text(f)) != ""
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// DateLayout is the ISO calendar date layout used on the wire and in the store.
const DateLayout = "2006-01-02"
