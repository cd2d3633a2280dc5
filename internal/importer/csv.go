package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sadopc/dgdash/internal/timesheet"
)

// ReadCSV parses timesheet rows. The header must name Date, Engineer and
// Time; other schema columns are optional and may appear in any order.
func ReadCSV(r io.Reader) ([]timesheet.Entry, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[timesheet.Field]int, len(header))
	for i, name := range header {
		f, err := timesheet.ParseField(strings.TrimPrefix(name, "\ufeff"))
		if err != nil {
			return nil, fmt.Errorf("header column %d: %w", i+1, err)
		}
		index[f] = i
	}
	for _, required := range []timesheet.Field{timesheet.Date, timesheet.Engineer, timesheet.Time} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("header is missing %s", required)
		}
	}

	var entries []timesheet.Entry
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		e, err := parseRecord(record, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func parseRecord(record []string, index map[timesheet.Field]int) (timesheet.Entry, error) {
	get := func(f timesheet.Field) string {
		i, ok := index[f]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var e timesheet.Entry
	d, err := timesheet.ParseDay(get(timesheet.Date))
	if err != nil {
		return e, fmt.Errorf("date: %w", err)
	}
	e.Date = d

	e.Engineer = get(timesheet.Engineer)
	if e.Engineer == "" {
		return e, errors.New("engineer is empty")
	}

	if raw := get(timesheet.Time); raw != "" {
		e.Hours, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return e, fmt.Errorf("time: %w", err)
		}
		if e.Hours < 0 {
			return e, fmt.Errorf("time: negative hours %v", e.Hours)
		}
	}

	for _, f := range timesheet.Columns {
		if f.IsText() {
			e.SetText(f, get(f))
		}
	}
	return e, nil
}

// ReadCSVFile opens path and parses it with ReadCSV.
func ReadCSVFile(path string) ([]timesheet.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}
