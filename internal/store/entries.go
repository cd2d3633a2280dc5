package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/dgdash/internal/timesheet"
)

// textColumns are the nullable text fields in table order.
var textColumns = []timesheet.Field{
	timesheet.ECR, timesheet.EWR, timesheet.NPR, timesheet.NCR, timesheet.TR,
	timesheet.EN, timesheet.Model, timesheet.Meetings, timesheet.Other, timesheet.Comments,
}

func columnList() string {
	cols := make([]string, len(timesheet.Columns))
	for i, f := range timesheet.Columns {
		cols[i] = `"` + f.Column() + `"`
	}
	return strings.Join(cols, ", ")
}

// FetchAll returns every row, oldest first.
func (s *Store) FetchAll(ctx context.Context) ([]timesheet.Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY "Date"`, columnList(), s.table)
	entries, err := s.queryEntries(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch all: %w", err)
	}
	return entries, nil
}

// FetchBetween returns rows with start <= Date < end, oldest first.
func (s *Store) FetchBetween(ctx context.Context, start, end time.Time) ([]timesheet.Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE "Date" >= %s AND "Date" < %s ORDER BY "Date"`,
		columnList(), s.table, s.dialect.placeholder(1), s.dialect.placeholder(2))
	entries, err := s.queryEntries(ctx, query, s.dialect.dateArg(start), s.dialect.dateArg(end))
	if err != nil {
		return nil, fmt.Errorf("fetch between %s and %s: %w",
			start.Format(timesheet.DateLayout), end.Format(timesheet.DateLayout), err)
	}
	return entries, nil
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]timesheet.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []timesheet.Entry
	for rows.Next() {
		var e timesheet.Entry
		var date any
		var engineer sql.NullString
		var hours sql.NullFloat64
		text := make([]sql.NullString, len(textColumns))

		dest := []any{&date, &engineer, &hours}
		for i := range text {
			dest = append(dest, &text[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		e.Date, err = scanDate(date)
		if err != nil {
			return nil, err
		}
		e.Engineer = engineer.String
		e.Hours = hours.Float64
		for i, f := range textColumns {
			e.SetText(f, text[i].String)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// scanDate accepts the representations drivers return for a DATE column.
func scanDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return timesheet.Day(d), nil
	case string:
		return parseDateText(d)
	case []byte:
		return parseDateText(string(d))
	case nil:
		return time.Time{}, fmt.Errorf("null Date")
	}
	return time.Time{}, fmt.Errorf("unsupported Date value %T", v)
}

func parseDateText(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) >= len(timesheet.DateLayout) {
		if d, err := timesheet.ParseDay(s[:len(timesheet.DateLayout)]); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse Date %q", s)
}

// Insert writes entries in one transaction.
func (s *Store) Insert(ctx context.Context, entries ...timesheet.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	marks := make([]string, len(timesheet.Columns))
	for i := range marks {
		marks[i] = s.dialect.placeholder(i + 1)
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, s.table, columnList(), strings.Join(marks, ", "))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		args := []any{s.dialect.dateArg(e.Date), e.Engineer, e.Hours}
		for _, f := range textColumns {
			args = append(args, nullable(e.Text(f)))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert entry %s/%s: %w", e.Date.Format(timesheet.DateLayout), e.Engineer, err)
		}
	}
	return tx.Commit()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Count returns the number of rows in the table.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}
