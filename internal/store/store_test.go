package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sadopc/dgdash/internal/timesheet"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := timesheet.ParseDay(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	entries := []timesheet.Entry{
		{Date: day(t, "2024-01-03"), Engineer: "jbarron", Hours: 2, EWR: "55", Comments: "drawings"},
		{Date: day(t, "2024-01-01"), Engineer: "ashahinian", Hours: 4, ECR: "123"},
		{Date: day(t, "2024-01-02"), Engineer: "jbarron", Hours: 3, ECR: "123"},
		{Date: day(t, "2024-02-01"), Engineer: "malpert", Hours: 1.5, Meetings: "planning"},
	}
	if err := s.Insert(context.Background(), entries...); err != nil {
		t.Fatalf("insert: %v", err)
	}
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// Should have run migration v1
	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
	if s.Dialect() != "sqlite" {
		t.Fatalf("dialect = %q", s.Dialect())
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/timesheets.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	seed(t, s)
	s.Close()

	// Reopen keeps the rows without re-migrating
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	n, err := s2.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Fatalf("count after reopen = %d, want 4", n)
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	// Running migrate again should be a no-op
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestOpenUnknownDialect(t *testing.T) {
	_, err := Open(Options{Dialect: "oracle", DSN: "x"})
	if !errors.Is(err, ErrUnknownDialect) {
		t.Fatalf("expected ErrUnknownDialect, got %v", err)
	}
}

func TestOpenRejectsBadTable(t *testing.T) {
	_, err := Open(Options{Dialect: "sqlite", DSN: ":memory:", Table: "entries; DROP TABLE x"})
	if err == nil {
		t.Fatal("expected error for invalid table name")
	}
}

func TestOpenCustomTable(t *testing.T) {
	s, err := Open(Options{Dialect: "sqlite", DSN: ":memory:", Table: "ts_2024"})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	seed(t, s)
	n, _ := s.Count(context.Background())
	if n != 4 {
		t.Fatalf("count = %d, want 4", n)
	}
}

// ============================================================
// Fetch
// ============================================================

func TestFetchAllSortedByDate(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)

	entries, err := s.FetchAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Date.Before(entries[i-1].Date) {
			t.Fatalf("entries not sorted: %v before %v", entries[i].Date, entries[i-1].Date)
		}
	}

	first := entries[0]
	if first.Engineer != "ashahinian" || first.Hours != 4 || first.ECR != "123" {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	if first.EWR != "" || first.Meetings != "" {
		t.Fatal("NULL columns should read back empty")
	}
	if !first.Date.Equal(day(t, "2024-01-01")) {
		t.Fatalf("date = %v", first.Date)
	}

	third := entries[2]
	if third.EWR != "55" || third.Comments != "drawings" {
		t.Fatalf("text columns lost: %+v", third)
	}
}

func TestFetchAllEmpty(t *testing.T) {
	s := newTestStore(t)
	entries, err := s.FetchAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if entries != nil {
		t.Fatalf("expected nil slice, got %d items", len(entries))
	}
}

func TestFetchBetweenHalfOpen(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)

	entries, err := s.FetchBetween(context.Background(), day(t, "2024-01-01"), day(t, "2024-01-03"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries in [01-01, 01-03), got %d", len(entries))
	}
	for _, e := range entries {
		if !e.Date.Before(day(t, "2024-01-03")) {
			t.Fatalf("end date should be excluded, got %v", e.Date)
		}
	}
}

func TestFetchBetweenInverted(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)

	entries, err := s.FetchBetween(context.Background(), day(t, "2024-02-01"), day(t, "2024-01-01"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("inverted window should return nothing, got %d", len(entries))
	}
}

func TestFetchCancelledContext(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.FetchAll(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

// ============================================================
// Insert
// ============================================================

func TestInsertNothing(t *testing.T) {
	s := newTestStore(t)
	if err := s.Insert(context.Background()); err != nil {
		t.Fatal(err)
	}
	n, _ := s.Count(context.Background())
	if n != 0 {
		t.Fatalf("count = %d, want 0", n)
	}
}

func TestInsertStoresNulls(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)

	var nulls int
	s.db.QueryRow(`SELECT COUNT(*) FROM timesheet_entries WHERE "ECR" IS NULL`).Scan(&nulls)
	if nulls != 2 {
		t.Fatalf("expected 2 NULL ECR rows, got %d", nulls)
	}
}

// ============================================================
// Helpers
// ============================================================

func TestScanDate(t *testing.T) {
	want := day(t, "2024-03-05")
	tests := []any{
		"2024-03-05",
		[]byte("2024-03-05"),
		"2024-03-05 00:00:00+00:00",
		time.Date(2024, 3, 5, 15, 30, 0, 0, time.UTC),
	}
	for _, in := range tests {
		got, err := scanDate(in)
		if err != nil {
			t.Fatalf("scanDate(%v): %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("scanDate(%v) = %v, want %v", in, got, want)
		}
	}

	for _, bad := range []any{nil, 42, "March 5"} {
		if _, err := scanDate(bad); err == nil {
			t.Fatalf("scanDate(%v) should fail", bad)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	if got := dialects["sqlite"].placeholder(3); got != "?" {
		t.Fatalf("sqlite placeholder = %q", got)
	}
	if got := dialects["postgres"].placeholder(3); got != "$3" {
		t.Fatalf("postgres placeholder = %q", got)
	}
}
