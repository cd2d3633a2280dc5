package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const currentVersion = 1

// DefaultTable is the timesheet table name used when none is configured.
const DefaultTable = "timesheet_entries"

// ErrUnknownDialect is returned by Open for an unsupported driver name.
var ErrUnknownDialect = errors.New("unknown database dialect")

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Options selects the backing database.
type Options struct {
	// Dialect is "sqlite" or "postgres".
	Dialect string
	// DSN is a file path for sqlite or a connection URI for postgres.
	DSN   string
	Table string
}

// Store reads and writes timesheet rows.
type Store struct {
	db      *sql.DB
	dialect dialect
	table   string
}

// Open connects to the database described by opts. SQLite databases are
// created and migrated; postgres tables are expected to exist.
func Open(opts Options) (*Store, error) {
	d, ok := dialects[opts.Dialect]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, opts.Dialect)
	}
	table := opts.Table
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	if d.name == "sqlite" && opts.DSN != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(opts.DSN), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open(d.driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, dialect: d, table: table}
	if d.name != "sqlite" {
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping %s: %w", d.name, err)
		}
		return s, nil
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// New opens (or creates) the SQLite database at dbPath.
func New(dbPath string) (*Store, error) {
	return Open(Options{Dialect: "sqlite", DSN: dbPath})
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Dialect returns the name of the backing database dialect.
func (s *Store) Dialect() string { return s.dialect.name }

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	ddl := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		"Date"     DATE NOT NULL,
		"Engineer" TEXT NOT NULL,
		"Time"     REAL NOT NULL DEFAULT 0,
		"ECR"      TEXT,
		"EWR"      TEXT,
		"NPR"      TEXT,
		"NCR"      TEXT,
		"TR"       TEXT,
		"EN"       TEXT,
		"Model"    TEXT,
		"Meetings" TEXT,
		"Other"    TEXT,
		"Comments" TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_%[2]s_date ON %[1]s("Date");
	`, s.table, indexSuffix(s.table))
	_, err := s.db.Exec(ddl)
	return err
}

func indexSuffix(table string) string {
	return regexp.MustCompile(`\W`).ReplaceAllString(table, "_")
}

// DefaultDBPath returns ~/.config/dgdash/timesheets.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "dgdash", "timesheets.db"), nil
}
