package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/sadopc/dgdash/internal/store"
)

// Config holds everything read from the environment and .env.
type Config struct {
	Driver     string `env:"DB_DRIVER" envDefault:"sqlite"`
	SQLitePath string `env:"SQLITE_PATH"`
	Database   string `env:"DATABASE"`
	Username   string `env:"DB_USERNAME"`
	Password   string `env:"DB_PASSWORD"`
	Host       string `env:"DB_HOST" envDefault:"localhost"`
	Port       int    `env:"DB_PORT" envDefault:"5432"`
	SSLMode    string `env:"DB_SSLMODE" envDefault:"disable"`
	Table      string `env:"TS_TABLE" envDefault:"timesheet_entries"`

	// AllocationWeeks is the default width of the allocation window.
	AllocationWeeks int `env:"ALLOCATION_WEEKS" envDefault:"2"`

	Log LogConfig `envPrefix:"LOG_"`
}

// LogConfig configures the rotating log file.
type LogConfig struct {
	Level      string `env:"LEVEL" envDefault:"info"`
	Format     string `env:"FORMAT" envDefault:"text"`
	Path       string `env:"PATH"`
	MaxSize    int    `env:"MAX_SIZE" envDefault:"10"` // MB
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"3"`
	MaxAge     int    `env:"MAX_AGE" envDefault:"28"` // days
	Compress   bool   `env:"COMPRESS" envDefault:"true"`
}

// Load reads the given .env files (".env" when none are named), then parses
// the environment. Missing .env files are not an error; variables already
// set in the environment win over the files.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return Parse()
}

// Parse reads the config from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.fill(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) fill() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	switch c.Driver {
	case "sqlite":
		if c.SQLitePath == "" {
			p, err := store.DefaultDBPath()
			if err != nil {
				return fmt.Errorf("default sqlite path: %w", err)
			}
			c.SQLitePath = p
		}
	case "postgres", "postgresql":
		c.Driver = "postgres"
		if c.Database == "" {
			return errors.New("DATABASE is required for the postgres driver")
		}
	default:
		return fmt.Errorf("DB_DRIVER %q: want one of %s", c.Driver, strings.Join(store.Dialects(), ", "))
	}
	if c.AllocationWeeks < 1 {
		c.AllocationWeeks = 2
	}
	if c.Log.Path == "" {
		dir := filepath.Dir(c.SQLitePath)
		if c.SQLitePath == "" {
			p, err := store.DefaultDBPath()
			if err != nil {
				return fmt.Errorf("default log path: %w", err)
			}
			dir = filepath.Dir(p)
		}
		c.Log.Path = filepath.Join(dir, "dgdash.log")
	}
	return nil
}

// PostgresDSN builds the connection URI for the postgres driver.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme: "postgresql",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	if c.Username != "" {
		u.User = url.UserPassword(c.Username, c.Password)
	}
	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// StoreOptions returns the options for store.Open.
func (c *Config) StoreOptions() store.Options {
	opts := store.Options{Dialect: c.Driver, Table: c.Table}
	if c.Driver == "postgres" {
		opts.DSN = c.PostgresDSN()
	} else {
		opts.DSN = c.SQLitePath
	}
	return opts
}

// Setting is one displayable config value.
type Setting struct {
	Key   string
	Value string
}

// Settings lists the resolved values for display, with the password masked.
func (c *Config) Settings() []Setting {
	password := ""
	if c.Password != "" {
		password = "********"
	}
	s := []Setting{
		{"DB_DRIVER", c.Driver},
		{"TS_TABLE", c.Table},
	}
	if c.Driver == "postgres" {
		s = append(s,
			Setting{"DATABASE", c.Database},
			Setting{"DB_HOST", c.Host},
			Setting{"DB_PORT", fmt.Sprint(c.Port)},
			Setting{"DB_USERNAME", c.Username},
			Setting{"DB_PASSWORD", password},
			Setting{"DB_SSLMODE", c.SSLMode},
		)
	} else {
		s = append(s, Setting{"SQLITE_PATH", c.SQLitePath})
	}
	return append(s,
		Setting{"ALLOCATION_WEEKS", fmt.Sprint(c.AllocationWeeks)},
		Setting{"LOG_LEVEL", c.Log.Level},
		Setting{"LOG_FORMAT", c.Log.Format},
		Setting{"LOG_PATH", c.Log.Path},
	)
}
