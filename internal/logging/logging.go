package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sadopc/dgdash/internal/config"
)

// Options tweaks where New sends log lines.
type Options struct {
	// Stderr also writes to standard error. Leave unset while the TUI owns
	// the terminal.
	Stderr bool
}

// New builds a logger that writes to the rotating file in cfg. The returned
// closer flushes and closes the file.
func New(cfg config.LogConfig, opts Options) (*logrus.Logger, io.Closer, error) {
	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	file := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(formatter(cfg.Format))
	if opts.Stderr {
		log.SetOutput(io.MultiWriter(file, os.Stderr))
	} else {
		log.SetOutput(file)
	}
	return log, file, nil
}

func formatter(format string) logrus.Formatter {
	if strings.EqualFold(format, "json") {
		return &logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"}
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	}
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
