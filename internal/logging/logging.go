// Package logging sets up the zerolog logger. The terminal belongs to the TUI,
// so output goes to a file.
package logging

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

var root = zerolog.Nop()

// Config selects the log level and file.
type Config struct {
	Level string
	File  string
}

// Init opens the log file and installs the root logger. The std log package
// is redirected to it as well. The returned closer flushes and closes the file.
func Init(cfg Config) (io.Closer, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o750); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	Set(New(f, level))
	return f, nil
}

// New builds a timestamped logger writing to w.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Set installs l as the root logger and routes the std log package through it.
func Set(l zerolog.Logger) {
	root = l
	stdlog.SetFlags(0)
	stdlog.SetOutput(root.With().Str("source", "stdlog").Logger())
}

// Logger returns the root logger.
func Logger() zerolog.Logger {
	return root
}

// WithComponent returns a child logger tagged with component.
func WithComponent(component string) zerolog.Logger {
	return root.With().Str("component", component).Logger()
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
