// Package logging provides structured logging with file and console output.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Dir     string // directory for daily log files; empty disables file output
	Level   string // debug, info, warn or error
	Console bool   // also write human-readable output to Out
	Out     io.Writer
}

// Logger wraps zerolog with an optional log file.
type Logger struct {
	zlog zerolog.Logger
	file *os.File
}

// ParseLevel maps a level name to a zerolog level. Unknown names map to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New creates a Logger. With no directory and no console the logger discards
// everything.
func New(cfg Config) (*Logger, error) {
	var writers []io.Writer
	l := &Logger{}

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		name := fmt.Sprintf("affectd_%s.log", time.Now().Format("2006-01-02"))
		file, err := os.OpenFile(filepath.Join(cfg.Dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = file
		writers = append(writers, file)
	}

	if cfg.Console {
		out := cfg.Out
		if out == nil {
			out = os.Stderr
		}
		writers = append(writers, zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"})
	}

	if len(writers) == 0 {
		l.zlog = zerolog.Nop()
		return l, nil
	}

	l.zlog = zerolog.New(io.MultiWriter(writers...)).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("app", "affectd").
		Logger()
	return l, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// Zerolog returns the underlying logger.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zlog
}

// Component returns a child logger tagged with the component name.
func (l *Logger) Component(name string) zerolog.Logger {
	return l.zlog.With().Str("component", name).Logger()
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
