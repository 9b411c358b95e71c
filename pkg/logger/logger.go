// Package logger provides the structured logger shared by every component of
// the library service. It is a thin layer over logrus so callers can use the
// familiar WithField/WithError chaining.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// LoggingConfig configures a Logger.
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	Output string // stdout, stderr
	// FilePath, when set, receives a copy of every entry in addition to Output.
	FilePath string
}

// Logger wraps a logrus logger. A Logger is safe for concurrent use.
type Logger struct {
	*logrus.Logger
	component string
	file      *os.File
}

// New builds a logger from cfg. Invalid levels fall back to info; an
// unopenable log file is reported on the console and otherwise ignored.
func New(cfg LoggingConfig) *Logger {
	base := logrus.New()

	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	default:
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}

	var console io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		console = os.Stderr
	}

	l := &Logger{Logger: base}
	if cfg.FilePath != "" {
		f, err := openLogFile(cfg.FilePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: %v; logging to console only\n", err)
		} else {
			l.file = f
			console = io.MultiWriter(console, f)
		}
	}
	base.SetOutput(console)
	return l
}

// NewDefault returns an info-level text logger tagged with component.
func NewDefault(component string) *Logger {
	l := New(LoggingConfig{Level: "info", Format: "text"})
	l.component = component
	return l
}

// NewDiscard returns a logger that drops every entry. Useful in tests.
func NewDiscard() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return &Logger{Logger: base}
}

// Component returns an entry pre-populated with the component field.
func (l *Logger) Component(name string) *logrus.Entry {
	return l.WithField("component", name)
}

// WithField adds the logger's component (when set) alongside key.
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.entry().WithField(key, value)
}

// WithFields adds the logger's component (when set) alongside fields.
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.entry().WithFields(fields)
}

// WithError adds the logger's component (when set) alongside err.
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.entry().WithError(err)
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) entry() *logrus.Entry {
	entry := logrus.NewEntry(l.Logger)
	if l.component != "" {
		entry = entry.WithField("component", l.component)
	}
	return entry
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
