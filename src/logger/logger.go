package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"monitor-dashboard/src/models"
)

// -----------------------------------------------------------------------------

// Level orders log severities
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

// ParseLevel maps a config string to a Level, defaulting to INFO
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARNING", "WARN":
		return LevelWarning
	case "ERROR":
		return LevelError
	case "CRITICAL":
		return LevelCritical
	default:
		return LevelInfo
	}
}

// -----------------------------------------------------------------------------

// Logger provides structured logging functionality
type Logger struct {
	name     string
	logger   *log.Logger
	minLevel Level
	exit     func(int)
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance.
// config may be nil, a *models.MConfig or anything exposing the log level.
func NewLogger(config interface{}, name string) *Logger {
	return NewLoggerWithWriter(config, name, os.Stdout)
}

// NewLoggerWithWriter is NewLogger with an explicit destination
func NewLoggerWithWriter(config interface{}, name string, w io.Writer) *Logger {
	return &Logger{
		name:     name,
		logger:   log.New(w, "", log.LstdFlags),
		minLevel: levelFromConfig(config),
		exit:     os.Exit,
	}
}

// -----------------------------------------------------------------------------

type levelProvider interface {
	GetLogLevel() string
}

func levelFromConfig(config interface{}) Level {
	switch c := config.(type) {
	case *models.MConfig:
		if c != nil {
			return ParseLevel(c.LogLevel)
		}
	case levelProvider:
		return ParseLevel(c.GetLogLevel())
	case string:
		return ParseLevel(c)
	}
	return LevelInfo
}

// -----------------------------------------------------------------------------

// Named returns a logger sharing output and level under a new component name
func (l *Logger) Named(name string) *Logger {
	return &Logger{
		name:     name,
		logger:   l.logger,
		minLevel: l.minLevel,
		exit:     l.exit,
	}
}

// -----------------------------------------------------------------------------

// Writer exposes the underlying destination (used to route gin output)
func (l *Logger) Writer() io.Writer {
	return l.logger.Writer()
}

// -----------------------------------------------------------------------------

func (l *Logger) printf(level Level, tag string, format string, args ...interface{}) {
	if level < l.minLevel {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] %s: %s", l.name, tag, msg)
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.printf(LevelDebug, "DEBUG", format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.printf(LevelWarning, "WARNING", format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.printf(LevelInfo, "INFO", format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.printf(LevelError, "ERROR", format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] CRITICAL: %s", l.name, msg)
	l.exit(1)
}
