// Package logging provides the diagnostic logger used by isaaclog.
// Log lines go to stderr so they never mix with the followed game output
// on stdout.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Level represents a log level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) logrus() logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Logger is the interface for structured logging.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithField returns a new logger with the given field added.
	WithField(key string, value interface{}) Logger

	// WithFields returns a new logger with the given fields added.
	WithFields(fields map[string]interface{}) Logger

	// SetLevel sets the minimum log level.
	SetLevel(level Level)

	// SetOutput sets the output writer.
	SetOutput(w io.Writer)
}

var (
	defaultLogger Logger
	defaultMu     sync.RWMutex
)

func init() {
	defaultLogger = New()
}

// Default returns the default logger.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault sets the default logger.
func SetDefault(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Debug logs a debug message using the default logger.
func Debug(msg string, args ...interface{}) {
	Default().Debug(msg, args...)
}

// Info logs an info message using the default logger.
func Info(msg string, args ...interface{}) {
	Default().Info(msg, args...)
}

// Warn logs a warning message using the default logger.
func Warn(msg string, args ...interface{}) {
	Default().Warn(msg, args...)
}

// Error logs an error message using the default logger.
func Error(msg string, args ...interface{}) {
	Default().Error(msg, args...)
}

// logrusLogger implements Logger on top of a logrus entry. Derived loggers
// share the underlying logrus.Logger, so level and output changes apply to
// all of them.
type logrusLogger struct {
	entry *logrus.Entry
}

// New creates a logger writing to stderr at Info level.
func New() Logger {
	return NewWithOutput(os.Stderr)
}

// NewWithOutput creates a new logger with the specified output.
func NewWithOutput(w io.Writer) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

func (l *logrusLogger) log(level logrus.Level, msg string, args ...interface{}) {
	if len(args) > 0 {
		l.entry.Logf(level, msg, args...)
		return
	}
	l.entry.Log(level, msg)
}

func (l *logrusLogger) Debug(msg string, args ...interface{}) {
	l.log(logrus.DebugLevel, msg, args...)
}

func (l *logrusLogger) Info(msg string, args ...interface{}) {
	l.log(logrus.InfoLevel, msg, args...)
}

func (l *logrusLogger) Warn(msg string, args ...interface{}) {
	l.log(logrus.WarnLevel, msg, args...)
}

func (l *logrusLogger) Error(msg string, args ...interface{}) {
	l.log(logrus.ErrorLevel, msg, args...)
}

func (l *logrusLogger) WithField(key string, value interface{}) Logger {
	return &logrusLogger{entry: l.entry.WithField(key, value)}
}

func (l *logrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &logrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *logrusLogger) SetLevel(level Level) {
	l.entry.Logger.SetLevel(level.logrus())
}

func (l *logrusLogger) SetOutput(w io.Writer) {
	l.entry.Logger.SetOutput(w)
}

// NopLogger is a logger that discards all output.
// Useful for testing or when logging should be disabled.
type NopLogger struct{}

func (NopLogger) Debug(msg string, args ...interface{})             {}
func (NopLogger) Info(msg string, args ...interface{})              {}
func (NopLogger) Warn(msg string, args ...interface{})              {}
func (NopLogger) Error(msg string, args ...interface{})             {}
func (n NopLogger) WithField(key string, value interface{}) Logger  { return n }
func (n NopLogger) WithFields(fields map[string]interface{}) Logger { return n }
func (NopLogger) SetLevel(level Level)                              {}
func (NopLogger) SetOutput(w io.Writer)                             {}
