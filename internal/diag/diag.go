// Package diag is the diagnostic text side channel: a leveled line
// logger, rotated on disk. It is observability only, never a contract;
// nothing in the protocol depends on its output.
package diag

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger writes timestamped leveled lines to a single sink.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	closer io.Closer
	min    Level
}

// New creates a file logger rotated by lumberjack. An empty path logs
// to stderr without rotation.
func New(path string, maxSizeMb, maxBackups int, min Level) *Logger {
	if path == "" {
		return NewWriter(os.Stderr, min)
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMb,
		MaxBackups: maxBackups,
	}
	return &Logger{out: lj, closer: lj, min: min}
}

// NewWriter creates a logger over an arbitrary writer, used by tests.
func NewWriter(w io.Writer, min Level) *Logger {
	return &Logger{out: w, min: min}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{out: io.Discard, min: LevelError + 1}
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if level < l.min {
		return
	}
	line := fmt.Sprintf("%s %-5s %s\n",
		time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		level, fmt.Sprintf(format, args...))

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := io.WriteString(l.out, line); err != nil {
		fmt.Fprintf(os.Stderr, "diag write failed: %v\n", err)
	}
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(LevelDebug, format, args...) }

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...interface{}) { l.logf(LevelInfo, format, args...) }

// Warnf logs at warn level.
func (l *Logger) Warnf(format string, args ...interface{}) { l.logf(LevelWarn, format, args...) }

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(LevelError, format, args...) }

// Close releases the underlying sink, if it owns one.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
