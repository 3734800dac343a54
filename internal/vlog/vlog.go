// Package vlog provides structured logging for vicut. It writes timestamped,
// leveled, categorized entries to a file, enabled via --debug or the
// log.path config setting.
//
// Grounded on internal/log's category/level/field-pair logging format,
// stripped of its bubbletea file-handle helper and pubsub event broker
// (vicut has no live UI subscriber to publish log events to).
package vlog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level represents log severity.
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
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string to a Level, defaulting to LevelWarn.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "error":
		return LevelError
	default:
		return LevelWarn
	}
}

// Category groups related log messages.
type Category string

const (
	CatExec   Category = "exec"   // Executor key dispatch and mode transitions
	CatScript Category = "script" // .vicut script parsing and execution
	CatFanout Category = "fanout" // per-file/per-line worker pool
	CatConfig Category = "config" // configuration loading
	CatWatch  Category = "watch"  // file watcher events
	CatOutput Category = "output" // result formatting
	CatCache  Category = "cache"  // compiled-pattern cache hits/misses
)

// Logger writes structured entries to a single destination.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	writer   io.Writer
	enabled  bool
	minLevel Level
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init opens path for append and installs it as the global logger. Returns
// a cleanup function to close the file. A zero value for path disables
// logging entirely (Init is a no-op and every log call is dropped).
func Init(path string, minLevel Level) (func(), error) {
	if path == "" {
		return func() {}, nil
	}
	var initErr error
	once.Do(func() {
		defaultLogger, initErr = newLogger(path, minLevel)
	})
	if initErr != nil {
		return nil, initErr
	}
	return func() {
		if defaultLogger != nil && defaultLogger.file != nil {
			_ = defaultLogger.file.Close()
		}
	}, nil
}

func newLogger(path string, minLevel Level) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: path is user-controlled debug log path
	if err != nil {
		return nil, err
	}
	return &Logger{file: f, writer: f, enabled: true, minLevel: minLevel}, nil
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if defaultLogger != nil {
		defaultLogger.mu.Lock()
		defaultLogger.enabled = enabled
		defaultLogger.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) { logEntry(LevelDebug, cat, msg, fields...) }

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) { logEntry(LevelInfo, cat, msg, fields...) }

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) { logEntry(LevelWarn, cat, msg, fields...) }

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) { logEntry(LevelError, cat, msg, fields...) }

// ErrorErr logs an error with the error value appended as a field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	logEntry(LevelError, cat, msg, fields...)
}

func logEntry(level Level, cat Category, msg string, fields ...any) {
	if defaultLogger == nil || !defaultLogger.enabled || level < defaultLogger.minLevel {
		return
	}

	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02T15:04:05")
	entry := fmt.Sprintf("%s [%s] [%s] %s", timestamp, level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		entry += fmt.Sprintf(" %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		entry += fmt.Sprintf(" %v=<missing>", fields[len(fields)-1])
	}
	entry += "\n"

	if defaultLogger.writer != nil {
		_, _ = defaultLogger.writer.Write([]byte(entry))
	}
}
