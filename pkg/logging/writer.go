package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Format represents the log output format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// WriterConfig holds configuration for a writer-backed logger
type WriterConfig struct {
	// Format is the output format (json or text)
	Format Format
	// Level is the minimum log level
	Level Level
}

// WriterLogger implements Logger on top of an io.Writer.
// One line per entry; safe for concurrent use.
type WriterLogger struct {
	config WriterConfig
	writer io.Writer
	closer io.Closer
	fields Fields
	mu     *sync.Mutex
}

// NewWriterLogger creates a logger writing to w
func NewWriterLogger(w io.Writer, config WriterConfig) *WriterLogger {
	return &WriterLogger{
		config: config,
		writer: w,
		mu:     &sync.Mutex{},
	}
}

// NewFileLogger creates a logger writing to a date-stamped file inside
// dir (migration_YYYYMMDD.log), creating dir if needed
func NewFileLogger(dir string, config WriterConfig) (*WriterLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	name := fmt.Sprintf("migration_%s.log", time.Now().Format("20060102"))
	path := filepath.Join(dir, name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := NewWriterLogger(file, config)
	l.closer = file
	return l, nil
}

// Debug logs a debug message
func (l *WriterLogger) Debug(ctx context.Context, msg string, fields Fields) {
	if l.config.Level <= DebugLevel {
		l.log(DebugLevel, msg, nil, fields)
	}
}

// Info logs an info message
func (l *WriterLogger) Info(ctx context.Context, msg string, fields Fields) {
	if l.config.Level <= InfoLevel {
		l.log(InfoLevel, msg, nil, fields)
	}
}

// Warn logs a warning message
func (l *WriterLogger) Warn(ctx context.Context, msg string, fields Fields) {
	if l.config.Level <= WarnLevel {
		l.log(WarnLevel, msg, nil, fields)
	}
}

// Error logs an error message
func (l *WriterLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	if l.config.Level <= ErrorLevel {
		l.log(ErrorLevel, msg, err, fields)
	}
}

// WithFields returns a logger that adds fields to every entry.
// The returned logger shares the underlying writer and mutex.
func (l *WriterLogger) WithFields(fields Fields) Logger {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	clone := *l
	clone.fields = merged
	return &clone
}

// Close closes the underlying file, if any
func (l *WriterLogger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func (l *WriterLogger) log(level Level, msg string, err error, fields Fields) {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.config.Format {
	case FormatJSON:
		entry := map[string]interface{}{
			"time":    time.Now().Format(time.RFC3339),
			"level":   level.String(),
			"message": msg,
		}
		if err != nil {
			entry["error"] = err.Error()
		}
		for k, v := range merged {
			entry[k] = v
		}
		data, jerr := json.Marshal(entry)
		if jerr != nil {
			return
		}
		fmt.Fprintln(l.writer, string(data))
	default:
		line := fmt.Sprintf("%s [%s] %s",
			time.Now().Format("2006-01-02 15:04:05"), level.String(), msg)
		if err != nil {
			line += fmt.Sprintf(" | error=%v", err)
		}
		// Sorted for stable output
		keys := make([]string, 0, len(merged))
		for k := range merged {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			line += fmt.Sprintf(" | %s=%v", k, merged[k])
		}
		fmt.Fprintln(l.writer, line)
	}
}
