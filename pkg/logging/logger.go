// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides structured logging for langflow components.
//
// The server logs JSON to stdout through plain slog; this package serves
// the CLI and anything else that wants stderr output by default, optional
// file logging, and an exporter hook for shipping entries elsewhere.
//
// # Basic Usage
//
//	logger := logging.Default()
//	logger.Info("running flow", "flow_id", flowID)
//
// # File Logging
//
//	logger := logging.New(logging.Config{
//	    Level:   logging.LevelInfo,
//	    LogDir:  "~/.langflow/logs", // ~ expands to the home directory
//	    Service: "langflow",
//	})
//	defer logger.Close()
//
// Log files are named {service}_{date}.log and written as JSON lines.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level is the minimum severity a logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the lowercase level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config configures a Logger.
type Config struct {
	// Level is the minimum severity to emit. Defaults to LevelInfo.
	Level Level

	// LogDir enables file logging when non-empty. The directory is
	// created if needed; "~" expands to the home directory.
	LogDir string

	// Service names the log file: {service}_{date}.log. Defaults to
	// "langflow".
	Service string

	// Exporter receives every emitted entry when non-nil.
	Exporter LogExporter

	// Stderr overrides the default stderr destination, mainly for tests.
	Stderr io.Writer
}

// LogExporter ships log entries to an external destination.
type LogExporter interface {
	Export(ctx context.Context, entry LogEntry) error
	Flush(ctx context.Context) error
	Close() error
}

// LogEntry is the exporter-facing shape of one log record.
type LogEntry struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Service string         `json:"service"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// Logger is a leveled structured logger with optional file and exporter
// destinations. Safe for concurrent use.
type Logger struct {
	slogger  *slog.Logger
	level    Level
	service  string
	exporter LogExporter

	mu   sync.Mutex
	file *os.File
}

// New creates a Logger from config. Errors opening the log file degrade to
// stderr-only logging; the CLI must keep working without a writable disk.
func New(config Config) *Logger {
	if config.Service == "" {
		config.Service = "langflow"
	}
	stderr := config.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: config.Level.toSlogLevel()}
	handlers := []slog.Handler{slog.NewTextHandler(stderr, opts)}

	logger := &Logger{
		level:    config.Level,
		service:  config.Service,
		exporter: config.Exporter,
	}

	if config.LogDir != "" {
		dir := expandPath(config.LogDir)
		if err := os.MkdirAll(dir, 0o755); err == nil {
			name := fmt.Sprintf("%s_%s.log", config.Service, time.Now().Format("2006-01-02"))
			file, err := os.OpenFile(filepath.Join(dir, name),
				os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err == nil {
				logger.file = file
				handlers = append(handlers, slog.NewJSONHandler(file, opts))
			}
		}
	}

	logger.slogger = slog.New(&multiHandler{handlers: handlers})
	return logger
}

// Default returns a stderr-only Logger at info level.
func Default() *Logger {
	return New(Config{Level: LevelInfo})
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args...) }

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) { l.log(LevelInfo, msg, args...) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) { l.log(LevelWarn, msg, args...) }

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) { l.log(LevelError, msg, args...) }

// With returns a Logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger {
	clone := *l
	clone.slogger = l.slogger.With(args...)
	return &clone
}

// Slog exposes the underlying slog.Logger for libraries that want one.
func (l *Logger) Slog() *slog.Logger {
	return l.slogger
}

// Close flushes the exporter and closes the log file.
func (l *Logger) Close() error {
	var firstErr error
	if l.exporter != nil {
		if err := l.exporter.Flush(context.Background()); err != nil {
			firstErr = err
		}
		if err := l.exporter.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		if err := l.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		l.file = nil
	}
	return firstErr
}

func (l *Logger) log(level Level, msg string, args ...any) {
	if level < l.level {
		return
	}

	switch level {
	case LevelDebug:
		l.slogger.Debug(msg, args...)
	case LevelWarn:
		l.slogger.Warn(msg, args...)
	case LevelError:
		l.slogger.Error(msg, args...)
	default:
		l.slogger.Info(msg, args...)
	}

	if l.exporter != nil {
		entry := LogEntry{
			Time:    time.Now(),
			Level:   level.String(),
			Message: msg,
			Service: l.service,
			Attrs:   argsToMap(args),
		}
		// Export failures are dropped; logging must never take the
		// application down.
		_ = l.exporter.Export(context.Background(), entry)
	}
}

// multiHandler fans one record out to every destination.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: next}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: next}
}

// expandPath expands a leading ~ to the home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// argsToMap converts slog-style key/value args to a map for export.
func argsToMap(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	attrs := map[string]any{}
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		attrs[key] = args[i+1]
	}
	return attrs
}

// NopExporter discards every entry.
type NopExporter struct{}

func (e *NopExporter) Export(ctx context.Context, entry LogEntry) error { return nil }
func (e *NopExporter) Flush(ctx context.Context) error                  { return nil }
func (e *NopExporter) Close() error                                     { return nil }

var _ LogExporter = (*NopExporter)(nil)

// BufferedExporter collects entries in memory, mainly for tests.
type BufferedExporter struct {
	mu      sync.Mutex
	entries []LogEntry
}

func NewBufferedExporter() *BufferedExporter {
	return &BufferedExporter{}
}

func (e *BufferedExporter) Export(_ context.Context, entry LogEntry) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = append(e.entries, entry)
	return nil
}

func (e *BufferedExporter) Flush(context.Context) error { return nil }

func (e *BufferedExporter) Close() error { return nil }

// Entries returns a copy of everything exported so far.
func (e *BufferedExporter) Entries() []LogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]LogEntry, len(e.entries))
	copy(out, e.entries)
	return out
}

var _ LogExporter = (*BufferedExporter)(nil)
