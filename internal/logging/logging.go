// Package logging builds the slog handlers used across chronomap.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Options selects the handler.
type Options struct {
	// Format is "text" (default) or "json".
	Format string
	// Level is trace, debug, info, warn or error.
	Level string
	// File receives the log. Empty means stderr.
	File string
}

// TextHandler returns a charmbracelet/log handler writing to w.
func TextHandler(level string, w io.Writer) slog.Handler {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{Level: log.InfoLevel}
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		opts.ReportCaller = true
		opts.ReportTimestamp = true
		opts.Level = log.DebugLevel
	case "debug":
		opts.ReportTimestamp = true
		opts.Level = log.DebugLevel
	case "warn", "warning":
		opts.Level = log.WarnLevel
	case "error":
		opts.Level = log.ErrorLevel
	}
	return log.NewWithOptions(w, opts)
}

// JSONHandler returns a JSON handler writing to w.
func JSONHandler(level string, w io.Writer) slog.Handler {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		opts.AddSource = true
		opts.Level = slog.LevelDebug
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn", "warning":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}
	return slog.NewJSONHandler(w, opts)
}

// ValidLevel reports whether level is a recognised level name.
func ValidLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// New builds a logger. The returned closer releases the log file and is never
// nil.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}

	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "text":
		h = TextHandler(opts.Level, w)
	case "json":
		h = JSONHandler(opts.Level, w)
	default:
		closer.Close()
		return nil, nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
	return slog.New(h), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
