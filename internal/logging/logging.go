// Package logging builds the process slog.Logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Options configures New.
type Options struct {
	Level  string    // debug, info, warn, error
	Format string    // text or json
	Output io.Writer // defaults to stderr
	RunID  string    // a fresh id when empty
}

// New creates a slog.Logger tagged with the service name and the run id.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	ho := &slog.HandlerOptions{Level: LevelFromString(opts.Level)}

	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		h = slog.NewJSONHandler(out, ho)
	default:
		h = slog.NewTextHandler(out, ho)
	}
	runID := opts.RunID
	if runID == "" {
		runID = NewRunID()
	}
	return slog.New(h).With("service", "narrative", "run_id", runID)
}

// NewRunID returns a random identifier for one pipeline run.
func NewRunID() string {
	return uuid.NewString()
}

// LevelFromString parses a level name. Unknown names mean info.
func LevelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
