// Package logging builds the slog.Logger used by the regapply CLI.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Options selects the handler and level.
type Options struct {
	Level   string // debug, info, warn, error
	Format  string // text or json
	Verbose bool   // forces debug
	Quiet   bool   // forces error
}

// New returns a logger writing to w and the run id attached to every record.
func New(w io.Writer, opts Options) (*slog.Logger, string, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, "", err
	}
	switch {
	case opts.Verbose:
		level = slog.LevelDebug
	case opts.Quiet:
		level = slog.LevelError
	}

	var h slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", "text":
		h = charmlog.NewWithOptions(w, charmlog.Options{
			Prefix:          "regapply",
			ReportTimestamp: true,
			Level:           charmlog.Level(level),
		})
	case "json":
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	default:
		return nil, "", fmt.Errorf("unknown log format %q (want text or json)", opts.Format)
	}

	runID := uuid.NewString()
	return slog.New(h).With("run_id", runID), runID, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
