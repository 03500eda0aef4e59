// Package obs provides docforge's ambient observability: zerolog-based
// structured logging and an OpenTelemetry metrics adapter, grounded on
// intelligencedev-manifold's internal/observability and internal/rag/obs
// packages.
package obs

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger wires the global zerolog logger to stdout and, optionally, an
// append-mode log file, and redirects the standard library logger so every
// dependency's stray log.Printf still lands in the structured stream.
func InitLogger(logPath string, level string) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	var w io.Writer = os.Stdout
	if logPath != "" {
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			w = io.MultiWriter(os.Stdout, f)
		} else {
			_, _ = fmt.Fprintf(os.Stderr, "failed to open log file %q: %v\n", logPath, err)
		}
	}
	log.Logger = log.Output(w).With().Timestamp().Logger()

	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	lvl := zerolog.InfoLevel
	if level != "" {
		if l, err := zerolog.ParseLevel(level); err == nil {
			lvl = l
		}
	}
	zerolog.SetGlobalLevel(lvl)

	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)
}

// ForDocument returns a logger scoped to one document's processing, carrying
// a stable document name and run id so a single ADD run's lines can be
// grepped together (grounded on original_source's logging_utils.py
// correlation pattern).
func ForDocument(runID, document string) zerolog.Logger {
	return log.With().Str("run_id", runID).Str("document", document).Logger()
}
