package logger

import (
	"log/slog"
	"os"
)

// New returns a structured stdout logger. Format is "json" for aggregated
// environments, anything else falls back to text.
func New(format string) *slog.Logger {
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	return slog.New(handler)
}
