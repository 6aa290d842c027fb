package common

import (
	"log/slog"
	"os"
)

// SetupLogger installs the process-wide slog default with the given level and
// output format. "json" selects machine-readable output; anything else falls
// back to the console text handler.
func SetupLogger(level slog.Level, format string) error {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))

	return nil
}
