package logger

import (
	"log/slog"
	"os"
)

// New builds the diagnostic logger: JSON lines in prod, readable text with
// debug level in dev. The stock movement journal lives elsewhere.
func New(env string) *slog.Logger {
	if env == "dev" {
		h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
		return slog.New(h)
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(h)
}
