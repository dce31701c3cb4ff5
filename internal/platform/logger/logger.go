package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. Handlers and services log
// through slog so request IDs can be attached as attributes.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
