package utils

import (
	"log/slog"
	"os"
	"sync"
)

var (
	loggerOnce sync.Once
	logger     *slog.Logger
)

// GetLogger returns the process-wide structured logger. The handler emits
// JSON to stderr so log lines stay machine-parseable alongside the plain
// log.Printf traces used in the serve loop.
func GetLogger() *slog.Logger {
	loggerOnce.Do(func() {
		level := slog.LevelInfo
		if GetEnv("LOG_LEVEL", "info") == "debug" {
			level = slog.LevelDebug
		}
		handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		logger = slog.New(handler)
	})
	return logger
}
