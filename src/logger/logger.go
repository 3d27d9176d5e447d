package logger

import (
	"log/slog"
	"os"
	"strings"
)

// L is the global logger instance. It defaults to an info-level text handler
// on stderr so packages can log before InitLogger runs (CLI output owns
// stdout).
var L = slog.New(slog.NewTextHandler(os.Stderr, nil))

// InitLogger initializes the global logger. Call this once at application
// startup, after loading config.
func InitLogger(logLevelStr string) {
	var level slog.Level
	switch strings.ToLower(logLevelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
		slog.Warn("Invalid log level specified, defaulting to INFO", "configuredLevel", logLevelStr)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	L = slog.New(handler)
	slog.SetDefault(L)
}
