package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/gridstonehq/gridstone-api/internal/config"
)

// Setup initializes and configures the host's logging system based on the
// provided configuration. It creates a structured JSON logger wrapped in a
// ServiceHandler carrying the host identity, applies the configured log
// level, and installs the result as the process-wide default logger.
//
// The service name identifies the binary (for example "projects-api") and
// ends up on every record. An unknown log level falls back to info with a
// warning rather than failing startup.
func Setup(cfg config.ServerConfig, service string) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo

		// The real logger does not exist yet, so report the bad setting
		// through a throwaway text logger on stderr.
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Warn(
			"unknown log level, falling back to info",
			"configured_level", cfg.LogLevel)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := NewServiceHandler(os.Stdout, service, opts)
	logger := slog.New(handler)

	// Set this logger as the default for the process so package-level slog
	// calls (slog.Info, slog.Error, ...) carry the same configuration.
	slog.SetDefault(logger)

	return logger, nil
}
