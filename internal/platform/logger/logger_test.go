package logger

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridstonehq/gridstone-api/internal/config"
)

func TestSetupLevelParsing(t *testing.T) {
	// Setup replaces the process default logger; restore it afterwards.
	originalLogger := slog.Default()
	defer slog.SetDefault(originalLogger)

	tests := []struct {
		name          string
		configured    string
		enabledLevel  slog.Level
		disabledLevel slog.Level
	}{
		{"debug", "debug", slog.LevelDebug, slog.LevelDebug - 4},
		{"info", "info", slog.LevelInfo, slog.LevelDebug},
		{"warn", "WARN", slog.LevelWarn, slog.LevelInfo},
		{"error", "Error", slog.LevelError, slog.LevelWarn},
		{"empty defaults to info", "", slog.LevelInfo, slog.LevelDebug},
		{"unknown defaults to info", "loud", slog.LevelInfo, slog.LevelDebug},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := Setup(config.ServerConfig{LogLevel: tc.configured}, "projects-api")
			require.NoError(t, err)
			require.NotNil(t, logger)

			ctx := context.Background()
			assert.True(t, logger.Enabled(ctx, tc.enabledLevel))
			assert.False(t, logger.Enabled(ctx, tc.disabledLevel))
		})
	}
}

func TestSetupInstallsDefault(t *testing.T) {
	originalLogger := slog.Default()
	defer slog.SetDefault(originalLogger)

	logger, err := Setup(config.ServerConfig{LogLevel: "info"}, "materials-api")
	require.NoError(t, err)
	assert.Same(t, logger, slog.Default())
}

func TestServiceHandlerStampsIdentity(t *testing.T) {
	buf := &Capture{}
	logger := slog.New(NewServiceHandler(buf, "logistics-api", nil))

	logger.Info("order created", "reference", "ORD-2025-0001")

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "order created", entry["msg"])
	assert.Equal(t, "ORD-2025-0001", entry["reference"])
	assert.Equal(t, "logistics-api", entry["service"])
	assert.Equal(t, strconv.Itoa(os.Getpid()), entry["pid"])
}

func TestServiceHandlerKeepsIdentityThroughWith(t *testing.T) {
	buf := &Capture{}
	logger := slog.New(NewServiceHandler(buf, "projects-api", nil))

	logger.With("component", "project_service").WithGroup("db").Info("query", "rows", 3)

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "projects-api", entry["service"])
	assert.Equal(t, "project_service", entry["component"])
}

func TestServiceHandlerHonorsLevel(t *testing.T) {
	buf := &Capture{}
	handler := NewServiceHandler(buf, "projects-api", &slog.HandlerOptions{Level: slog.LevelWarn})
	logger := slog.New(handler)

	logger.Info("suppressed")
	logger.Warn("kept")

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0]["msg"])
}
