package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/infrastructure/logging"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, logging.ParseLevel(tt.in))
		})
	}
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, "warning", "text")

	logger.Debug("debug %d", 1)
	logger.Info("info %d", 2)
	logger.Warning("warning %d", 3)
	logger.Error("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "warning 3")
	assert.Contains(t, out, "error 4")
}

func TestLogger_JSONSuccessAndAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, "info", "json").With("run_id", "abc")

	logger.Success("готово %s", "file.pdf")

	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record))
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "готово file.pdf", record["msg"])
	assert.Equal(t, "success", record["status"])
	assert.Equal(t, "abc", record["run_id"])
}

func TestNewFileLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mailbridge.log")

	logger, err := logging.NewFileLogger(entities.OutputConfig{
		LogLevel:    "debug",
		LogToFile:   true,
		LogFileName: path,
	})
	require.NoError(t, err)

	logger.Debug("scratch dir %s", "/tmp")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "scratch dir /tmp"))
}

func TestNewFileLogger_BadPath(t *testing.T) {
	_, err := logging.NewFileLogger(entities.OutputConfig{
		LogToFile:   true,
		LogFileName: filepath.Join(t.TempDir(), "missing", "dir", "x.log"),
	})
	assert.Error(t, err)
}
