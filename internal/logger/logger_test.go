package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestPrettyConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	log, err := newWithConsole(&Config{Pretty: true}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	log.Named("source").With(zap.String("source", "cmc")).Info("Source list fetched",
		zap.Int("raw", 10),
		zap.Int("excluded", 1),
		zap.Int("wrong_chain", 2),
		zap.Int("candidates", 7))
	log.Debug("hidden at info level")
	log.Warn("Something odd", zap.Error(errors.New("boom")))

	out := buf.String()
	assert.Contains(t, out, "cmc: 7 candidates (10 raw, 1 excluded, 2 wrong chain)")
	assert.Contains(t, out, "Something odd: boom")
	assert.NotContains(t, out, "hidden")
	// поля не печатаются отдельно
	assert.NotContains(t, out, `"raw"`)
}

func TestStructuredConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	log, err := newWithConsole(&Config{Development: true}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	log.Debug("Token contract read failed", zap.String("address", "0xabc"))
	assert.Contains(t, buf.String(), "Token contract read failed")
	assert.Contains(t, buf.String(), `"address": "0xabc"`)
}

func TestFileOutputWithOperation(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "tokenlists.log")
	var console bytes.Buffer
	log, err := newWithConsole(&Config{LogFile: logFile, MaxSize: 1, Pretty: true}, zapcore.AddSync(&console))
	require.NoError(t, err)

	opLogger := log.WithOperation("fetch")
	opLogger.Debug("Starting fetch")
	opLogger.Info("Token list saved", zap.String("file", "src/tokens/cmc.json"), zap.Int("count", 3))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2, "debug goes to the file even at info console level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "fetch", entry["operation"])
	assert.NotEmpty(t, entry["correlation_id"])
	assert.Equal(t, float64(3), entry["count"])

	assert.Contains(t, console.String(), "Saved 3 tokens to src/tokens/cmc.json")
	assert.NotContains(t, console.String(), "Starting fetch")
}

func TestFormatMessage(t *testing.T) {
	msg := FormatMessage("RPC request failed, trying next node",
		zap.String("method", "eth_call"),
		zap.String("url", "https://bsc-dataseed.binance.org/path"))
	assert.Contains(t, msg, "eth_call on bsc-dataseed.binance.org failed")

	assert.Equal(t, "plain", FormatMessage("plain", zap.Int("n", 1)))
}

func TestTrackPerformance(t *testing.T) {
	var buf bytes.Buffer
	log, err := newWithConsole(&Config{Development: true}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	end := TrackPerformance(log.Logger, "generate")
	end()

	assert.Contains(t, buf.String(), "Starting operation")
	assert.Contains(t, buf.String(), "Operation completed")
	assert.Contains(t, buf.String(), "duration_ms")
}
