package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vincentbai/browsetrace-recorder/internal/config"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "recorder"}, zapcore.AddSync(&buf))

	logger.Debug("hidden")
	logger.Info("script generated", zap.String("format", "pw-js"))
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "debug entry must be filtered at info level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "recorder", entry["logger"])
	assert.Equal(t, "script generated", entry["msg"])
	assert.Equal(t, "pw-js", entry["format"])
}

func TestNewLoggerInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggerConfig{Level: "loud", Format: "console"}, zapcore.AddSync(&buf))

	logger.Debug("hidden")
	logger.Info("visible")
	require.NoError(t, logger.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestNewLoggerWritesFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "recorder.log")
	var console bytes.Buffer
	logger := NewLogger(config.LoggerConfig{Level: "debug", Format: "console", LogFile: logFile, MaxSize: 1}, zapcore.AddSync(&console))

	logger.Warn("to both sinks")
	require.NoError(t, logger.Sync())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"to both sinks"`)
	assert.Contains(t, console.String(), "to both sinks")
}

func TestGlobalLogger(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	assert.NotNil(t, GetLogger(), "a no-op logger is returned before initialization")

	var first, second bytes.Buffer
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&first))
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&second))

	GetLogger().Info("hello")
	Sync()

	assert.Contains(t, first.String(), "hello")
	assert.Empty(t, second.String(), "only the first initialization takes effect")
}
