package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"chatty":  zapcore.InfoLevel,
	}
	for name, want := range tests {
		assert.Equal(t, want, ParseLevel(name), name)
	}
}

func TestNewJSONLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	log, err := New(Config{Level: "warn", EnableJSON: true, OutputPaths: []string{path}})
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("kept", zap.String("address", "0xabc"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "relay-wallets", entry["service"])
	assert.Equal(t, "0xabc", entry["address"])
}

func TestNewConsoleLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	log, err := New(Config{Level: "debug", OutputPaths: []string{path}})
	require.NoError(t, err)

	log.Debug("hello")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DEBUG")
	assert.Contains(t, string(data), "hello")
}
