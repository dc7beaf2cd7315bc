package logger

import (
	"civilprep_backend/internal/config"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn", "debug"))
	assert.Equal(t, zapcore.DebugLevel, parseLevel("", "debug"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("", "release"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("loud", "release"))
}

func TestInitLoggerWritesFile(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	file := filepath.Join(t.TempDir(), "app.log")
	InitLogger(&config.Config{
		Server: config.ServerConfig{Mode: "release"},
		Log:    config.LogConfig{Level: "info", File: file, MaxSizeMB: 1},
	})

	Component("test").Info("hello")
	_ = Log.Sync() // stdout 不支持 fsync
	assert.FileExists(t, file)
}
