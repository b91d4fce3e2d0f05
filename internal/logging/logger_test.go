package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/vidmeta/internal/config"
)

func newTestLogger(t *testing.T, cfg config.Config) (*Logger, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cfg.ColorMode = config.ColorNever
	l, err := NewLogger(&cfg)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	var stdout, stderr bytes.Buffer
	l.SetOutput(&stdout, &stderr)
	return l, &stdout, &stderr
}

func TestNewLogger_NoFile(t *testing.T) {
	l, stdout, stderr := newTestLogger(t, config.DefaultConfig())
	l.Info("test message")

	assert.Contains(t, stdout.String(), "[INFO] test message")
	assert.Empty(t, stderr.String())
}

func TestNewLogger_WithFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "nested", "vidmeta.log")
	l, _, _ := newTestLogger(t, cfg)

	l.Info("to file")
	l.Warn("careful %d", 2)
	require.NoError(t, l.Close())

	b, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[INFO] to file")
	assert.Contains(t, string(b), "[WARN] careful 2")
}

func TestError_GoesToStderr(t *testing.T) {
	l, stdout, stderr := newTestLogger(t, config.DefaultConfig())
	l.Error("boom: %v", "ffprobe")

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "[ERROR] boom: ffprobe")
}

func TestDebug_OnlyWhenVerbose(t *testing.T) {
	l, stdout, _ := newTestLogger(t, config.DefaultConfig())

	l.Debug(false, "hidden")
	assert.Empty(t, stdout.String())

	l.Debug(true, "shown")
	assert.Contains(t, stdout.String(), "[DEBUG] shown")
}

func TestClose_Idempotent(t *testing.T) {
	l, _, _ := newTestLogger(t, config.DefaultConfig())
	assert.NoError(t, l.Close())
	assert.NoError(t, l.Close())
}
