package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevel(t *testing.T) {
	l, err := NewLogger("acuotaz-checkout", "test", Options{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	_, err = NewLogger("acuotaz-checkout", "test", Options{Level: "loud"})
	assert.Error(t, err)
}

func TestNewLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "acuotaz.log")
	l, err := NewLogger("acuotaz-checkout", "test", Options{File: path})
	require.NoError(t, err)

	l.Info("payment_event_recorded")
	_ = l.Sync()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"payment_event_recorded"`)
	assert.Contains(t, string(content), `"service":"acuotaz-checkout"`)
}

func TestWithTraceDefaults(t *testing.T) {
	l := WithTrace(nil, "", "")
	assert.NotNil(t, l)
}
