package zaplogger

import (
	"errors"
	"testing"

	"github.com/Zhima-Mochi/acuotaz-checkout/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core), observability.F("service", "acuotaz-checkout"))

	child := observability.Category(l, "int_acuotaz", "acuotaz")
	child.Warn("acuotaz_event_publish_failed",
		observability.F("event", "payment.pending"),
		observability.F("attempt", 2),
		observability.F("cause", errors.New("queue full")),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "acuotaz-checkout", fields["service"])
	assert.Equal(t, "int_acuotaz", fields["logger"])
	assert.Equal(t, "acuotaz", fields["category"])
	assert.Equal(t, "payment.pending", fields["event"])
	assert.EqualValues(t, 2, fields["attempt"])
	assert.Equal(t, "queue full", fields["cause"])
}

func TestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := New(zap.New(core))

	l.Debug("hidden")
	l.Info("info")
	l.Error("error")

	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, 0, logs.FilterMessage("hidden").Len())
	assert.NoError(t, New(nil).Sync())
}
