package logctx

import (
	"context"
	"testing"

	"github.com/Zhima-Mochi/acuotaz-checkout/internal/observability"
	"github.com/stretchr/testify/assert"
)

type recLogger struct {
	observability.Logger
	fields []observability.Field
}

func (l *recLogger) With(fields ...observability.Field) observability.Logger {
	return &recLogger{Logger: l.Logger, fields: append(append([]observability.Field(nil), l.fields...), fields...)}
}

func TestFromOr(t *testing.T) {
	fallback := observability.NopLogger()
	assert.Equal(t, fallback, FromOr(context.Background(), fallback))

	l := &recLogger{Logger: fallback}
	ctx := With(context.Background(), l)
	assert.Same(t, l, From(ctx))
	assert.Equal(t, context.Background(), With(context.Background(), nil))
}

func TestEnrich(t *testing.T) {
	base := &recLogger{Logger: observability.NopLogger()}
	ctx := Enrich(context.Background(), base, observability.F("order_no", "A1"))

	got, ok := From(ctx).(*recLogger)
	if assert.True(t, ok) {
		assert.Equal(t, []observability.Field{observability.F("order_no", "A1")}, got.fields)
	}

	plain := context.Background()
	assert.Equal(t, plain, Enrich(plain, base))
}
