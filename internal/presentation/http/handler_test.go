package httppresentation_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Zhima-Mochi/acuotaz-checkout/internal/application/checkout"
	apppay "github.com/Zhima-Mochi/acuotaz-checkout/internal/application/payment"
	dompay "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/infrastructure/id"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/infrastructure/memory"
	infraobs "github.com/Zhima-Mochi/acuotaz-checkout/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/infrastructure/observability/zaplogger"
	httppresentation "github.com/Zhima-Mochi/acuotaz-checkout/internal/presentation/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newServer(t *testing.T, catalog dompay.Catalog) (http.Handler, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	tel := infraobs.New(infraobs.Options{Logger: zaplogger.New(zap.New(core))})

	orders := memory.NewOrderRepository()
	store := memory.NewInstrumentStore()
	proc := apppay.NewProcessor(catalog, store, nil, nil, tel)
	proc.SetClock(func() time.Time { return time.UnixMilli(1700000000000) })

	h := httppresentation.NewHandler(
		checkout.NewRegisterOrderUseCase(orders, store, id.NewUUIDGenerator(), tel),
		checkout.NewSubmitPaymentUseCase(orders, store, proc, tel),
		tel,
	)
	return h.Router(), logs
}

func acuotazCatalog() *memory.Catalog {
	return memory.NewCatalog(dompay.NewMethod(dompay.MethodID, &dompay.Processor{ID: "ACUOTAZ"}))
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, h http.Handler, body string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/checkout/orders", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		InstrumentID string `json:"instrument_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.InstrumentID)
	return resp.InstrumentID
}

func TestSubmitPaymentFlow(t *testing.T) {
	h, logs := newServer(t, acuotazCatalog())
	instID := register(t, h, `{"order_no":"00001234","currency_code":"PEN","amount":"19.5"}`)

	rec := do(t, h, http.MethodPost, "/checkout/submit-payment",
		`{"order_no":"00001234","instrument_id":"`+instID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "00001234_1700000000000", resp["transaction_id"])
	assert.Equal(t,
		"https://apurata.com/pos/crear-orden-y-continuar?order_id=00001234&amount=19.50",
		resp["redirect_url"])

	payload := logs.FilterMessage("submit_payment_payload_received").All()
	require.Len(t, payload, 1)
	fields := payload[0].ContextMap()
	assert.Equal(t, apppay.LoggerName, fields["logger"])
	assert.Equal(t, apppay.LoggerCategory, fields["category"])
	assert.Contains(t, fields["payload"], `"order_no":"00001234"`)

	for _, msg := range []string{"acuotaz_handle_completed", "payment_verification_succeeded", "acuotaz_authorize_completed"} {
		entries := logs.FilterMessage(msg).All()
		require.Len(t, entries, 1, msg)
		fields := entries[0].ContextMap()
		assert.Equal(t, apppay.LoggerName, fields["logger"], msg)
		assert.Equal(t, apppay.LoggerCategory, fields["category"], msg)
		assert.Equal(t, resp["order_no"], fields["order_no"], msg)
		assert.NotEmpty(t, fields["request_id"], msg)
	}
}

func TestRegisterOrderNumericAmount(t *testing.T) {
	h, _ := newServer(t, acuotazCatalog())
	register(t, h, `{"order_no":"A1","currency_code":"pen","amount":50}`)

	rec := do(t, h, http.MethodPost, "/checkout/orders", `{"order_no":"A1","currency_code":"PEN","amount":50}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSchemaViolations(t *testing.T) {
	h, _ := newServer(t, acuotazCatalog())

	tests := []struct {
		name, path, body string
	}{
		{"missing instrument", "/checkout/submit-payment", `{"order_no":"A1"}`},
		{"unknown field", "/checkout/submit-payment", `{"order_no":"A1","instrument_id":"x","extra":1}`},
		{"not json", "/checkout/submit-payment", `order_no=A1`},
		{"bad currency", "/checkout/orders", `{"order_no":"A1","currency_code":"SOLES","amount":1}`},
		{"bad amount", "/checkout/orders", `{"order_no":"A1","currency_code":"PEN","amount":"1,5"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestSubmitPaymentErrors(t *testing.T) {
	t.Run("unknown order", func(t *testing.T) {
		h, _ := newServer(t, acuotazCatalog())
		rec := do(t, h, http.MethodPost, "/checkout/submit-payment", `{"order_no":"nope","instrument_id":"x"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid amount", func(t *testing.T) {
		h, _ := newServer(t, acuotazCatalog())
		instID := register(t, h, `{"order_no":"A0","currency_code":"PEN","amount":0}`)
		rec := do(t, h, http.MethodPost, "/checkout/submit-payment", `{"order_no":"A0","instrument_id":"`+instID+`"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, string(dompay.CodeInvalidAmount), resp["code"])
	})

	t.Run("method not configured", func(t *testing.T) {
		h, _ := newServer(t, memory.NewCatalog())
		instID := register(t, h, `{"order_no":"A9","currency_code":"PEN","amount":10}`)
		rec := do(t, h, http.MethodPost, "/checkout/submit-payment", `{"order_no":"A9","instrument_id":"`+instID+`"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "payment method ACUOTAZ_PM not configured")
	})
}

func TestLoggerTest(t *testing.T) {
	h, logs := newServer(t, acuotazCatalog())

	rec := do(t, h, http.MethodGet, "/logger-test", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	want := map[string]zapcore.Level{
		"logger_test_info":  zapcore.InfoLevel,
		"logger_test_error": zapcore.ErrorLevel,
		"logger_test_debug": zapcore.DebugLevel,
		"logger_test_warn":  zapcore.WarnLevel,
	}
	for msg, lvl := range want {
		entries := logs.FilterMessage(msg).All()
		require.Len(t, entries, 1, msg)
		assert.Equal(t, lvl, entries[0].Level)
		assert.Equal(t, apppay.LoggerName, entries[0].ContextMap()["logger"])
	}
}

func TestMethodNotAllowedAndHealth(t *testing.T) {
	h, _ := newServer(t, acuotazCatalog())

	rec := do(t, h, http.MethodGet, "/checkout/submit-payment", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRequestIDEchoed(t *testing.T) {
	h, logs := newServer(t, acuotazCatalog())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
	access := logs.FilterMessage("http_access").All()
	require.Len(t, access, 1)
	assert.Equal(t, "req-42", access[0].ContextMap()["request_id"])
}
