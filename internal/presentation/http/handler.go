package httppresentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Zhima-Mochi/acuotaz-checkout/internal/application"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/application/checkout"
	apppay "github.com/Zhima-Mochi/acuotaz-checkout/internal/application/payment"
	dompay "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/observability"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/observability/logctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type (
	RegisterOrder = application.UseCase[checkout.RegisterOrderInput, *checkout.RegisterOrderResult]
	SubmitPayment = application.UseCase[checkout.SubmitPaymentInput, *checkout.SubmitPaymentResult]
)

type Handler struct {
	registerOrder RegisterOrder
	submitPayment SubmitPayment
	log           observability.Logger
	tel           observability.Observability

	registerContract *contract
	submitContract   *contract
}

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
	headerTenantID       = "X-Tenant-ID"
	maxBodyBytes         = 1 << 20
)

func NewHandler(register RegisterOrder, submit SubmitPayment, tel observability.Observability) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Handler{
		registerOrder:    register,
		submitPayment:    submit,
		log:              tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tel:              tel,
		registerContract: mustContract("register order", registerOrderSchema),
		submitContract:   mustContract("submit payment", submitPaymentSchema),
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// Trace → ObservabilityMiddleware (request logger, metrics) → Access log → Handler
	h.muxHandle(mux, http.MethodPost, "/checkout/orders", h.handleRegisterOrder)
	h.muxHandle(mux, http.MethodPost, "/checkout/submit-payment", h.withSubmittedPayload(h.handleSubmitPayment))
	h.muxHandle(mux, http.MethodGet, "/logger-test", h.handleLoggerTest)
	h.muxHandle(mux, http.MethodGet, "/health", h.handleHealth)

	return mux
}

func (h *Handler) muxHandle(mux *http.ServeMux, method, route string, handler http.HandlerFunc) {
	mux.HandleFunc(route, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		ctx := contextWithRoute(r.Context(), route)
		r = r.WithContext(ctx)

		wrapped := h.withTrace(
			ObservabilityMiddleware(
				h.log,
				func(r *http.Request) string { return r.Header.Get(headerRequestID) },
				func(r *http.Request) string { return r.Header.Get(headerTenantID) },
				h.tel,
			)(
				h.withAccessLog(handler),
			),
		)
		wrapped.ServeHTTP(w, r)
	})
}

type registerOrderRequest struct {
	OrderNo      string      `json:"order_no"`
	CurrencyCode string      `json:"currency_code"`
	Amount       json.Number `json:"amount"`
}

type registerOrderResponse struct {
	OrderNo      string `json:"order_no"`
	InstrumentID string `json:"instrument_id"`
}

func (h *Handler) handleRegisterOrder(w http.ResponseWriter, r *http.Request) {
	var req registerOrderRequest
	if !h.decodeValid(w, r, h.registerContract, &req) {
		return
	}
	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("amount: %w", err))
		return
	}

	result, err := h.registerOrder.Execute(r.Context(), checkout.RegisterOrderInput{
		OrderNo:      req.OrderNo,
		CurrencyCode: req.CurrencyCode,
		Amount:       amount,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerOrderResponse{
		OrderNo:      result.OrderNo,
		InstrumentID: result.InstrumentID,
	})
}

type submitPaymentRequest struct {
	OrderNo      string `json:"order_no"`
	InstrumentID string `json:"instrument_id"`
}

type submitPaymentResponse struct {
	OrderNo       string `json:"order_no"`
	TransactionID string `json:"transaction_id"`
	RedirectURL   string `json:"redirect_url"`
}

func (h *Handler) handleSubmitPayment(w http.ResponseWriter, r *http.Request) {
	var req submitPaymentRequest
	if !h.decodeValid(w, r, h.submitContract, &req) {
		return
	}

	result, err := h.submitPayment.Execute(r.Context(), checkout.SubmitPaymentInput{
		OrderNo:      req.OrderNo,
		InstrumentID: req.InstrumentID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, submitPaymentResponse{
		OrderNo:       result.OrderNo,
		TransactionID: result.TransactionID,
		RedirectURL:   result.RedirectURL,
	})
}

// handleLoggerTest writes one line per severity on the payment logger.
func (h *Handler) handleLoggerTest(w http.ResponseWriter, r *http.Request) {
	logger := h.paymentLogger(r.Context())
	logger.Info("logger_test_info")
	logger.Error("logger_test_error")
	logger.Debug("logger_test_debug")
	logger.Warn("logger_test_warn")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// withSubmittedPayload logs the raw submitted payload before the submit
// handler runs, then restores the body.
func (h *Handler) withSubmittedPayload(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		_ = r.Body.Close()

		h.paymentLogger(r.Context()).Info("submit_payment_payload_received", observability.F("payload", compactJSON(body)))

		r.Body = io.NopCloser(bytes.NewReader(body))
		next(w, r)
	}
}

// paymentLogger is the request logger bound to the int_acuotaz/acuotaz category.
func (h *Handler) paymentLogger(ctx context.Context) observability.Logger {
	return observability.Category(logctx.FromOr(ctx, h.log), apppay.LoggerName, apppay.LoggerCategory)
}

// withAccessLog writes a single access log after the handler completes.
func (h *Handler) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		logctx.FromOr(r.Context(), h.log).Info("http_access",
			observability.F("method", r.Method),
			observability.F("route", routeFromContext(r.Context())),
			observability.F("path", r.URL.Path),
			observability.F("status", lrw.status),
			observability.F("latency_ms", time.Since(start).Milliseconds()),
		)
	})
}

// withTrace creates a server span for the request using OTel and W3C propagation.
func (h *Handler) withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tracer := otel.Tracer("acuotaz.http")
		parentCtx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		route := routeFromContext(parentCtx)
		spanName := r.Method + " " + route
		if route == "unknown" {
			spanName = r.Method + " " + r.URL.Path
		}

		ctxWithSpan, span := tracer.Start(parentCtx,
			spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
			),
		)
		defer span.End()

		next.ServeHTTP(w, r.WithContext(ctxWithSpan))
	})
}

// decodeValid checks body against c and decodes it into dst, writing a 400 on failure.
func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, c *contract, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return false
	}

	violations, err := c.Validate(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	if len(violations) > 0 {
		logctx.FromOr(r.Context(), h.log).Warn("request_schema_violation",
			observability.F("route", routeFromContext(r.Context())),
			observability.F("violations", violations),
		)
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":      "request body does not match schema",
			"violations": violations,
		})
		return false
	}

	if err := decodeJSON(r.Context(), body, dst); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func decodeJSON(_ context.Context, body []byte, dst any) error {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	decoder.UseNumber()
	return decoder.Decode(dst)
}

func compactJSON(body []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return strings.TrimSpace(string(body))
	}
	return buf.String()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	var rejected *checkout.RejectedError
	switch {
	case errors.As(err, &rejected):
		writeJSON(w, rejectionStatus(rejected.Outcome), map[string]string{
			"error": dompay.Describe(rejected.Outcome),
			"code":  rejected.Outcome.Status(),
		})
	case errors.Is(err, checkout.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, checkout.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, checkout.ErrConflict),
		errors.Is(err, checkout.ErrInstrumentMismatch):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func rejectionStatus(o dompay.Outcome) int {
	switch o.(type) {
	case dompay.ValidationError:
		return http.StatusUnprocessableEntity
	case dompay.ConfigurationError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type routeKey struct{}

// contextWithRoute stores the stable route template for low-cardinality labels.
func contextWithRoute(ctx context.Context, route string) context.Context {
	if route == "" {
		return ctx
	}
	return context.WithValue(ctx, routeKey{}, route)
}

func routeFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if route, ok := ctx.Value(routeKey{}).(string); ok && route != "" {
		return route
	}
	return "unknown"
}
