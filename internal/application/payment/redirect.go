package payment

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultRedirectBaseURL is the Apurata hosted page that creates the
// financing order and continues the shopper's checkout.
const DefaultRedirectBaseURL = "https://apurata.com/pos/crear-orden-y-continuar"

// RedirectBuilder derives the gateway redirect URL for an order.
type RedirectBuilder struct {
	base string
}

// NewRedirectBuilder validates base as an absolute http(s) URL without a query.
// An empty base selects DefaultRedirectBaseURL.
func NewRedirectBuilder(base string) (*RedirectBuilder, error) {
	if base == "" {
		base = DefaultRedirectBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRedirectURL, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("%w: scheme %q", ErrInvalidRedirectURL, u.Scheme)
	}
	if u.Host == "" || u.RawQuery != "" || u.Fragment != "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRedirectURL, base)
	}
	return &RedirectBuilder{base: base}, nil
}

func (b *RedirectBuilder) Base() string { return b.base }

// Build returns base?order_id=<orderNo>&amount=<amount with two decimals>.
// Parameter order is fixed; both values are percent-encoded.
func (b *RedirectBuilder) Build(orderNo string, amount decimal.Decimal) string {
	return RedirectURL(b.base, orderNo, amount)
}

// RedirectURL is Build without base validation.
func RedirectURL(base, orderNo string, amount decimal.Decimal) string {
	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString("?order_id=")
	sb.WriteString(encodeComponent(orderNo))
	sb.WriteString("&amount=")
	sb.WriteString(encodeComponent(FormatAmount(amount)))
	return sb.String()
}

// FormatAmount renders amount with exactly two decimal places, rounding half
// away from zero.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// componentUnescaper restores the characters encodeURIComponent leaves as is
// and writes spaces as %20.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent escapes a query value the way encodeURIComponent does.
func encodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
