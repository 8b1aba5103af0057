package payment

import (
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedirectURL(t *testing.T) {
	tests := []struct {
		orderNo string
		amount  string
		want    string
	}{
		{"00001234", "19.5", DefaultRedirectBaseURL + "?order_id=00001234&amount=19.50"},
		{"A1", "50", DefaultRedirectBaseURL + "?order_id=A1&amount=50.00"},
		{"A1", "50.00", DefaultRedirectBaseURL + "?order_id=A1&amount=50.00"},
		{"A1", "10.005", DefaultRedirectBaseURL + "?order_id=A1&amount=10.01"},
		{"A1", "1234567.891", DefaultRedirectBaseURL + "?order_id=A1&amount=1234567.89"},
		{"ORD 1", "1", DefaultRedirectBaseURL + "?order_id=ORD%201&amount=1.00"},
		{"a&b=c/d", "2.5", DefaultRedirectBaseURL + "?order_id=a%26b%3Dc%2Fd&amount=2.50"},
		{"x!'()*~", "3", DefaultRedirectBaseURL + "?order_id=x!'()*~&amount=3.00"},
		{"-_.~", "3", DefaultRedirectBaseURL + "?order_id=-_.~&amount=3.00"},
	}
	for _, tt := range tests {
		t.Run(tt.orderNo+"/"+tt.amount, func(t *testing.T) {
			got := RedirectURL(DefaultRedirectBaseURL, tt.orderNo, decimal.RequireFromString(tt.amount))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRedirectURLRoundTrip(t *testing.T) {
	orders := []string{"00001234", "A1", "ORD 1", "ñandú+42", "a&b=c?#%", "x!'()*~"}
	amounts := []string{"0.01", "19.5", "100", "99.999"}

	for _, no := range orders {
		for _, amt := range amounts {
			amount := decimal.RequireFromString(amt)
			raw := RedirectURL(DefaultRedirectBaseURL, no, amount)

			u, err := url.Parse(raw)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(u.RawQuery, "order_id="), "order_id comes first")

			q, err := url.ParseQuery(u.RawQuery)
			require.NoError(t, err)
			assert.Equal(t, no, q.Get("order_id"))
			assert.Equal(t, amount.StringFixed(2), q.Get("amount"))
		}
	}
}

func TestNewRedirectBuilder(t *testing.T) {
	b, err := NewRedirectBuilder("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRedirectBaseURL, b.Base())

	b, err = NewRedirectBuilder("https://sandbox.example.com/pos")
	require.NoError(t, err)
	assert.Equal(t, "https://sandbox.example.com/pos?order_id=A1&amount=50.00", b.Build("A1", decimal.NewFromInt(50)))

	for _, bad := range []string{
		"ftp://example.com/pos",
		"/relative/path",
		"https://example.com/pos?x=1",
		"https://example.com/pos#frag",
		"https://%zz",
	} {
		_, err := NewRedirectBuilder(bad)
		assert.ErrorIs(t, err, ErrInvalidRedirectURL, bad)
	}
}
