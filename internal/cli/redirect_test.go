package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRedirect(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRedirectURLCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestRedirectURLCommand(t *testing.T) {
	out, err := runRedirect(t, "--order", "00001234", "--amount", "19.5")
	require.NoError(t, err)
	assert.Equal(t, "https://apurata.com/pos/crear-orden-y-continuar?order_id=00001234&amount=19.50", out)
}

func TestRedirectURLCommandCustomBase(t *testing.T) {
	out, err := runRedirect(t, "--order", "A 1", "--amount", "50", "--base", "https://sandbox.example.com/pos")
	require.NoError(t, err)
	assert.Equal(t, "https://sandbox.example.com/pos?order_id=A%201&amount=50.00", out)
}

func TestRedirectURLCommandErrors(t *testing.T) {
	_, err := runRedirect(t, "--order", "A1", "--amount", "abc")
	assert.Error(t, err)

	_, err = runRedirect(t, "--order", "A1", "--amount", "1", "--base", "ftp://example.com")
	assert.Error(t, err)

	_, err = runRedirect(t, "--amount", "1")
	assert.Error(t, err)
}
