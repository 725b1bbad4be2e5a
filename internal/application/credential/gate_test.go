package credential

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/unlp/internal/domain"
)

func TestGateSubmit(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{name: "accepts prefixed key", raw: "gsk_abcdef123456"},
		{name: "trims surrounding whitespace", raw: "  gsk_abcdef123456\n"},
		{name: "rejects empty", raw: "", wantErr: "API key is required"},
		{name: "rejects blank", raw: "   \t", wantErr: "API key is required"},
		{name: "rejects wrong prefix", raw: "sk-abcdef", wantErr: "should start with gsk_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewGate()
			cred, err := gate.Submit(tt.raw)
			if tt.wantErr != "" {
				require.Error(t, err)
				var formatErr *domain.FormatError
				assert.True(t, errors.As(err, &formatErr))
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.False(t, gate.IsOpen())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "gsk_abcdef123456", cred.Secret())
			assert.True(t, gate.IsOpen())
		})
	}
}

func TestGateCloseDiscardsCredential(t *testing.T) {
	gate := NewGate()
	_, err := gate.Submit("gsk_abcdef123456")
	require.NoError(t, err)

	gate.Close()

	cred, ok := gate.Credential()
	assert.False(t, ok)
	assert.True(t, cred.IsZero())
	assert.False(t, gate.IsOpen())
}

func TestGateRejectionKeepsPreviousCredential(t *testing.T) {
	gate := NewGate()
	_, err := gate.Submit("gsk_first_key_0001")
	require.NoError(t, err)

	_, err = gate.Submit("not-a-key")
	require.Error(t, err)

	cred, ok := gate.Credential()
	require.True(t, ok)
	assert.Equal(t, "gsk_first_key_0001", cred.Secret())
}

func TestCredentialFormattingIsRedacted(t *testing.T) {
	cred, err := Validate("gsk_supersecretvalue9876")
	require.NoError(t, err)

	for _, verb := range []string{"%v", "%s", "%+v", "%#v"} {
		out := fmt.Sprintf(verb, cred)
		assert.NotContains(t, out, "supersecret", verb)
		assert.Contains(t, out, "9876", verb)
	}
}
