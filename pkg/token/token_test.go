package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerifyRoundtrip(t *testing.T) {
	m := NewManager("test-secret", 3600)

	tok, err := m.Generate("u1")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	uid, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)
}

func TestVerifyExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -60)

	tok, err := m.Generate("u1")
	require.NoError(t, err)

	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	m := NewManager("test-secret", 3600)

	_, err := m.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", 3600)
	verifier := NewManager("secret-b", 3600)

	tok, err := issuer.Generate("u1")
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
