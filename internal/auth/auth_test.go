package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	signer := NewSigner("s3cret", 0)

	token := signer.GenerateToken("tm-1234")
	id, err := signer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "tm-1234", id)
}

func TestTokenWrongSecret(t *testing.T) {
	token := NewSigner("s3cret", 0).GenerateToken("tm-1234")

	_, err := NewSigner("other", 0).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenTampered(t *testing.T) {
	signer := NewSigner("s3cret", 0)
	token := signer.GenerateToken("tm-1234")

	tampered := "A" + token[1:]
	_, err := signer.ValidateToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	signer := NewSigner("s3cret", 0)

	for _, token := range []string{"", "not base64!!", "bm8gc2lnbmF0dXJl"} {
		_, err := signer.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestTokenExpiry(t *testing.T) {
	signer := NewSigner("s3cret", time.Hour)
	issued := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return issued }

	token := signer.GenerateToken("tm-1234")

	signer.now = func() time.Time { return issued.Add(59 * time.Minute) }
	_, err := signer.ValidateToken(token)
	assert.NoError(t, err)

	signer.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = signer.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
