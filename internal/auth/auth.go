// Package auth issues and validates the signed session tokens that guard
// the mutating API routes. A token embeds the task manager id and its
// issue time, carries an HMAC-SHA256 signature, and travels base64
// wrapped; there is no server-side session state.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidToken covers malformed tokens and bad signatures.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrTokenExpired is returned for a well-signed token past its age limit.
	ErrTokenExpired = errors.New("auth: token expired")
)

// DefaultMaxAge is how long a session token stays valid.
const DefaultMaxAge = 604800 * time.Second

// Signer issues and checks session tokens with a shared secret.
type Signer struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewSigner builds a Signer. A non-positive maxAge falls back to
// DefaultMaxAge.
func NewSigner(secret string, maxAge time.Duration) *Signer {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Signer{
		secret: []byte(secret),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// GenerateToken issues a session token for a task manager id.
func (s *Signer) GenerateToken(taskManagerID string) string {
	payload := taskManagerID + "\n" + strconv.FormatInt(s.now().Unix(), 10)
	body := base64.RawURLEncoding.EncodeToString([]byte(payload))
	inner := body + "." + s.sign(body)
	return base64.StdEncoding.EncodeToString([]byte(inner))
}

// ValidateToken checks a token's signature and age and returns the task
// manager id it was issued for.
func (s *Signer) ValidateToken(token string) (string, error) {
	inner, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: not base64", ErrInvalidToken)
	}
	body, sig, ok := strings.Cut(string(inner), ".")
	if !ok {
		return "", fmt.Errorf("%w: missing signature", ErrInvalidToken)
	}
	if !hmac.Equal([]byte(sig), []byte(s.sign(body))) {
		return "", fmt.Errorf("%w: bad signature", ErrInvalidToken)
	}

	payload, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return "", fmt.Errorf("%w: bad payload encoding", ErrInvalidToken)
	}
	id, issued, ok := strings.Cut(string(payload), "\n")
	if !ok || id == "" {
		return "", fmt.Errorf("%w: bad payload", ErrInvalidToken)
	}
	issuedAt, err := strconv.ParseInt(issued, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: bad timestamp", ErrInvalidToken)
	}
	if s.now().Sub(time.Unix(issuedAt, 0)) > s.maxAge {
		return "", ErrTokenExpired
	}
	return id, nil
}

func (s *Signer) sign(body string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(body))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
