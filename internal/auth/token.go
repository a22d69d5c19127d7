package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/taskboard/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is the fixed validity window of a session token.
const SessionTTL = time.Hour

var ErrMissingSecret = errors.New("token signing secret is not configured")

// TokenCodec signs and verifies HS256 session tokens carrying a single subject.
type TokenCodec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

type CodecOption func(*TokenCodec)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

// NewTokenCodec fails closed: without a secret no codec exists.
func NewTokenCodec(secret []byte, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	c := &TokenCodec{key: secret, ttl: SessionTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Encode issues a token for subjectID expiring exactly SessionTTL from now.
// Timestamps are truncated to whole seconds, the precision of the claims.
func (c *TokenCodec) Encode(subjectID string) (string, error) {
	if c == nil || len(c.key) == 0 {
		return "", ErrMissingSecret
	}
	if subjectID == "" {
		return "", fmt.Errorf("encode token: empty subject")
	}

	issued := c.now().Truncate(time.Second)
	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(c.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode returns the subject of a valid token. The token is accepted up to and
// including its expiry second and rejected strictly after it.
func (c *TokenCodec) Decode(raw string) (string, error) {
	if c == nil || len(c.key) == 0 {
		return "", ErrMissingSecret
	}

	var claims jwt.RegisteredClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		return "", domain.ErrTokenInvalid
	}

	if claims.ExpiresAt == nil || claims.Subject == "" {
		return "", domain.ErrTokenInvalid
	}
	if c.now().After(claims.ExpiresAt.Time) {
		return "", domain.ErrTokenExpired
	}
	return claims.Subject, nil
}
