// Package token implements session token issuance/verification and
// password-reset token pairs.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"inkwell/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionTTL is the validity window of a signed session token. This is
	// independent of the cookie's own expiry window.
	SessionTTL = 10 * 24 * time.Hour
	// ResetTTL is the validity window of a password-reset token.
	ResetTTL = 15 * time.Minute

	issuer   = "inkwell-api"
	audience = "inkwell-client"
)

// Service issues and verifies signed session tokens. It holds no state
// beyond the signing secret; tokens are never persisted or revoked.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// New returns a token Service signing with secret and the given validity
// window. Use SessionTTL outside of tests.
func New(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

// Issue produces a signed session token naming userID, valid for the
// service's TTL from now.
func (s *Service) Issue(userID uint) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": issuer,
		"aud": audience,
		"exp": now.Add(s.ttl).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the token's signature, then its expiry, and returns the
// embedded user ID. Failures are classified as INVALID_TOKEN or
// EXPIRED_TOKEN.
func (s *Service) Verify(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithAudience(audience))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, models.NewExpiredTokenError("Session token is expired. Try to login!")
		}
		return 0, models.NewInvalidTokenError("Session token is invalid. Try again!")
	}
	if !token.Valid {
		return 0, models.NewInvalidTokenError("Session token is invalid. Try again!")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, models.NewInvalidTokenError("Invalid token claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, models.NewInvalidTokenError("Invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, models.NewInvalidTokenError("Invalid user ID in token")
	}

	return uint(userID), nil
}

// ResetToken is a password-reset token pair. Only Plaintext is ever sent to
// the user (by email); only Hash is persisted, so a store compromise does
// not leak usable tokens.
type ResetToken struct {
	Plaintext string
	Hash      string
	ExpiresAt time.Time
}

// NewResetToken generates a fresh reset token pair: 160 random bits of
// plaintext, its sha256 digest, and an expiry of now + ResetTTL.
func NewResetToken() (ResetToken, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return ResetToken{}, fmt.Errorf("generating reset token: %w", err)
	}

	plain := hex.EncodeToString(buf)
	return ResetToken{
		Plaintext: plain,
		Hash:      HashResetToken(plain),
		ExpiresAt: time.Now().Add(ResetTTL),
	}, nil
}

// HashResetToken returns the stored digest form of a plaintext reset token.
func HashResetToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
