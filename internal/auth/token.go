package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of the identity service's access token we read.
// Signatures are never checked here; the backend API does that on every call.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

var ErrEmptyToken = errors.New("empty token")

// Inspect decodes a JWT without verifying it. ok is false when the token is
// not a JWT at all; such opaque tokens are left to the backend to judge.
func Inspect(token string) (claims *Claims, ok bool) {
	if strings.Count(token, ".") != 2 {
		return nil, false
	}

	claims = &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// Usable reports whether a stored credential is worth sending. Expired JWTs
// count as logged out; opaque tokens are always usable.
func Usable(token string, now time.Time) error {
	if strings.TrimSpace(token) == "" {
		return ErrEmptyToken
	}

	claims, ok := Inspect(token)
	if !ok || claims.ExpiresAt == nil {
		return nil
	}
	if !now.Before(claims.ExpiresAt.Time) {
		return jwt.ErrTokenExpired
	}
	return nil
}

// OwnerKey derives a stable, non-reversible id for a credential so drafts and
// cache entries can be scoped per session without keeping the raw token.
func OwnerKey(secret []byte, token string) string {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))[:32]
}
