package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()

	claims := Claims{
		Username: "ana",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some-other-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return raw
}

func TestInspect(t *testing.T) {
	raw := signed(t, time.Now().Add(time.Hour))

	claims, ok := Inspect(raw)
	if !ok {
		t.Fatal("expected jwt to be inspectable")
	}
	if claims.Username != "ana" || claims.Subject != "u1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, ok := Inspect("opaque-token"); ok {
		t.Fatal("opaque token must not inspect as jwt")
	}
}

func TestUsable(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty", "  ", ErrEmptyToken},
		{"opaque", "abc123", nil},
		{"fresh jwt", signed(t, now.Add(time.Hour)), nil},
		{"expired jwt", signed(t, now.Add(-time.Minute)), jwt.ErrTokenExpired},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := Usable(tt.token, now)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Usable() err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOwnerKey(t *testing.T) {
	secret := []byte("secret")

	a := OwnerKey(secret, "token-a")
	if a != OwnerKey(secret, "token-a") {
		t.Fatal("owner key must be deterministic")
	}
	if a == OwnerKey(secret, "token-b") {
		t.Fatal("different tokens must yield different keys")
	}
	if a == OwnerKey([]byte("other"), "token-a") {
		t.Fatal("different secrets must yield different keys")
	}
	if len(a) != 32 {
		t.Fatalf("len = %d, want 32", len(a))
	}
}
