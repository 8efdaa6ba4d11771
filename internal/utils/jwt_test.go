package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestParseAccessToken(t *testing.T) {
	secret := "s3cret"
	ok := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "7", "exp": time.Now().Add(time.Hour).Unix()})
	if _, err := ParseAccessToken(secret, ok); err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}

	bad := []string{
		sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "7"}),
		sign(t, jwt.SigningMethodHS512, []byte(secret), jwt.MapClaims{"sub": "7"}),
		sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "7", "exp": time.Now().Add(-time.Hour).Unix()}),
		"garbage",
	}
	for i, raw := range bad {
		if _, err := ParseAccessToken(secret, raw); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("case %d: err = %v, want ErrInvalidToken", i, err)
		}
	}
}

func TestRequesterFromClaims(t *testing.T) {
	cases := []struct {
		name   string
		claims jwt.MapClaims
		id     uint64
		admin  bool
	}{
		{"numeric sub", jwt.MapClaims{"sub": float64(12), "role": "user"}, 12, false},
		{"string sub", jwt.MapClaims{"sub": "34"}, 34, false},
		{"admin role", jwt.MapClaims{"sub": "1", "role": "ADMIN"}, 1, true},
		{"staff flag", jwt.MapClaims{"sub": "1", "role": "user", "is_staff": true}, 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := RequesterFromClaims(tc.claims, "admin")
			if err != nil {
				t.Fatal(err)
			}
			if r.UserID == nil || *r.UserID != tc.id || r.IsAdmin != tc.admin {
				t.Fatalf("got %+v (id %v)", r, r.UserID)
			}
		})
	}

	for _, sub := range []any{nil, "abc", float64(1.5), float64(-3), "0"} {
		if _, err := RequesterFromClaims(jwt.MapClaims{"sub": sub}, "admin"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("sub %v: err = %v", sub, err)
		}
	}
}
