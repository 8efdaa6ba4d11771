// Package utils holds helpers for reading access tokens issued by the
// external identity provider.  Tokens are HS256 JWTs whose "sub" claim is
// the numeric user id and whose "role" / "is_staff" claims carry the
// admin capability.
package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/room-booking/internal/model"
)

// ErrInvalidToken covers malformed, expired and wrongly signed tokens.
var ErrInvalidToken = errors.New("invalid token")

// ParseAccessToken verifies raw with the shared HS256 secret and returns
// its claims.  Tokens signed with any other algorithm are rejected.
func ParseAccessToken(secret, raw string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RequesterFromClaims maps token claims onto a Requester.  The subject may
// be encoded as a JSON number or a decimal string; anything else is
// rejected.  The requester is an admin when role equals adminRole
// (case-insensitive) or is_staff is true.
func RequesterFromClaims(claims jwt.MapClaims, adminRole string) (model.Requester, error) {
	id, err := subjectID(claims["sub"])
	if err != nil {
		return model.Requester{}, err
	}
	role, _ := claims["role"].(string)
	staff, _ := claims["is_staff"].(bool)
	return model.Requester{
		UserID:  &id,
		Role:    role,
		IsAdmin: staff || (role != "" && strings.EqualFold(role, adminRole)),
	}, nil
}

func subjectID(v any) (uint64, error) {
	switch s := v.(type) {
	case float64:
		if s <= 0 || s != math.Trunc(s) || s > math.MaxInt64 {
			return 0, fmt.Errorf("%w: bad subject %v", ErrInvalidToken, s)
		}
		return uint64(s), nil
	case string:
		id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		if err != nil || id == 0 {
			return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, s)
		}
		return id, nil
	}
	return 0, fmt.Errorf("%w: missing subject", ErrInvalidToken)
}
