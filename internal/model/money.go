package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Money is a fixed-point amount with two fraction digits, stored as an
// integer number of cents.  It maps to DECIMAL(10,2) columns.
type Money int64

// ErrInvalidMoney is returned when a decimal string cannot be represented
// with two fraction digits.
var ErrInvalidMoney = errors.New("invalid money amount")

// ParseMoney parses a decimal string such as "150", "150.5" or "150.50".
// More than two fraction digits are rejected rather than rounded.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidMoney
	}
	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		// DECIMAL columns may render trailing zeros beyond the scale.
		if strings.Trim(frac[2:], "0") != "" {
			return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
		}
		frac = frac[:2]
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	m := Money(w*100 + f)
	if neg {
		m = -m
	}
	return m, nil
}

// Cents returns the amount in cents.
func (m Money) Cents() int64 { return int64(m) }

// Times multiplies the amount by an integer factor, e.g. a night count.
func (m Money) Times(n int) Money { return m * Money(n) }

// String renders the amount with exactly two fraction digits.
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the amount as a JSON number with two fraction digits.
func (m Money) MarshalJSON() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	parsed, err := ParseMoney(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value stores the amount as a decimal string so both MySQL and PostgreSQL
// keep the exact value.
func (m Money) Value() (driver.Value, error) { return m.String(), nil }

// Scan reads DECIMAL values, which drivers return as []byte or string.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = 0
		return nil
	case []byte:
		return m.scanString(string(v))
	case string:
		return m.scanString(v)
	case int64:
		*m = Money(v * 100)
		return nil
	case float64:
		return m.scanString(strconv.FormatFloat(v, 'f', 2, 64))
	}
	return fmt.Errorf("money: unsupported scan type %T", src)
}

func (m *Money) scanString(s string) error {
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
