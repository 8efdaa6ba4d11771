package model

import (
	"errors"
	"strings"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned by ParseDate for anything that is not a
// calendar date or an ISO-8601 date-time.
var ErrInvalidDate = errors.New("invalid date")

// dateTimeLayouts are tried after DateLayout; only the date part of the
// parsed value is kept.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// ParseDate parses "YYYY-MM-DD" (or an ISO date-time, truncated to its
// date) into midnight UTC of that calendar day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// DateOf returns midnight UTC of t's calendar day in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar day in loc, expressed as midnight UTC
// so it compares directly with parsed dates.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}

// Nights counts whole nights between two calendar dates.
func Nights(checkIn, checkOut time.Time) int {
	return int((DateOf(checkOut).Unix() - DateOf(checkIn).Unix()) / secondsPerDay)
}

// Overlaps reports whether the half-open ranges [aIn, aOut) and [bIn, bOut)
// share at least one night.  Touching ranges (aOut == bIn) do not overlap.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && aOut.After(bIn)
}
