package model

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2024-02-01", "2024-02-01T10:30:00", "2024-02-01T23:59:59+05:00", " 2024-02-01 "} {
		got, err := ParseDate(in)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", in, err)
		}
		if !got.Equal(day("2024-02-01")) {
			t.Errorf("ParseDate(%q) = %v", in, got)
		}
	}
	for _, in := range []string{"", "01/02/2024", "2024-13-01", "2024-02-30", "tomorrow"} {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("ParseDate(%q) expected error", in)
		}
	}
}

func TestNights(t *testing.T) {
	if n := Nights(day("2024-02-01"), day("2024-02-05")); n != 4 {
		t.Fatalf("Nights = %d, want 4", n)
	}
	// crosses the end of a leap February
	if n := Nights(day("2024-02-28"), day("2024-03-01")); n != 2 {
		t.Fatalf("Nights = %d, want 2", n)
	}
	// longer than time.Duration can represent
	if n := Nights(day("2030-02-01"), day("2400-02-01")); n != 135139 {
		t.Fatalf("Nights = %d, want 135139", n)
	}
}

func TestToday(t *testing.T) {
	now := time.Date(2024, 2, 1, 23, 30, 0, 0, time.UTC)
	tokyo := time.FixedZone("JST", 9*3600)
	if got := Today(now, time.UTC); !got.Equal(day("2024-02-01")) {
		t.Fatalf("Today UTC = %v", got)
	}
	if got := Today(now, tokyo); !got.Equal(day("2024-02-02")) {
		t.Fatalf("Today JST = %v", got)
	}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                 string
		aIn, aOut, bIn, bOut string
		want                 bool
	}{
		{"touching after", "2024-02-01", "2024-02-05", "2024-02-05", "2024-02-10", false},
		{"touching before", "2024-02-05", "2024-02-10", "2024-02-01", "2024-02-05", false},
		{"partial", "2024-02-01", "2024-02-05", "2024-02-03", "2024-02-07", true},
		{"contained", "2024-02-01", "2024-02-10", "2024-02-03", "2024-02-04", true},
		{"identical", "2024-02-01", "2024-02-02", "2024-02-01", "2024-02-02", true},
		{"disjoint", "2024-02-01", "2024-02-02", "2024-03-01", "2024-03-02", false},
	}
	for _, tc := range cases {
		got := Overlaps(day(tc.aIn), day(tc.aOut), day(tc.bIn), day(tc.bOut))
		if got != tc.want {
			t.Errorf("%s: Overlaps = %v, want %v", tc.name, got, tc.want)
		}
	}
}
