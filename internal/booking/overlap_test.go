package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/DriveBook/DriveBook/internal/common/apperr"
)

func d(day int) time.Time {
	return time.Date(2025, 7, day, 0, 0, 0, 0, time.UTC)
}

func TestOverlapsHalfOpen(t *testing.T) {
	cases := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"identical", d(1), d(10), d(1), d(10), true},
		{"contained", d(1), d(10), d(5), d(8), true},
		{"contains", d(5), d(8), d(1), d(10), true},
		{"partial left", d(1), d(6), d(5), d(10), true},
		{"partial right", d(5), d(10), d(1), d(6), true},
		{"disjoint before", d(1), d(3), d(5), d(10), false},
		{"disjoint after", d(12), d(15), d(5), d(10), false},
		{"back to back left", d(1), d(5), d(5), d(10), false},
		{"back to back right", d(10), d(12), d(5), d(10), false},
		{"single instant shared", d(1), d(6), d(5), d(6), true},
	}
	for _, tc := range cases {
		if got := Overlaps(tc.s1, tc.e1, tc.s2, tc.e2); got != tc.want {
			t.Fatalf("%s: Overlaps=%v want %v", tc.name, got, tc.want)
		}
	}
}

func TestNormalizeRange(t *testing.T) {
	warsaw := time.FixedZone("CEST", 2*60*60)
	start := time.Date(2025, 6, 1, 2, 0, 0, 0, warsaw)
	end := time.Date(2025, 6, 5, 2, 0, 0, 0, warsaw)

	s, e, err := NormalizeRange(start, end)
	if err != nil {
		t.Fatalf("NormalizeRange: %v", err)
	}
	if s.Location() != time.UTC || e.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v / %v", s.Location(), e.Location())
	}
	if s.Hour() != 0 {
		t.Fatalf("expected +02:00 offset folded into UTC, got hour %d", s.Hour())
	}

	if _, _, err := NormalizeRange(d(5), d(5)); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for start == end, got %v", err)
	}
	if _, _, err := NormalizeRange(d(6), d(5)); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for start > end, got %v", err)
	}
}
