package booking

import (
	"errors"
	"testing"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"9:00", 0, true},
		{"12-30", 0, true},
		{"12:3x", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrBadClock) {
				t.Errorf("ParseClock(%q): expected ErrBadClock, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatClockRoundTrip(t *testing.T) {
	for _, min := range []int{0, 570, 755, 1439} {
		got, err := ParseClock(FormatClock(min))
		if err != nil {
			t.Fatalf("round trip %d: %v", min, err)
		}
		if got != min {
			t.Fatalf("round trip %d -> %d", min, got)
		}
	}
}

func TestSlotFits_WindowContainment(t *testing.T) {
	// Service duration 60 min, window 09:00-13:00, no bookings:
	// 09:00 is valid, 12:30 is not (would end 13:30).
	windows := []Interval{{Start: "09:00", End: "13:00"}}

	ok, err := SlotFits(windows, nil, mustClock(t, "09:00"), 60)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("09:00 should fit a 60 min booking in 09:00-13:00")
	}

	ok, err = SlotFits(windows, nil, mustClock(t, "12:30"), 60)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("12:30 should not fit: 12:30+60 exceeds 13:00")
	}

	// Exact fit against the window end is allowed (half-open containment).
	ok, _ = SlotFits(windows, nil, mustClock(t, "12:00"), 60)
	if !ok {
		t.Error("12:00 should fit exactly")
	}
}

func TestSlotFits_BusyOverlap(t *testing.T) {
	// Window 09:00-17:00 with an existing booking 10:00-11:00.
	windows := []Interval{{Start: "09:00", End: "17:00"}}
	busy := []Interval{{Start: "10:00", End: "11:00"}}

	// 09:00 ends exactly when the booking starts: boundary touch, no overlap.
	ok, err := SlotFits(windows, busy, mustClock(t, "09:00"), 60)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("09:00-10:00 touches 10:00-11:00 but does not overlap")
	}

	ok, _ = SlotFits(windows, busy, mustClock(t, "10:30"), 60)
	if ok {
		t.Error("10:30-11:30 overlaps 10:00-11:00")
	}

	// Starting exactly at the booking's end is fine.
	ok, _ = SlotFits(windows, busy, mustClock(t, "11:00"), 60)
	if !ok {
		t.Error("11:00 should fit immediately after the booking")
	}
}

func TestSlotFits_RejectsNonPositiveDuration(t *testing.T) {
	windows := []Interval{{Start: "09:00", End: "17:00"}}
	if _, err := SlotFits(windows, nil, 540, 0); !errors.Is(err, ErrInvertedInterval) {
		t.Fatalf("expected ErrInvertedInterval, got %v", err)
	}
}

func TestSweepCandidates_FirstFitOrderIsStable(t *testing.T) {
	windows := []Interval{
		{Start: "13:00", End: "15:00"},
		{Start: "09:00", End: "10:30"},
	}
	busy := []Interval{{Start: "09:00", End: "09:30"}}

	first, err := SweepCandidates(windows, busy, 60, 5)
	if err != nil {
		t.Fatal(err)
	}
	second, err := SweepCandidates(windows, busy, 60, 5)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"09:30", "13:00", "13:15", "13:30", "13:45"}
	if len(first) != len(want) {
		t.Fatalf("expected %d candidates, got %d (%v)", len(want), len(first), first)
	}
	for i, min := range first {
		if FormatClock(min) != want[i] {
			t.Errorf("candidate %d = %s, want %s", i, FormatClock(min), want[i])
		}
		if second[i] != min {
			t.Errorf("sweep is not deterministic at index %d", i)
		}
	}
}

func TestSweepCandidates_CapsAtMax(t *testing.T) {
	windows := []Interval{{Start: "09:00", End: "18:00"}}
	out, err := SweepCandidates(windows, nil, 30, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 5 {
		t.Fatalf("expected 5 candidates, got %d", len(out))
	}
}

func TestSweepCandidates_EmptyIsNotAnError(t *testing.T) {
	windows := []Interval{{Start: "09:00", End: "09:30"}}
	out, err := SweepCandidates(windows, nil, 60, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no candidates, got %v", out)
	}
}

func TestValidateDaySchedule(t *testing.T) {
	if err := ValidateDaySchedule([]Interval{
		{Start: "09:00", End: "12:00"},
		{Start: "13:00", End: "17:00"},
	}); err != nil {
		t.Errorf("valid schedule rejected: %v", err)
	}

	if err := ValidateDaySchedule([]Interval{
		{Start: "13:00", End: "12:00"},
	}); !errors.Is(err, ErrInvertedInterval) {
		t.Errorf("inverted interval should be rejected, got %v", err)
	}

	if err := ValidateDaySchedule([]Interval{
		{Start: "09:00", End: "12:00"},
		{Start: "11:00", End: "13:00"},
	}); err == nil {
		t.Error("overlapping intervals should be rejected")
	}

	// Back-to-back intervals are fine.
	if err := ValidateDaySchedule([]Interval{
		{Start: "09:00", End: "12:00"},
		{Start: "12:00", End: "14:00"},
	}); err != nil {
		t.Errorf("adjacent intervals rejected: %v", err)
	}
}

func mustClock(t *testing.T, s string) int {
	t.Helper()
	min, err := ParseClock(s)
	if err != nil {
		t.Fatalf("bad clock %q: %v", s, err)
	}
	return min
}
