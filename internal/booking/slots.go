package booking

import (
	"fmt"
	"sort"
	"strconv"
)

// Interval is a same-day wall-clock time range, half-open [Start, End).
// Cross-midnight spans are not supported.
type Interval struct {
	Start string `dynamodbav:"start" json:"start"`
	End   string `dynamodbav:"end" json:"end"`
}

// ParseClock converts "HH:mm" (24h) to minutes since midnight.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrBadClock
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil {
		return 0, ErrBadClock
	}
	m, err := strconv.Atoi(s[3:])
	if err != nil {
		return 0, ErrBadClock
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, ErrBadClock
	}
	return h*60 + m, nil
}

// FormatClock converts minutes since midnight back to "HH:mm".
func FormatClock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// minutes returns the interval bounds in minutes since midnight.
func (iv Interval) minutes() (int, int, error) {
	start, err := ParseClock(iv.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseClock(iv.End)
	if err != nil {
		return 0, 0, err
	}
	if start >= end {
		return 0, 0, ErrInvertedInterval
	}
	return start, end, nil
}

// ValidateDaySchedule rejects malformed availability at the data-entry
// boundary: every interval must parse, run forward, and not overlap the
// previous one once sorted.
func ValidateDaySchedule(intervals []Interval) error {
	parsed := make([][2]int, 0, len(intervals))
	for _, iv := range intervals {
		start, end, err := iv.minutes()
		if err != nil {
			return err
		}
		parsed = append(parsed, [2]int{start, end})
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i][0] < parsed[j][0] })
	for i := 1; i < len(parsed); i++ {
		if parsed[i][0] < parsed[i-1][1] {
			return fmt.Errorf("booking: availability intervals %s and %s overlap",
				FormatClock(parsed[i-1][0]), FormatClock(parsed[i][0]))
		}
	}
	return nil
}

// SlotFits reports whether a booking of durMin minutes starting at startMin is
// fully contained in some availability window and intersects no busy interval.
// Both window containment and the overlap test use half-open interval
// semantics, so a candidate ending exactly when a busy interval begins fits.
func SlotFits(windows, busy []Interval, startMin, durMin int) (bool, error) {
	if durMin <= 0 {
		return false, ErrInvertedInterval
	}
	endMin := startMin + durMin

	contained := false
	for _, w := range windows {
		ws, we, err := w.minutes()
		if err != nil {
			return false, err
		}
		if ws <= startMin && endMin <= we {
			contained = true
			break
		}
	}
	if !contained {
		return false, nil
	}

	for _, b := range busy {
		bs, be, err := b.minutes()
		if err != nil {
			return false, err
		}
		if startMin < be && bs < endMin {
			return false, nil
		}
	}
	return true, nil
}

// SweepStep is the granularity of the deterministic candidate sweep.
const SweepStep = 15

// SweepCandidates walks the windows chronologically and emits the first
// valid start times for a booking of durMin minutes, at most max results.
// Repeated identical inputs always yield identical ordering.
func SweepCandidates(windows, busy []Interval, durMin, max int) ([]int, error) {
	if durMin <= 0 {
		return nil, ErrInvertedInterval
	}
	if max <= 0 {
		return nil, nil
	}

	sorted := make([]Interval, len(windows))
	copy(sorted, windows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var out []int
	for _, w := range sorted {
		ws, we, err := w.minutes()
		if err != nil {
			return nil, err
		}
		for s := ws; s+durMin <= we; s += SweepStep {
			ok, err := SlotFits(windows, busy, s, durMin)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			out = append(out, s)
			if len(out) >= max {
				return out, nil
			}
		}
	}
	return out, nil
}
