// Package streak computes consecutive-day statistics over a habit's
// completion history.
package streak

import (
	"sort"
	"time"
)

// DayLayout is the storage format of a calendar day.
const DayLayout = "2006-01-02"

const day = 24 * time.Hour

// Result holds the streak lengths derived from a history.
type Result struct {
	Current int `json:"currentStreak" bson:"currentStreak"`
	Best    int `json:"bestStreak" bson:"bestStreak"`
}

// Today returns the UTC calendar day of now in DayLayout.
func Today(now time.Time) string {
	return now.UTC().Format(DayLayout)
}

// ParseDay parses a calendar day. Date-only values and RFC 3339 timestamps
// are accepted; timestamps are truncated to their UTC date.
func ParseDay(s string) (time.Time, bool) {
	if t, err := time.Parse(DayLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// Compute returns the current and best streaks for history. Entries that
// do not parse as calendar days are ignored.
//
// Two consecutive days extend a run only when they are exactly one day
// apart. A repeated day (gap of zero) ends the run like any other gap.
func Compute(history []string) Result {
	days := make([]time.Time, 0, len(history))
	for _, h := range history {
		if d, ok := ParseDay(h); ok {
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return Result{}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	current := 1
	for i := len(days) - 2; i >= 0; i-- {
		if gapInDays(days[i], days[i+1]) != 1 {
			break
		}
		current++
	}

	best, run := 1, 1
	for i := 1; i < len(days); i++ {
		if gapInDays(days[i-1], days[i]) == 1 {
			run++
			continue
		}
		if run > best {
			best = run
		}
		run = 1
	}
	if run > best {
		best = run
	}

	return Result{Current: current, Best: best}
}

func gapInDays(prev, next time.Time) int {
	return int(next.Sub(prev) / day)
}
