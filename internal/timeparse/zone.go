// Package timeparse resolves free-form Russian date/time expressions
// ("завтра в 9", "в пятницу", "25.12.2025") into absolute instants and
// canonical zone-local timestamps used as booking keys.
package timeparse

import (
	"fmt"
	"time"
)

// CivilTime is a wall-clock reading in some zone, with no zone attached.
// It is always derived from an instant plus a location and is never
// authoritative on its own.
type CivilTime struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
	Second int
}

const (
	// CanonicalLayout is the offset-free serialization used as the
	// storage and comparison key for a booking's scheduled time.
	CanonicalLayout = "2006-01-02T15:04:05"

	// DisplayLayout is how dates are shown back to users.
	DisplayLayout = "02.01.2006"

	// MatchTolerance is the maximum instant difference under which two
	// canonical strings are still considered the same slot.
	MatchTolerance = 5 * time.Minute

	// Offset refinement converges in one pass except at DST boundaries;
	// two passes are accepted as final either way.
	maxOffsetIterations = 2
)

// OffsetMinutes returns the zone's UTC offset in minutes effective at the
// given instant. The offset depends on the instant (DST), so it must be
// recomputed per call and never cached.
func OffsetMinutes(instant time.Time, loc *time.Location) int {
	_, offset := instant.In(loc).Zone()
	return offset / 60
}

// Project converts an absolute instant into its civil reading in loc.
func Project(instant time.Time, loc *time.Location) CivilTime {
	t := instant.In(loc)
	return CivilTime{
		Year:   t.Year(),
		Month:  t.Month(),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// Unproject converts a civil reading back into an absolute instant.
//
// The offset depends on the resulting instant, not on the civil input, so
// the conversion refines a zero-offset guess: compute the offset at the
// guess, rebuild the instant with it, and repeat. Away from DST boundaries
// this stabilizes after one pass; the iteration is capped and the last
// guess is accepted rather than looping or failing.
func Unproject(c CivilTime, loc *time.Location) time.Time {
	guess := time.Date(c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second, 0, time.UTC)
	for i := 0; i < maxOffsetIterations; i++ {
		offset := OffsetMinutes(guess, loc)
		next := time.Date(c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second, 0, time.UTC).
			Add(-time.Duration(offset) * time.Minute)
		if next.Equal(guess) {
			break
		}
		guess = next
	}
	return guess
}

// Canonical serializes the civil time as YYYY-MM-DDTHH:MM:SS.
func (c CivilTime) Canonical() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d",
		c.Year, int(c.Month), c.Day, c.Hour, c.Minute, c.Second)
}

// Display renders the date portion as DD.MM.YYYY.
func (c CivilTime) Display() string {
	return fmt.Sprintf("%02d.%02d.%04d", c.Day, int(c.Month), c.Year)
}

// FormatOffset renders the instant in loc with its UTC offset attached,
// for display and interop; never used as a storage key.
func FormatOffset(instant time.Time, loc *time.Location) string {
	return instant.In(loc).Format("2006-01-02T15:04:05-07:00")
}

// ParseCanonical reads a canonical local string back into an instant in loc.
func ParseCanonical(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(CanonicalLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse canonical %q: %w", s, err)
	}
	return t, nil
}

// SameSlot reports whether two canonical local strings refer to the same
// scheduled moment: exact string equality, or re-derived instants within
// MatchTolerance of each other. Unparseable values only match exactly.
func SameSlot(a, b string, loc *time.Location) bool {
	if a == b {
		return true
	}
	ta, err := ParseCanonical(a, loc)
	if err != nil {
		return false
	}
	tb, err := ParseCanonical(b, loc)
	if err != nil {
		return false
	}
	diff := ta.Sub(tb)
	if diff < 0 {
		diff = -diff
	}
	return diff < MatchTolerance
}
