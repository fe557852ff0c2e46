package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Saturday afternoon in Omsk (UTC+6, no DST).
func omskNow(t *testing.T) (time.Time, *time.Location) {
	t.Helper()
	loc := mustZone(t, "Asia/Omsk")
	return time.Date(2025, 10, 4, 10, 0, 0, 0, loc), loc
}

func TestParse_RelativeWords(t *testing.T) {
	now, loc := omskNow(t)
	p := NewParser(loc)

	tests := []struct {
		name    string
		text    string
		day     int
		hour    int
		minute  int
		hasTime bool
	}{
		{"Today", "сегодня", 4, 12, 0, false},
		{"Tomorrow", "завтра", 5, 12, 0, false},
		{"DayAfterTomorrow", "послезавтра", 6, 12, 0, false},
		{"TomorrowWithTime", "завтра в 9", 5, 9, 0, true},
		{"TomorrowWithMinutes", "завтра в 18:30", 5, 18, 30, true},
		{"TodayBareTime", "сегодня 15:45", 4, 15, 45, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, ok := p.Parse(tt.text, now)
			require.True(t, ok)
			assert.True(t, expr.RelativeOrWeekday)
			assert.False(t, expr.HasCalendarDate)
			assert.Equal(t, 2025, expr.Year)
			assert.Equal(t, time.October, expr.Month)
			assert.Equal(t, tt.day, expr.Day)
			assert.Equal(t, tt.hour, expr.Hour)
			assert.Equal(t, tt.minute, expr.Minute)
			assert.Equal(t, tt.hasTime, expr.HasTime)
		})
	}
}

func TestParse_Weekdays(t *testing.T) {
	now, loc := omskNow(t)
	p := NewParser(loc)

	tests := []struct {
		text string
		want time.Weekday
	}{
		{"в понедельник", time.Monday},
		{"во вторник", time.Tuesday},
		{"в среду", time.Wednesday},
		{"в четверг", time.Thursday},
		{"в пятницу", time.Friday},
		{"в субботу", time.Saturday},
		{"в воскресенье", time.Sunday},
		{"пятница", time.Friday},
		{"Суббота", time.Saturday},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			expr, ok := p.Parse(tt.text, now)
			require.True(t, ok)
			assert.True(t, expr.RelativeOrWeekday)

			civil := CivilTime{Year: expr.Year, Month: expr.Month, Day: expr.Day, Hour: expr.Hour, Minute: expr.Minute}
			instant := Unproject(civil, loc)
			assert.Equal(t, tt.want, instant.In(loc).Weekday())
			assert.True(t, instant.After(now), "resolved %s not after now", civil.Canonical())
		})
	}
}

func TestParse_WeekdaySameDay(t *testing.T) {
	loc := mustZone(t, "Asia/Omsk")
	p := NewParser(loc)

	t.Run("TargetStillAhead", func(t *testing.T) {
		// Saturday 10:00, asking for Saturday: default 12:00 has not passed yet.
		now := time.Date(2025, 10, 4, 10, 0, 0, 0, loc)
		expr, ok := p.Parse("в субботу", now)
		require.True(t, ok)
		assert.Equal(t, 4, expr.Day)
	})

	t.Run("TargetElapsedRollsWeek", func(t *testing.T) {
		// Saturday 15:00, asking for Saturday: 12:00 already passed, next week.
		now := time.Date(2025, 10, 4, 15, 0, 0, 0, loc)
		expr, ok := p.Parse("в субботу", now)
		require.True(t, ok)
		assert.Equal(t, 11, expr.Day)
	})

	t.Run("ExplicitTimeElapsedRollsWeek", func(t *testing.T) {
		now := time.Date(2025, 10, 4, 15, 0, 0, 0, loc)
		expr, ok := p.Parse("в субботу в 14:00", now)
		require.True(t, ok)
		assert.Equal(t, 11, expr.Day)
	})

	t.Run("ExplicitTimeAheadStaysToday", func(t *testing.T) {
		now := time.Date(2025, 10, 4, 15, 0, 0, 0, loc)
		expr, ok := p.Parse("в субботу в 19:00", now)
		require.True(t, ok)
		assert.Equal(t, 4, expr.Day)
	})
}

func TestParse_NumericDate(t *testing.T) {
	now, loc := omskNow(t)
	p := NewParser(loc)

	t.Run("DayMonth", func(t *testing.T) {
		expr, ok := p.Parse("12.05", now)
		require.True(t, ok)
		assert.True(t, expr.HasCalendarDate)
		assert.False(t, expr.RelativeOrWeekday)
		assert.Equal(t, 2025, expr.Year)
		assert.Equal(t, time.May, expr.Month)
		assert.Equal(t, 12, expr.Day)
		assert.Equal(t, 12, expr.Hour)
	})

	t.Run("FullDateWithTime", func(t *testing.T) {
		expr, ok := p.Parse("25.12.2025 в 18:30", now)
		require.True(t, ok)
		assert.Equal(t, 2025, expr.Year)
		assert.Equal(t, time.December, expr.Month)
		assert.Equal(t, 25, expr.Day)
		assert.Equal(t, 18, expr.Hour)
		assert.Equal(t, 30, expr.Minute)
		assert.True(t, expr.HasTime)
	})

	t.Run("TimeScannedAfterDateRemoval", func(t *testing.T) {
		// "в 12.05" must not read 12 as an hour.
		expr, ok := p.Parse("в 12.05", now)
		require.True(t, ok)
		assert.Equal(t, time.May, expr.Month)
		assert.Equal(t, 12, expr.Day)
		assert.False(t, expr.HasTime)
		assert.Equal(t, 12, expr.Hour)
	})

	t.Run("InvalidMonthRejected", func(t *testing.T) {
		_, ok := p.Parse("12.13", now)
		assert.False(t, ok)
	})
}

func TestParse_GenericFallback(t *testing.T) {
	now, loc := omskNow(t)
	p := NewParser(loc)

	expr, ok := p.Parse("2025-10-05 14:00", now)
	require.True(t, ok)
	assert.True(t, expr.HasCalendarDate)
	assert.Equal(t, 5, expr.Day)
	assert.Equal(t, 14, expr.Hour)
}

func TestParse_Unrecognized(t *testing.T) {
	now, loc := omskNow(t)
	p := NewParser(loc)

	for _, text := range []string{"привет", "хочу на тренировку", ""} {
		_, ok := p.Parse(text, now)
		assert.False(t, ok, "text %q", text)
	}
}

func TestExtractClockTime(t *testing.T) {
	tests := []struct {
		text   string
		hour   int
		minute int
		ok     bool
	}{
		{"завтра в 9", 9, 0, true},
		{"завтра в 18:30", 18, 30, true},
		{"завтра 7:15", 7, 15, true},
		{"завтра в 99", 23, 0, true}, // clamped
		{"завтра", 0, 0, false},
		{"в 2025 году", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			hour, minute, ok := extractClockTime(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.hour, hour)
				assert.Equal(t, tt.minute, minute)
			}
		})
	}
}
