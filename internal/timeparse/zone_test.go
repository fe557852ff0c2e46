package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestOffsetMinutes_DST(t *testing.T) {
	berlin := mustZone(t, "Europe/Berlin")

	january := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	july := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 60, OffsetMinutes(january, berlin))
	assert.Equal(t, 120, OffsetMinutes(july, berlin))
}

func TestOffsetMinutes_FixedZone(t *testing.T) {
	omsk := mustZone(t, "Asia/Omsk")

	january := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	july := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 360, OffsetMinutes(january, omsk))
	assert.Equal(t, 360, OffsetMinutes(july, omsk))
}

func TestProject(t *testing.T) {
	omsk := mustZone(t, "Asia/Omsk")

	instant := time.Date(2025, 10, 4, 4, 30, 15, 0, time.UTC)
	civil := Project(instant, omsk)

	assert.Equal(t, CivilTime{Year: 2025, Month: time.October, Day: 4, Hour: 10, Minute: 30, Second: 15}, civil)
}

func TestUnproject(t *testing.T) {
	t.Run("FixedZone", func(t *testing.T) {
		omsk := mustZone(t, "Asia/Omsk")
		civil := CivilTime{Year: 2025, Month: time.October, Day: 5, Hour: 9}

		instant := Unproject(civil, omsk)

		assert.Equal(t, time.Date(2025, 10, 5, 3, 0, 0, 0, time.UTC), instant.UTC())
	})

	t.Run("SummerOffset", func(t *testing.T) {
		berlin := mustZone(t, "Europe/Berlin")
		civil := CivilTime{Year: 2025, Month: time.July, Day: 15, Hour: 12}

		instant := Unproject(civil, berlin)

		assert.Equal(t, time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC), instant.UTC())
	})

	t.Run("WinterOffset", func(t *testing.T) {
		berlin := mustZone(t, "Europe/Berlin")
		civil := CivilTime{Year: 2025, Month: time.January, Day: 15, Hour: 12}

		instant := Unproject(civil, berlin)

		assert.Equal(t, time.Date(2025, 1, 15, 11, 0, 0, 0, time.UTC), instant.UTC())
	})
}

func TestProjectUnproject_RoundTrip(t *testing.T) {
	zones := []string{"Asia/Omsk", "Europe/Berlin", "America/New_York"}
	instants := []time.Time{
		time.Date(2025, 1, 10, 6, 15, 30, 0, time.UTC),
		time.Date(2025, 6, 21, 18, 45, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
	}

	for _, name := range zones {
		loc := mustZone(t, name)
		for _, instant := range instants {
			got := Unproject(Project(instant, loc), loc)
			assert.True(t, got.Equal(instant), "zone %s instant %s got %s", name, instant, got)
		}
	}
}

func TestCivilTime_Formatting(t *testing.T) {
	civil := CivilTime{Year: 2025, Month: time.October, Day: 5, Hour: 9, Minute: 3, Second: 7}

	assert.Equal(t, "2025-10-05T09:03:07", civil.Canonical())
	assert.Equal(t, "05.10.2025", civil.Display())
}

func TestFormatOffset(t *testing.T) {
	omsk := mustZone(t, "Asia/Omsk")
	instant := time.Date(2025, 10, 5, 3, 0, 0, 0, time.UTC)

	assert.Equal(t, "2025-10-05T09:00:00+06:00", FormatOffset(instant, omsk))
}

func TestSameSlot(t *testing.T) {
	omsk := mustZone(t, "Asia/Omsk")

	t.Run("ExactMatch", func(t *testing.T) {
		assert.True(t, SameSlot("2025-10-05T09:00:00", "2025-10-05T09:00:00", omsk))
	})

	t.Run("WithinTolerance", func(t *testing.T) {
		assert.True(t, SameSlot("2025-10-05T09:00:00", "2025-10-05T09:04:00", omsk))
	})

	t.Run("AtTolerance", func(t *testing.T) {
		assert.False(t, SameSlot("2025-10-05T09:00:00", "2025-10-05T09:05:00", omsk))
	})

	t.Run("UnparseableOnlyExact", func(t *testing.T) {
		assert.True(t, SameSlot("пятница", "пятница", omsk))
		assert.False(t, SameSlot("пятница", "2025-10-05T09:00:00", omsk))
	})
}
