package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	ts := time.Date(2024, 3, 15, 23, 59, 30, 0, loc)
	got := StartOfDay(ts)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())
}

func TestEndOfDayBoundary(t *testing.T) {
	ts := time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local)
	end := EndOfDay(ts)
	assert.True(t, SameDay(ts, end))
	assert.False(t, SameDay(ts, end.Add(time.Nanosecond)))
}

func TestSameDayAcrossMidnight(t *testing.T) {
	// 11:59pm and 12:01am the same local night are different days
	before := time.Date(2024, 6, 1, 23, 59, 0, 0, time.Local)
	after := time.Date(2024, 6, 2, 0, 1, 0, 0, time.Local)
	assert.False(t, SameDay(before, after))
	assert.Equal(t, 1, DaysBetween(before, after))
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{
			"same instant",
			time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
			0,
		},
		{
			"same day different times",
			time.Date(2024, 1, 10, 0, 5, 0, 0, time.UTC),
			time.Date(2024, 1, 10, 23, 55, 0, 0, time.UTC),
			0,
		},
		{
			"forward a week",
			time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 17, 1, 0, 0, 0, time.UTC),
			7,
		},
		{
			"backward",
			time.Date(2024, 1, 10, 1, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 8, 23, 0, 0, 0, time.UTC),
			-2,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DaysBetween(tc.a, tc.b))
		})
	}
}

func TestDaysBetweenAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2024-03-10 is the spring-forward date: the local day is 23 hours
	before := time.Date(2024, 3, 9, 12, 0, 0, 0, loc)
	after := time.Date(2024, 3, 11, 12, 0, 0, 0, loc)
	assert.Equal(t, 2, DaysBetween(before, after))
}

func TestDayKeyCollapsesTimes(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	morning := time.Date(2024, 3, 10, 1, 0, 0, 0, loc)
	night := time.Date(2024, 3, 10, 23, 0, 0, 0, loc)
	assert.Equal(t, DayKey(morning), DayKey(night))
}

func TestAddDays(t *testing.T) {
	ts := time.Date(2024, 2, 27, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 2, 29, 9, 30, 0, 0, time.UTC), AddDays(ts, 2)) // leap year
	assert.Equal(t, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC), AddDays(ts, 3))
}
