package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClockShapes(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  Clock
		ok    bool
	}{
		{"clock value", Clock{Hour: 9, Minute: 30}, Clock{Hour: 9, Minute: 30}, true},
		{"hh:mm", "09:30", Clock{Hour: 9, Minute: 30}, true},
		{"hh:mm:ss", "14:05:59", Clock{Hour: 14, Minute: 5}, true},
		{"12 hour", "2:15 PM", Clock{Hour: 14, Minute: 15}, true},
		{"fraction of day", 0.5, Clock{Hour: 12, Minute: 0}, true},
		{"minutes since midnight", 605, Clock{Hour: 10, Minute: 5}, true},
		{"time value", time.Date(2025, 3, 10, 16, 45, 0, 0, time.UTC), Clock{Hour: 16, Minute: 45}, true},
		{"garbage", "half past nine", Clock{}, false},
		{"empty string", "", Clock{}, false},
		{"nil", nil, Clock{}, false},
		{"negative number", -5, Clock{}, false},
		{"too many minutes", 2000, Clock{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseClock(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestFormat12Hour(t *testing.T) {
	assert.Equal(t, "12:00 AM", Format12Hour(Clock{Hour: 0}))
	assert.Equal(t, "12:30 PM", Format12Hour(Clock{Hour: 12, Minute: 30}))
	assert.Equal(t, "1:05 PM", Format12Hour(Clock{Hour: 13, Minute: 5}))
	assert.Equal(t, "11:59 PM", Format12Hour(Clock{Hour: 23, Minute: 59}))
	assert.Equal(t, "9:00 AM", Format12Hour(Clock{Hour: 9}))
}

func TestOverlapsSymmetry(t *testing.T) {
	windows := [][2]int{
		{9 * 60, 10 * 60},
		{9*60 + 30, 11 * 60},
		{23 * 60, 1 * 60}, // wraps midnight
		{0, 30},
		{10 * 60, 10 * 60},
	}

	for _, a := range windows {
		for _, b := range windows {
			assert.Equal(t, Overlaps(a[0], a[1], b[0], b[1]), Overlaps(b[0], b[1], a[0], a[1]),
				"overlap must be symmetric for %v vs %v", a, b)
		}
	}

	// Any non-empty window overlaps itself.
	for _, w := range windows {
		if w[0] != w[1] {
			assert.True(t, Overlaps(w[0], w[1], w[0], w[1]))
		}
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	// Touching endpoints do not conflict.
	assert.False(t, Overlaps(9*60, 10*60, 10*60, 11*60))
	assert.True(t, Overlaps(9*60, 10*60+1, 10*60, 11*60))
}

func TestOverlapsMidnightWrap(t *testing.T) {
	// 23:00-01:00 runs past midnight and collides with 00:30-00:45.
	require.True(t, Overlaps(23*60, 1*60, 23*60+30, 23*60+45))
	assert.False(t, Overlaps(23*60, 1*60, 2*60, 3*60))
}

func TestContains(t *testing.T) {
	assert.True(t, Contains(9*60, 10*60, 9*60))
	assert.False(t, Contains(9*60, 10*60, 10*60))
	assert.True(t, Contains(23*60, 1*60, 10)) // 00:10 during a wrapped window
}

func TestWeekdayIndex(t *testing.T) {
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, WeekdayIndex(monday))
	assert.Equal(t, 6, WeekdayIndex(monday.AddDate(0, 0, 6)))
	assert.Equal(t, "Sunday", DayName(6))
	assert.Equal(t, "", DayName(7))
}
