package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// MinutesPerDay is the length of a schedule day in minutes.
const MinutesPerDay = 24 * 60

// Clock is a canonical time-of-day value.
type Clock struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Minutes returns minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// HourFraction returns the hour as a fraction, e.g. 09:30 -> 9.5. Rule
// time windows are expressed in these units.
func (c Clock) HourFraction() float64 {
	return float64(c.Hour) + float64(c.Minute)/60
}

// FromMinutes builds a Clock from minutes since midnight, modulo one day.
func FromMinutes(minutes int) Clock {
	minutes %= MinutesPerDay
	if minutes < 0 {
		minutes += MinutesPerDay
	}
	return Clock{Hour: minutes / 60, Minute: minutes % 60}
}

var clockLayouts = []string{"15:04:05", "15:04", "3:04 PM", "3:04PM", "03:04 PM"}

// ParseClock canonicalises a value of unknown shape into a Clock. Supported
// shapes: Clock, *Clock, time.Time, clock text ("HH:MM", "HH:MM:SS",
// "h:mm AM/PM", RFC3339), a numeric fraction of a day in [0,1), or numeric
// minutes since midnight. Unparseable input reports ok=false; callers must
// treat that as "no value", never as midnight.
func ParseClock(v interface{}) (Clock, bool) {
	switch val := v.(type) {
	case nil:
		return Clock{}, false
	case Clock:
		return val, true
	case *Clock:
		if val == nil {
			return Clock{}, false
		}
		return *val, true
	case time.Time:
		if val.IsZero() {
			return Clock{}, false
		}
		return Clock{Hour: val.Hour(), Minute: val.Minute()}, true
	case string:
		return parseClockString(val)
	case float64:
		return clockFromNumber(val)
	case float32:
		return clockFromNumber(float64(val))
	case int:
		return clockFromNumber(float64(val))
	case int64:
		return clockFromNumber(float64(val))
	default:
		return Clock{}, false
	}
}

// ToMinutes canonicalises a value of unknown shape into minutes since
// midnight (0..1439). The ok flag follows ParseClock semantics.
func ToMinutes(v interface{}) (int, bool) {
	c, ok := ParseClock(v)
	if !ok {
		return 0, false
	}
	return c.Minutes(), true
}

func parseClockString(raw string) (Clock, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Clock{}, false
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(raw)); err == nil {
			return Clock{Hour: t.Hour(), Minute: t.Minute()}, true
		}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return Clock{Hour: t.Hour(), Minute: t.Minute()}, true
	}
	return Clock{}, false
}

func clockFromNumber(val float64) (Clock, bool) {
	if val < 0 {
		return Clock{}, false
	}
	// Values below 1 are a fraction of a day (spreadsheet serial time),
	// anything else is minutes since midnight.
	if val < 1 {
		return FromMinutes(int(val*MinutesPerDay + 0.5)), true
	}
	if val >= MinutesPerDay {
		return Clock{}, false
	}
	return FromMinutes(int(val)), true
}

// FromTime extracts the clock-of-day from a wall time.
func FromTime(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute()}
}

// FormatMinutes renders minutes since midnight as "h:mm AM/PM".
func FormatMinutes(minutes int) string {
	return Format12Hour(FromMinutes(minutes))
}

// Format12Hour renders a Clock as "h:mm AM/PM" with 12-hour wraparound.
func Format12Hour(c Clock) string {
	suffix := "AM"
	hour := c.Hour
	if hour >= 12 {
		suffix = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, c.Minute, suffix)
}

// NormalizeWindow applies the wrap-at-midnight rule: an end before the
// start is interpreted as crossing midnight.
func NormalizeWindow(startMin, endMin int) (int, int) {
	if endMin < startMin {
		endMin += MinutesPerDay
	}
	return startMin, endMin
}

// Overlaps reports whether two half-open minute windows intersect after
// midnight-wrap normalisation.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	aStart, aEnd = NormalizeWindow(aStart, aEnd)
	bStart, bEnd = NormalizeWindow(bStart, bEnd)
	return !(aEnd <= bStart || aStart >= bEnd)
}

// Contains reports whether a minute of day falls inside a half-open,
// midnight-wrap-normalised window.
func Contains(startMin, endMin, minute int) bool {
	startMin, endMin = NormalizeWindow(startMin, endMin)
	if minute >= startMin && minute < endMin {
		return true
	}
	// The window may wrap past midnight while the probe minute is on the
	// next calendar day.
	wrapped := minute + MinutesPerDay
	return wrapped >= startMin && wrapped < endMin
}

var dayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekdayIndex maps a time to the 0=Monday..6=Sunday convention used by
// weekly-off sets.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// DayName returns the display name for a 0=Monday..6=Sunday index.
func DayName(idx int) string {
	if idx < 0 || idx >= len(dayNames) {
		return ""
	}
	return dayNames[idx]
}
