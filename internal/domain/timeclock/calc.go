package timeclock

import (
	"fmt"
	"time"
)

// TotalHours returns the shift length in fractional hours. The value
// is stored unrounded; rounding is a display concern.
func TotalHours(clockIn, clockOut time.Time) float64 {
	return clockOut.Sub(clockIn).Seconds() / 3600
}

// WorkDate resolves the calendar day a shift belongs to. A shift is
// attributed to the day it started, in the tenant's timezone, so a
// closing that crosses midnight still books on the evening it began.
func WorkDate(clockIn time.Time, loc *time.Location) string {
	return clockIn.In(loc).Format("2006-01-02")
}

// FormatElapsed renders a duration as "H:MM". Durations past 24 hours
// keep counting hours rather than rolling over.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int(d/time.Minute) % 60
	return fmt.Sprintf("%d:%02d", hours, minutes)
}

// ParseWallClock validates an "HH:MM" wall-clock string as used for
// the auto clock-out time. The shape is strict: exactly two digits, a
// colon, two digits, so the stored value always matches a formatted
// "15:04" minute.
func ParseWallClock(s string) error {
	if len(s) != 5 || s[2] != ':' {
		return fmt.Errorf("%w: time must be in HH:MM format", ErrValidation)
	}
	if _, err := time.Parse("15:04", s); err != nil {
		return fmt.Errorf("%w: time must be in HH:MM format", ErrValidation)
	}
	return nil
}
