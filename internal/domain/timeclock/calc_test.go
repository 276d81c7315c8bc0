package timeclock

import (
	"math"
	"testing"
	"time"
)

func TestTotalHours(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		clockOut time.Time
		want     float64
	}{
		{"standard day", base.Add(8*time.Hour + 30*time.Minute), 8.5},
		{"two seconds", base.Add(2 * time.Second), 2.0 / 3600},
		{"past midnight", base.Add(24*time.Hour + 5*time.Minute), 24 + 5.0/60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TotalHours(base, tt.clockOut)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("TotalHours = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTotalHoursNeverRoundsToZero(t *testing.T) {
	base := time.Now()
	got := TotalHours(base, base.Add(2*time.Second))
	if got <= 0 {
		t.Errorf("a 2 second shift must record positive hours, got %v", got)
	}
	if got >= 0.001 {
		t.Errorf("a 2 second shift should be well under 0.001 hours, got %v", got)
	}
}

func TestWorkDate(t *testing.T) {
	oslo, err := time.LoadLocation("Europe/Oslo")
	if err != nil {
		t.Fatal(err)
	}

	// 23:30 local on the 10th, stored as UTC.
	clockIn := time.Date(2026, 3, 10, 22, 30, 0, 0, time.UTC)
	if got := WorkDate(clockIn, oslo); got != "2026-03-10" {
		t.Errorf("WorkDate = %q, want 2026-03-10", got)
	}

	// 00:30 local on the 11th is still the 10th in UTC.
	clockIn = time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	if got := WorkDate(clockIn, oslo); got != "2026-03-11" {
		t.Errorf("WorkDate = %q, want 2026-03-11", got)
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{5 * time.Minute, "0:05"},
		{59 * time.Minute, "0:59"},
		{8*time.Hour + 30*time.Minute, "8:30"},
		{25*time.Hour + 4*time.Minute, "25:04"},
		{-time.Minute, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.d); got != tt.want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestParseWallClock(t *testing.T) {
	valid := []string{"00:00", "09:30", "23:59"}
	for _, s := range valid {
		if err := ParseWallClock(s); err != nil {
			t.Errorf("ParseWallClock(%q) = %v, want nil", s, err)
		}
	}

	invalid := []string{"", "9:30", "24:00", "12:60", "noon", "12:3a", "1a:30", "12-30"}
	for _, s := range invalid {
		if err := ParseWallClock(s); err == nil {
			t.Errorf("ParseWallClock(%q) = nil, want error", s)
		}
	}
}
