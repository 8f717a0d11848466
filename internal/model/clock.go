package model

import (
	"fmt"
	"time"

	apperrors "github.com/jwalitptl/scheduling-api/pkg/errors"
)

const minutesPerDay = 24 * 60

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil || len(s) != len(ClockLayout) {
		return 0, apperrors.Validation("invalid time %q: expected HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate parses a "YYYY-MM-DD" calendar date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, apperrors.Validation("invalid date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}

// At returns the instant at the given wall-clock minute on date's calendar
// day in loc.
func At(date time.Time, minutes int, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, loc)
}

// ExistsAt reports whether the wall-clock minute occurs on date's calendar
// day in loc. Times skipped by a forward DST shift do not.
func ExistsAt(date time.Time, minutes int, loc *time.Location) bool {
	t := At(date, minutes, loc)
	return t.Day() == date.Day() && t.Hour()*60+t.Minute() == minutes
}

// Validate checks a weekly slot's shape: weekday in 0..6, well-formed
// times and start strictly before end.
func (s WeeklyAvailabilitySlot) Validate() error {
	if s.Weekday < 0 || s.Weekday > 6 {
		return apperrors.Validation("weekday must be between 0 and 6, got %d", s.Weekday)
	}
	start, err := ParseClock(s.StartTime)
	if err != nil {
		return err
	}
	end, err := ParseClock(s.EndTime)
	if err != nil {
		return err
	}
	if start >= end {
		return apperrors.Validation("start_time %s must be before end_time %s", s.StartTime, s.EndTime)
	}
	return nil
}

// Window returns the slot's bounds in minutes since midnight.
func (s WeeklyAvailabilitySlot) Window() (start, end int, err error) {
	if err = s.Validate(); err != nil {
		return 0, 0, err
	}
	start, _ = ParseClock(s.StartTime)
	end, _ = ParseClock(s.EndTime)
	return start, end, nil
}
