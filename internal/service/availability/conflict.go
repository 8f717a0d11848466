package availability

import (
	"time"

	"github.com/jwalitptl/scheduling-api/internal/model"
	apperrors "github.com/jwalitptl/scheduling-api/pkg/errors"
)

// CandidateInterval returns the absolute interval [start, start+duration)
// of a candidate start time on date in loc.
func CandidateInterval(date time.Time, startTime string, slotDurationMinutes int, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		return time.Time{}, time.Time{}, apperrors.Validation("timezone is required")
	}
	if slotDurationMinutes <= 0 {
		return time.Time{}, time.Time{}, apperrors.Validation("slot duration must be positive, got %d", slotDurationMinutes)
	}
	minutes, err := model.ParseClock(startTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := model.At(date, minutes, loc)
	return start, start.Add(time.Duration(slotDurationMinutes) * time.Minute), nil
}

// DropSkippedTimes removes candidates whose wall-clock time does not exist
// on date in loc, such as 02:30 on a spring-forward day. time.Date would
// otherwise move them onto the instant of a later candidate.
func DropSkippedTimes(candidates []string, date time.Time, loc *time.Location) ([]string, error) {
	if loc == nil {
		return nil, apperrors.Validation("timezone is required")
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		minutes, err := model.ParseClock(c)
		if err != nil {
			return nil, err
		}
		if model.ExistsAt(date, minutes, loc) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Overlaps is strict half-open interval overlap.
func Overlaps(start, end time.Time, booked model.BookedRange) bool {
	return start.Before(booked.EndsAt) && end.After(booked.StartsAt)
}

// MarkBooked annotates each candidate with whether its full interval
// overlaps any booked range. Callers must already have dropped cancelled
// appointments from booked.
func MarkBooked(candidates []string, booked []model.BookedRange, date time.Time, slotDurationMinutes int, loc *time.Location) ([]model.CandidateSlot, error) {
	out := make([]model.CandidateSlot, 0, len(candidates))
	for _, c := range candidates {
		start, end, err := CandidateInterval(date, c, slotDurationMinutes, loc)
		if err != nil {
			return nil, err
		}
		slot := model.CandidateSlot{StartTime: c}
		for _, b := range booked {
			if Overlaps(start, end, b) {
				slot.Booked = true
				break
			}
		}
		out = append(out, slot)
	}
	return out, nil
}

// BookedRanges converts appointments into booked ranges, skipping cancelled
// ones.
func BookedRanges(appointments []*model.Appointment) []model.BookedRange {
	ranges := make([]model.BookedRange, 0, len(appointments))
	for _, apt := range appointments {
		if apt == nil || apt.Status == model.AppointmentStatusCancelled {
			continue
		}
		ranges = append(ranges, model.BookedRange{StartsAt: apt.StartsAt, EndsAt: apt.EndsAt})
	}
	return ranges
}

// DayBounds returns the absolute start and end of date's calendar day in loc.
func DayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
