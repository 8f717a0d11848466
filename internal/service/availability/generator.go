package availability

import (
	"sort"
	"time"

	"github.com/jwalitptl/scheduling-api/internal/model"
	apperrors "github.com/jwalitptl/scheduling-api/pkg/errors"
)

// Generate returns the candidate start times ("HH:MM") offered on date by
// the active weekly slots for date's weekday. A candidate is emitted only
// when the whole slot fits inside its window.
//
// Overlapping windows on the same weekday would produce the same start time
// more than once; the result is deduplicated by start time and sorted
// ascending so a bookable minute is never listed twice.
func Generate(slots []model.WeeklyAvailabilitySlot, date time.Time, slotDurationMinutes int) ([]string, error) {
	if slotDurationMinutes <= 0 {
		return nil, apperrors.Validation("slot duration must be positive, got %d", slotDurationMinutes)
	}

	weekday := int(date.Weekday())
	seen := make(map[int]struct{})
	starts := make([]int, 0)

	for _, slot := range slots {
		if !slot.Active || slot.Weekday != weekday {
			continue
		}
		windowStart, windowEnd, err := slot.Window()
		if err != nil {
			return nil, err
		}
		for m := windowStart; m+slotDurationMinutes <= windowEnd; m += slotDurationMinutes {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			starts = append(starts, m)
		}
	}

	sort.Ints(starts)

	out := make([]string, len(starts))
	for i, m := range starts {
		out[i] = model.FormatClock(m)
	}
	return out, nil
}
