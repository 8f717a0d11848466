package model

import (
	"github.com/google/uuid"
)

// WeeklyAvailabilitySlot is a recurring weekly window during which a
// professional accepts bookings. Times are local wall-clock HH:MM in the
// clinic's timezone; Weekday follows time.Weekday (0 = Sunday).
type WeeklyAvailabilitySlot struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ProfessionalID uuid.UUID `db:"professional_id" json:"professional_id"`
	Weekday        int       `db:"weekday" json:"weekday"`
	StartTime      string    `db:"start_time" json:"start_time"`
	EndTime        string    `db:"end_time" json:"end_time"`
	Active         bool      `db:"active" json:"active"`
}

// WeeklySlotInput is one entry of a replace-all request.
type WeeklySlotInput struct {
	Weekday   *int   `json:"weekday" validate:"required,min=0,max=6"`
	StartTime string `json:"start_time" validate:"required,hhmm"`
	EndTime   string `json:"end_time" validate:"required,hhmm"`
	Active    *bool  `json:"active"`
}

type ReplaceWeeklyAvailabilityRequest struct {
	Slots []WeeklySlotInput `json:"slots" validate:"dive"`
}

// CandidateSlot is one bookable start time for a specific date.
type CandidateSlot struct {
	StartTime string `json:"start_time"`
	Booked    bool   `json:"booked"`
}

// AvailabilityResult is what the availability endpoint returns.
type AvailabilityResult struct {
	ProfessionalID      uuid.UUID       `json:"professional_id"`
	Date                string          `json:"date"`
	Timezone            string          `json:"timezone"`
	SlotDurationMinutes int             `json:"slot_duration_minutes"`
	Slots               []CandidateSlot `json:"slots"`
}
