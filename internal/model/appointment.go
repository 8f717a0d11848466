package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusScheduled: {AppointmentStatusConfirmed, AppointmentStatusCancelled, AppointmentStatusNoShow},
	AppointmentStatusConfirmed: {AppointmentStatusCompleted},
}

// Valid reports whether s is a known status.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed, AppointmentStatusCancelled,
		AppointmentStatusCompleted, AppointmentStatusNoShow:
		return true
	}
	return false
}

// CanTransitionTo reports whether an appointment may move from s to next.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Appointment struct {
	Base
	ClinicID       uuid.UUID         `db:"clinic_id" json:"clinic_id"`
	ProfessionalID uuid.UUID         `db:"professional_id" json:"professional_id"`
	PatientID      uuid.UUID         `db:"patient_id" json:"patient_id"`
	StartsAt       time.Time         `db:"starts_at" json:"starts_at"`
	EndsAt         time.Time         `db:"ends_at" json:"ends_at"`
	Status         AppointmentStatus `db:"status" json:"status"`
	Notes          string            `db:"notes" json:"notes,omitempty"`
}

// BookedRange is the absolute interval occupied by a non-cancelled
// appointment.
type BookedRange struct {
	StartsAt time.Time
	EndsAt   time.Time
}

// BookingRequest carries everything CreateBooking needs. The date and start
// time are local to the clinic timezone.
type BookingRequest struct {
	ClinicID       uuid.UUID
	ProfessionalID uuid.UUID
	PatientID      uuid.UUID
	Date           string
	StartTime      string
	Notes          string
}

type CreateAppointmentRequest struct {
	ProfessionalID string `json:"professional_id" validate:"required,uuid"`
	PatientID      string `json:"patient_id" validate:"required,uuid"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime      string `json:"start_time" validate:"required,hhmm"`
	Notes          string `json:"notes" validate:"max=1000"`
}

type UpdateAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status" validate:"required,oneof=scheduled confirmed cancelled completed no_show"`
}
