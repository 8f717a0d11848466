package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
)

const (
	EventAppointmentBooked        = "appointment.booked"
	EventAppointmentStatusChanged = "appointment.status_changed"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       string          `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// AppointmentEvent is the payload published for appointment events.
type AppointmentEvent struct {
	AppointmentID  uuid.UUID         `json:"appointment_id"`
	ClinicID       uuid.UUID         `json:"clinic_id"`
	ProfessionalID uuid.UUID         `json:"professional_id"`
	PatientID      uuid.UUID         `json:"patient_id"`
	StartsAt       time.Time         `json:"starts_at"`
	EndsAt         time.Time         `json:"ends_at"`
	Status         AppointmentStatus `json:"status"`
	PreviousStatus AppointmentStatus `json:"previous_status,omitempty"`
}

func NewAppointmentEvent(eventType string, apt *Appointment, previous AppointmentStatus) (*OutboxEvent, error) {
	payload, err := json.Marshal(AppointmentEvent{
		AppointmentID:  apt.ID,
		ClinicID:       apt.ClinicID,
		ProfessionalID: apt.ProfessionalID,
		PatientID:      apt.PatientID,
		StartsAt:       apt.StartsAt,
		EndsAt:         apt.EndsAt,
		Status:         apt.Status,
		PreviousStatus: previous,
	})
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payload,
		Status:    string(OutboxStatusPending),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
