package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/scheduling-api/internal/model"
)

// All repository interfaces in one file
type (
	// AvailabilityRepository stores each professional's weekly availability
	// as a whole set.
	AvailabilityRepository interface {
		// Get returns the professional's slots ordered by weekday, then start time.
		Get(ctx context.Context, professionalID uuid.UUID) ([]model.WeeklyAvailabilitySlot, error)
		// ReplaceAll atomically swaps the professional's whole set for slots.
		ReplaceAll(ctx context.Context, professionalID uuid.UUID, slots []model.WeeklyAvailabilitySlot) error
	}

	AppointmentRepository interface {
		// ListByProfessionalAndDateRange returns every appointment, whatever its
		// status, that overlaps [rangeStart, rangeEnd).
		ListByProfessionalAndDateRange(ctx context.Context, professionalID uuid.UUID, rangeStart, rangeEnd time.Time) ([]*model.Appointment, error)
		// Insert persists a new appointment. A start time already held by a
		// non-cancelled appointment fails with a SlotConflict error.
		Insert(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		UpdateStatus(ctx context.Context, appointment *model.Appointment, previous model.AppointmentStatus) error
	}

	ClinicRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
	}

	ProfessionalRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Professional, error)
	}

	OutboxRepository interface {
		// ProcessPending locks up to limit pending events, hands each to fn and
		// records the outcome, all in one transaction.
		ProcessPending(ctx context.Context, limit, maxAttempts int, fn func(*model.OutboxEvent) error) (processed, failed int, err error)
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
