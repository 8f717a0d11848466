package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/repository"
	apperrors "github.com/jwalitptl/scheduling-api/pkg/errors"
)

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

const appointmentColumns = `
	id, clinic_id, professional_id, patient_id,
	starts_at, ends_at, status, notes,
	created_at, updated_at
`

func (r *appointmentRepository) ListByProfessionalAndDateRange(ctx context.Context, professionalID uuid.UUID, rangeStart, rangeEnd time.Time) (appointments []*model.Appointment, err error) {
	start := time.Now()
	defer func() { r.observe("appointments.list_range", start, err) }()

	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE professional_id = $1
		AND starts_at < $3
		AND ends_at > $2
		ORDER BY starts_at
	`
	if err := r.db.SelectContext(ctx, &appointments, query, professionalID, rangeStart, rangeEnd); err != nil {
		return nil, apperrors.Persistence("list appointments", err)
	}
	for _, apt := range appointments {
		if verr := validateRow(apt); verr != nil {
			return nil, verr
		}
	}
	return appointments, nil
}

// Insert writes the appointment and its appointment.booked outbox event in
// one transaction. The partial unique index on (professional_id, starts_at)
// and the overlap exclusion constraint decide concurrent bookings.
func (r *appointmentRepository) Insert(ctx context.Context, apt *model.Appointment) (err error) {
	start := time.Now()
	defer func() { r.observe("appointments.insert", start, err) }()

	event, err := model.NewAppointmentEvent(model.EventAppointmentBooked, apt, "")
	if err != nil {
		return apperrors.Persistence("encode appointment event", err)
	}

	err = r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO appointments (` + appointmentColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		if _, err := tx.ExecContext(ctx, query,
			apt.ID,
			apt.ClinicID,
			apt.ProfessionalID,
			apt.PatientID,
			apt.StartsAt,
			apt.EndsAt,
			apt.Status,
			apt.Notes,
			apt.CreatedAt,
			apt.UpdatedAt,
		); err != nil {
			return err
		}
		return insertOutboxEvent(ctx, tx, event)
	})
	if err != nil {
		if isConflict(err) {
			return apperrors.SlotConflict("the selected time is no longer available", err)
		}
		return apperrors.Persistence("create appointment", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (apt *model.Appointment, err error) {
	start := time.Now()
	defer func() { r.observe("appointments.get", start, err) }()

	var row model.Appointment
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, translate("get appointment", "appointment", err)
	}
	if err := validateRow(&row); err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateStatus moves the appointment to apt.Status, provided it is still in
// previous, and records an appointment.status_changed event. A concurrent
// change in between yields InvalidTransition.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, apt *model.Appointment, previous model.AppointmentStatus) (err error) {
	start := time.Now()
	defer func() { r.observe("appointments.update_status", start, err) }()

	event, err := model.NewAppointmentEvent(model.EventAppointmentStatusChanged, apt, previous)
	if err != nil {
		return apperrors.Persistence("encode appointment event", err)
	}

	err = r.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE appointments
			SET status = $1, updated_at = $2
			WHERE id = $3 AND status = $4
		`, apt.Status, apt.UpdatedAt, apt.ID, previous)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return apperrors.InvalidTransition(string(previous), string(apt.Status))
		}
		return insertOutboxEvent(ctx, tx, event)
	})
	if err != nil {
		if isConflict(err) {
			return apperrors.SlotConflict("the appointment's time is no longer available", err)
		}
		return translate("update appointment status", "appointment", err)
	}
	return nil
}

func validateRow(apt *model.Appointment) error {
	if !apt.Status.Valid() {
		return apperrors.Validation("appointment %s has unknown status %q", apt.ID, apt.Status)
	}
	if !apt.StartsAt.Before(apt.EndsAt) {
		return apperrors.Validation("appointment %s ends before it starts", apt.ID)
	}
	return nil
}
