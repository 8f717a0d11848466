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

type availabilityRepository struct {
	BaseRepository
}

func NewAvailabilityRepository(base BaseRepository) repository.AvailabilityRepository {
	return &availabilityRepository{base}
}

const selectWeeklyAvailability = `
	SELECT id, professional_id, weekday,
		   to_char(start_time, 'HH24:MI') AS start_time,
		   to_char(end_time, 'HH24:MI') AS end_time,
		   active
	FROM weekly_availability
	WHERE professional_id = $1
	ORDER BY weekday, start_time
`

func (r *availabilityRepository) Get(ctx context.Context, professionalID uuid.UUID) (slots []model.WeeklyAvailabilitySlot, err error) {
	start := time.Now()
	defer func() { r.observe("weekly_availability.get", start, err) }()

	if err := r.db.SelectContext(ctx, &slots, selectWeeklyAvailability, professionalID); err != nil {
		return nil, apperrors.Persistence("get weekly availability", err)
	}

	// Reject corrupt rows here rather than letting them reach the generator.
	for _, s := range slots {
		if verr := s.Validate(); verr != nil {
			return nil, apperrors.Validation("weekly availability row %s is invalid: %s", s.ID, verr.Error())
		}
	}
	if slots == nil {
		slots = []model.WeeklyAvailabilitySlot{}
	}
	return slots, nil
}

func (r *availabilityRepository) ReplaceAll(ctx context.Context, professionalID uuid.UUID, slots []model.WeeklyAvailabilitySlot) (err error) {
	start := time.Now()
	defer func() { r.observe("weekly_availability.replace_all", start, err) }()

	for _, s := range slots {
		if verr := s.Validate(); verr != nil {
			return verr
		}
	}

	err = r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM weekly_availability WHERE professional_id = $1`, professionalID); err != nil {
			return err
		}

		query := `
			INSERT INTO weekly_availability (
				id, professional_id, weekday, start_time, end_time, active
			) VALUES ($1, $2, $3, $4, $5, $6)
		`
		for _, s := range slots {
			id := s.ID
			if id == uuid.Nil {
				id = uuid.New()
			}
			if _, err := tx.ExecContext(ctx, query,
				id, professionalID, s.Weekday, s.StartTime, s.EndTime, s.Active); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.Persistence("replace weekly availability", err)
	}
	return nil
}
