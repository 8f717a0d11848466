package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/repository"
	apperrors "github.com/jwalitptl/scheduling-api/pkg/errors"
	"github.com/jwalitptl/scheduling-api/pkg/logger"
	"github.com/jwalitptl/scheduling-api/pkg/metrics"
)

// MaxListRange bounds a single appointment listing.
const MaxListRange = 31 * 24 * time.Hour

type Service struct {
	repo    repository.AppointmentRepository
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(repo repository.AppointmentRepository, log *logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:    repo,
		logger:  log,
		metrics: m,
		now:     time.Now,
	}
}

func (s *Service) Get(ctx context.Context, caller model.Caller, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccessAppointment(apt) {
		// Same answer as a missing row so IDs cannot be probed.
		return nil, apperrors.NotFound("appointment", nil)
	}
	return apt, nil
}

// ListForProfessional returns the professional's appointments overlapping
// [from, to), cancelled ones included.
func (s *Service) ListForProfessional(ctx context.Context, caller model.Caller, professionalID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	if !caller.CanManageSchedule(professionalID) {
		return nil, apperrors.Forbidden("not allowed to list this professional's appointments")
	}
	if !from.Before(to) {
		return nil, apperrors.Validation("from must be before to")
	}
	if to.Sub(from) > MaxListRange {
		return nil, apperrors.Validation("range must not exceed %d days", int(MaxListRange.Hours()/24))
	}

	appointments, err := s.repo.ListByProfessionalAndDateRange(ctx, professionalID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Appointment, 0, len(appointments))
	for _, apt := range appointments {
		if caller.InClinic(apt.ClinicID) {
			out = append(out, apt)
		}
	}
	return out, nil
}

// UpdateStatus moves an appointment along the status machine. Patients may
// only cancel their own appointments.
func (s *Service) UpdateStatus(ctx context.Context, caller model.Caller, id uuid.UUID, next model.AppointmentStatus) (*model.Appointment, error) {
	if !next.Valid() {
		return nil, apperrors.Validation("unknown status %q", next)
	}

	apt, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if caller.Role == model.RolePatient && next != model.AppointmentStatusCancelled {
		return nil, apperrors.Forbidden("patients may only cancel appointments")
	}

	previous := apt.Status
	if !previous.CanTransitionTo(next) {
		return nil, apperrors.InvalidTransition(string(previous), string(next))
	}

	updated := *apt
	updated.Status = next
	updated.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, &updated, previous); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(previous), string(next)).Inc()
	}
	s.logger.Info("appointment status changed",
		"appointment_id", updated.ID.String(),
		"from", string(previous),
		"to", string(next),
		"caller_id", caller.UserID.String())
	return &updated, nil
}
