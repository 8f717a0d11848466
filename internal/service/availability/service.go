package availability

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/repository"
	apperrors "github.com/jwalitptl/scheduling-api/pkg/errors"
	"github.com/jwalitptl/scheduling-api/pkg/logger"
	"github.com/jwalitptl/scheduling-api/pkg/metrics"
	appvalidator "github.com/jwalitptl/scheduling-api/pkg/validator"
)

var tracer = otel.Tracer("scheduling.internal.service.availability")

// Service resolves bookable times for a professional and arbitrates new
// bookings. It keeps no state between calls; the appointment store's
// uniqueness constraint is the final word on double booking.
type Service struct {
	availability repository.AvailabilityRepository
	appointments repository.AppointmentRepository
	validate     *validator.Validate
	logger       *logger.Logger
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewService(
	availability repository.AvailabilityRepository,
	appointments repository.AppointmentRepository,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		availability: availability,
		appointments: appointments,
		validate:     appvalidator.New(),
		logger:       log,
		metrics:      m,
		now:          time.Now,
	}
}

// WithClock overrides the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func validateSettings(settings model.ClinicSettings) error {
	if settings.Location == nil {
		return apperrors.Validation("clinic timezone is required")
	}
	if settings.SlotDurationMinutes <= 0 {
		return apperrors.Validation("slot duration must be positive, got %d", settings.SlotDurationMinutes)
	}
	return nil
}

// ListAvailableSlots returns every candidate start time for professionalID
// on date, each marked booked or free. Booked candidates are kept so the
// caller can show them as taken. An empty result means no availability.
func (s *Service) ListAvailableSlots(ctx context.Context, professionalID uuid.UUID, date string, settings model.ClinicSettings) ([]model.CandidateSlot, error) {
	ctx, span := tracer.Start(ctx, "availability.list_slots")
	defer span.End()
	span.SetAttributes(
		attribute.String("scheduling.professional_id", professionalID.String()),
		attribute.String("scheduling.date", date),
	)

	slots, err := s.listAvailableSlots(ctx, professionalID, date, settings)
	if err != nil {
		span.RecordError(err)
		s.observeQuery("error")
		return nil, err
	}
	s.observeQuery("success")
	if s.metrics != nil {
		s.metrics.CandidatesGenerated.Observe(float64(len(slots)))
	}
	return slots, nil
}

func (s *Service) listAvailableSlots(ctx context.Context, professionalID uuid.UUID, date string, settings model.ClinicSettings) ([]model.CandidateSlot, error) {
	if err := validateSettings(settings); err != nil {
		return nil, err
	}
	day, err := model.ParseDate(date, settings.Location)
	if err != nil {
		return nil, err
	}

	weekly, err := s.availability.Get(ctx, professionalID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.candidates(weekly, day, settings)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []model.CandidateSlot{}, nil
	}

	dayStart, dayEnd := DayBounds(day, settings.Location)
	appointments, err := s.appointments.ListByProfessionalAndDateRange(ctx, professionalID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	return MarkBooked(candidates, BookedRanges(appointments), day, settings.SlotDurationMinutes, settings.Location)
}

// candidates generates the start times for day and drops those that the
// clinic's timezone skips.
func (s *Service) candidates(weekly []model.WeeklyAvailabilitySlot, day time.Time, settings model.ClinicSettings) ([]string, error) {
	generated, err := Generate(weekly, day, settings.SlotDurationMinutes)
	if err != nil {
		return nil, err
	}
	return DropSkippedTimes(generated, day, settings.Location)
}

// CreateBooking books req.StartTime on req.Date for the professional. The
// read-then-check here only spares the user a doomed write; two concurrent
// callers can both pass it, and the store's constraint decides.
func (s *Service) CreateBooking(ctx context.Context, req model.BookingRequest, settings model.ClinicSettings) (*model.Appointment, error) {
	ctx, span := tracer.Start(ctx, "availability.create_booking")
	defer span.End()
	span.SetAttributes(
		attribute.String("scheduling.professional_id", req.ProfessionalID.String()),
		attribute.String("scheduling.date", req.Date),
		attribute.String("scheduling.start_time", req.StartTime),
	)

	apt, err := s.createBooking(ctx, req, settings)
	if err != nil {
		span.RecordError(err)
		if apperrors.IsSlotConflict(err) {
			s.logger.Warn("booking rejected: slot taken",
				"professional_id", req.ProfessionalID.String(),
				"date", req.Date,
				"start_time", req.StartTime)
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.BookingsCreated.Inc()
	}
	s.logger.Info("booking created",
		"appointment_id", apt.ID.String(),
		"professional_id", apt.ProfessionalID.String(),
		"starts_at", apt.StartsAt.UTC().Format(time.RFC3339))
	return apt, nil
}

func (s *Service) createBooking(ctx context.Context, req model.BookingRequest, settings model.ClinicSettings) (*model.Appointment, error) {
	if err := validateSettings(settings); err != nil {
		return nil, err
	}
	if req.ProfessionalID == uuid.Nil {
		return nil, apperrors.Validation("professional ID is required")
	}
	if req.PatientID == uuid.Nil {
		return nil, apperrors.Validation("patient ID is required")
	}

	day, err := model.ParseDate(req.Date, settings.Location)
	if err != nil {
		return nil, err
	}
	startsAt, endsAt, err := CandidateInterval(day, req.StartTime, settings.SlotDurationMinutes, settings.Location)
	if err != nil {
		return nil, err
	}
	if !startsAt.After(s.now()) {
		return nil, apperrors.Validation("cannot book %s %s: time is in the past", req.Date, req.StartTime)
	}

	weekly, err := s.availability.Get(ctx, req.ProfessionalID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.candidates(weekly, day, settings)
	if err != nil {
		return nil, err
	}
	if !contains(candidates, req.StartTime) {
		return nil, apperrors.Validation("%s on %s is outside the professional's availability", req.StartTime, req.Date)
	}

	existing, err := s.appointments.ListByProfessionalAndDateRange(ctx, req.ProfessionalID, startsAt, endsAt)
	if err != nil {
		return nil, err
	}
	for _, booked := range BookedRanges(existing) {
		if Overlaps(startsAt, endsAt, booked) {
			s.observeConflict("advisory")
			return nil, apperrors.SlotConflict("the selected time is no longer available", nil)
		}
	}

	now := s.now().UTC()
	apt := &model.Appointment{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClinicID:       settings.ClinicID,
		ProfessionalID: req.ProfessionalID,
		PatientID:      req.PatientID,
		StartsAt:       startsAt.UTC(),
		EndsAt:         endsAt.UTC(),
		Status:         model.AppointmentStatusScheduled,
		Notes:          req.Notes,
	}

	if err := s.appointments.Insert(ctx, apt); err != nil {
		if apperrors.IsSlotConflict(err) {
			s.observeConflict("constraint")
		}
		return nil, err
	}
	return apt, nil
}

// GetWeeklyAvailability returns the professional's weekly slots ordered by
// weekday, then start time.
func (s *Service) GetWeeklyAvailability(ctx context.Context, professionalID uuid.UUID) ([]model.WeeklyAvailabilitySlot, error) {
	ctx, span := tracer.Start(ctx, "availability.get_weekly")
	defer span.End()
	return s.availability.Get(ctx, professionalID)
}

// ReplaceWeeklyAvailability swaps the professional's whole weekly set for
// inputs. An empty set is allowed and means no availability.
func (s *Service) ReplaceWeeklyAvailability(ctx context.Context, caller model.Caller, professionalID uuid.UUID, inputs []model.WeeklySlotInput) ([]model.WeeklyAvailabilitySlot, error) {
	ctx, span := tracer.Start(ctx, "availability.replace_weekly")
	defer span.End()
	span.SetAttributes(
		attribute.String("scheduling.professional_id", professionalID.String()),
		attribute.Int("scheduling.slot_count", len(inputs)),
	)

	if !caller.CanManageSchedule(professionalID) {
		return nil, apperrors.Forbidden("not allowed to manage this professional's schedule")
	}

	slots := make([]model.WeeklyAvailabilitySlot, 0, len(inputs))
	for i, in := range inputs {
		if err := s.validate.Struct(in); err != nil {
			return nil, apperrors.Validation("slot %d: %v", i, describe(err))
		}
		active := true
		if in.Active != nil {
			active = *in.Active
		}
		slot := model.WeeklyAvailabilitySlot{
			ID:             uuid.New(),
			ProfessionalID: professionalID,
			Weekday:        *in.Weekday,
			StartTime:      in.StartTime,
			EndTime:        in.EndTime,
			Active:         active,
		}
		if err := slot.Validate(); err != nil {
			return nil, apperrors.Validation("slot %d: %s", i, err.Error())
		}
		slots = append(slots, slot)
	}
	SortWeekly(slots)

	if err := s.availability.ReplaceAll(ctx, professionalID, slots); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ScheduleReplaced.Inc()
	}
	s.logger.Info("weekly availability replaced",
		"professional_id", professionalID.String(),
		"caller_id", caller.UserID.String(),
		"slots", len(slots))
	return slots, nil
}

// SortWeekly orders slots by weekday, then start time.
func SortWeekly(slots []model.WeeklyAvailabilitySlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Weekday != slots[j].Weekday {
			return slots[i].Weekday < slots[j].Weekday
		}
		return slots[i].StartTime < slots[j].StartTime
	})
}

func (s *Service) observeQuery(status string) {
	if s.metrics != nil {
		s.metrics.AvailabilityQueries.WithLabelValues(status).Inc()
	}
}

func (s *Service) observeConflict(stage string) {
	if s.metrics != nil {
		s.metrics.SlotConflicts.WithLabelValues(stage).Inc()
	}
}

func describe(err error) string {
	fields := appvalidator.Describe(err)
	if len(fields) == 0 {
		return err.Error()
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Field + " " + f.Message
	}
	return strings.Join(parts, "; ")
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
