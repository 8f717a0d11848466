package availability

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/scheduling-api/internal/model"
	apperrors "github.com/jwalitptl/scheduling-api/pkg/errors"
)

type fakeAvailabilityRepo struct {
	mu       sync.Mutex
	slots    map[uuid.UUID][]model.WeeklyAvailabilitySlot
	getErr   error
	replaced int
}

func newFakeAvailabilityRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{slots: make(map[uuid.UUID][]model.WeeklyAvailabilitySlot)}
}

func (r *fakeAvailabilityRepo) Get(_ context.Context, professionalID uuid.UUID) ([]model.WeeklyAvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	out := append([]model.WeeklyAvailabilitySlot(nil), r.slots[professionalID]...)
	SortWeekly(out)
	return out, nil
}

func (r *fakeAvailabilityRepo) ReplaceAll(_ context.Context, professionalID uuid.UUID, slots []model.WeeklyAvailabilitySlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[professionalID] = append([]model.WeeklyAvailabilitySlot(nil), slots...)
	r.replaced++
	return nil
}

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments []*model.Appointment
	// hidden appointments are committed but invisible to reads, standing in
	// for a concurrent writer that won the race.
	hidden    []*model.Appointment
	listErr   error
	listCalls int
}

func (r *fakeAppointmentRepo) ListByProfessionalAndDateRange(_ context.Context, professionalID uuid.UUID, rangeStart, rangeEnd time.Time) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*model.Appointment
	for _, apt := range r.appointments {
		if apt.ProfessionalID != professionalID {
			continue
		}
		if apt.StartsAt.Before(rangeEnd) && apt.EndsAt.After(rangeStart) {
			out = append(out, apt)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) Insert(_ context.Context, apt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := append(append([]*model.Appointment(nil), r.appointments...), r.hidden...)
	for _, existing := range all {
		if existing.ProfessionalID == apt.ProfessionalID &&
			existing.Status != model.AppointmentStatusCancelled &&
			existing.StartsAt.Equal(apt.StartsAt) {
			return apperrors.SlotConflict("appointment slot already booked", nil)
		}
	}
	r.appointments = append(r.appointments, apt)
	return nil
}

func (r *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, apt := range r.appointments {
		if apt.ID == id {
			return apt, nil
		}
	}
	return nil, apperrors.NotFound("appointment", nil)
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, apt *model.Appointment, _ model.AppointmentStatus) error {
	return nil
}
