package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/scheduling-api/internal/model"
	apperrors "github.com/jwalitptl/scheduling-api/pkg/errors"
	"github.com/jwalitptl/scheduling-api/pkg/metrics"
)

type mockRepo struct {
	appointments map[uuid.UUID]*model.Appointment
	updates      []model.AppointmentStatus
}

func (m *mockRepo) ListByProfessionalAndDateRange(_ context.Context, professionalID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range m.appointments {
		if apt.ProfessionalID == professionalID && apt.StartsAt.Before(to) && apt.EndsAt.After(from) {
			out = append(out, apt)
		}
	}
	return out, nil
}

func (m *mockRepo) Insert(_ context.Context, apt *model.Appointment) error {
	m.appointments[apt.ID] = apt
	return nil
}

func (m *mockRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := m.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return apt, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, apt *model.Appointment, previous model.AppointmentStatus) error {
	current := m.appointments[apt.ID]
	if current.Status != previous {
		return apperrors.InvalidTransition(string(previous), string(apt.Status))
	}
	m.appointments[apt.ID] = apt
	m.updates = append(m.updates, apt.Status)
	return nil
}

type fixture struct {
	svc     *Service
	repo    *mockRepo
	apt     *model.Appointment
	patient model.Caller
	prof    model.Caller
	admin   model.Caller
}

func newFixture(status model.AppointmentStatus) *fixture {
	clinicID := uuid.New()
	start := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	apt := &model.Appointment{
		Base:           model.Base{ID: uuid.New()},
		ClinicID:       clinicID,
		ProfessionalID: uuid.New(),
		PatientID:      uuid.New(),
		StartsAt:       start,
		EndsAt:         start.Add(30 * time.Minute),
		Status:         status,
	}
	repo := &mockRepo{appointments: map[uuid.UUID]*model.Appointment{apt.ID: apt}}
	return &fixture{
		svc:     NewService(repo, nil, metrics.NewTestMetrics()),
		repo:    repo,
		apt:     apt,
		patient: model.Caller{UserID: apt.PatientID, ClinicID: clinicID, Role: model.RolePatient},
		prof:    model.Caller{UserID: uuid.New(), ClinicID: clinicID, Role: model.RoleProfessional, ProfessionalID: apt.ProfessionalID},
		admin:   model.Caller{UserID: uuid.New(), ClinicID: clinicID, Role: model.RoleAdmin},
	}
}

func TestGetAccess(t *testing.T) {
	f := newFixture(model.AppointmentStatusScheduled)

	for _, c := range []model.Caller{f.patient, f.prof, f.admin} {
		got, err := f.svc.Get(context.Background(), c, f.apt.ID)
		require.NoError(t, err)
		assert.Equal(t, f.apt.ID, got.ID)
	}

	stranger := model.Caller{UserID: uuid.New(), ClinicID: f.apt.ClinicID, Role: model.RolePatient}
	_, err := f.svc.Get(context.Background(), stranger, f.apt.ID)
	assert.True(t, apperrors.IsNotFound(err))

	otherClinicAdmin := model.Caller{UserID: uuid.New(), ClinicID: uuid.New(), Role: model.RoleAdmin}
	_, err = f.svc.Get(context.Background(), otherClinicAdmin, f.apt.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    model.AppointmentStatus
		to      model.AppointmentStatus
		wantErr error
	}{
		{"confirm", model.AppointmentStatusScheduled, model.AppointmentStatusConfirmed, nil},
		{"cancel", model.AppointmentStatusScheduled, model.AppointmentStatusCancelled, nil},
		{"no show", model.AppointmentStatusScheduled, model.AppointmentStatusNoShow, nil},
		{"complete", model.AppointmentStatusConfirmed, model.AppointmentStatusCompleted, nil},
		{"reopen completed", model.AppointmentStatusCompleted, model.AppointmentStatusScheduled, apperrors.InvalidTransitionError},
		{"uncancel", model.AppointmentStatusCancelled, model.AppointmentStatusScheduled, apperrors.InvalidTransitionError},
		{"skip confirmation", model.AppointmentStatusScheduled, model.AppointmentStatusCompleted, apperrors.InvalidTransitionError},
		{"unknown status", model.AppointmentStatusScheduled, "archived", apperrors.ValidationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.from)
			got, err := f.svc.UpdateStatus(context.Background(), f.prof, f.apt.ID, tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.repo.updates)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)
			assert.Equal(t, []model.AppointmentStatus{tt.to}, f.repo.updates)
		})
	}
}

func TestPatientMayOnlyCancel(t *testing.T) {
	f := newFixture(model.AppointmentStatusScheduled)

	_, err := f.svc.UpdateStatus(context.Background(), f.patient, f.apt.ID, model.AppointmentStatusConfirmed)
	assert.ErrorIs(t, err, apperrors.ForbiddenError)

	got, err := f.svc.UpdateStatus(context.Background(), f.patient, f.apt.ID, model.AppointmentStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, got.Status)
}

func TestListForProfessional(t *testing.T) {
	f := newFixture(model.AppointmentStatusScheduled)
	from := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	got, err := f.svc.ListForProfessional(context.Background(), f.prof, f.apt.ProfessionalID, from, from.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = f.svc.ListForProfessional(context.Background(), f.patient, f.apt.ProfessionalID, from, from.Add(24*time.Hour))
	assert.ErrorIs(t, err, apperrors.ForbiddenError)

	_, err = f.svc.ListForProfessional(context.Background(), f.admin, f.apt.ProfessionalID, from, from)
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.svc.ListForProfessional(context.Background(), f.admin, f.apt.ProfessionalID, from, from.Add(60*24*time.Hour))
	assert.True(t, apperrors.IsValidation(err))
}
