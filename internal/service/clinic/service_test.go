package clinic

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

type mockClinicRepo struct {
	clinics map[uuid.UUID]*model.Clinic
	calls   int
}

func (m *mockClinicRepo) Get(_ context.Context, id uuid.UUID) (*model.Clinic, error) {
	m.calls++
	c, ok := m.clinics[id]
	if !ok {
		return nil, apperrors.NotFound("clinic", nil)
	}
	return c, nil
}

type mockProfessionalRepo struct {
	professionals map[uuid.UUID]*model.Professional
	calls         int
}

func (m *mockProfessionalRepo) Get(_ context.Context, id uuid.UUID) (*model.Professional, error) {
	m.calls++
	p, ok := m.professionals[id]
	if !ok {
		return nil, apperrors.NotFound("professional", nil)
	}
	return p, nil
}

func setup(tz string, duration int, active bool) (*Service, *mockClinicRepo, *mockProfessionalRepo, uuid.UUID) {
	clinicID, profID := uuid.New(), uuid.New()
	clinics := &mockClinicRepo{clinics: map[uuid.UUID]*model.Clinic{
		clinicID: {Base: model.Base{ID: clinicID}, Name: "Downtown", Timezone: tz, SlotDurationMinutes: duration},
	}}
	profs := &mockProfessionalRepo{professionals: map[uuid.UUID]*model.Professional{
		profID: {Base: model.Base{ID: profID}, ClinicID: clinicID, Name: "Dr. Lima", Active: active},
	}}
	return NewService(clinics, profs, time.Minute, time.Minute, metrics.NewTestMetrics()), clinics, profs, profID
}

func TestSettingsForProfessional(t *testing.T) {
	svc, clinics, profs, profID := setup("UTC", 30, true)

	prof, settings, err := svc.SettingsForProfessional(context.Background(), profID)
	require.NoError(t, err)
	assert.Equal(t, profID, prof.ID)
	assert.Equal(t, prof.ClinicID, settings.ClinicID)
	assert.Equal(t, 30, settings.SlotDurationMinutes)
	assert.Equal(t, "UTC", settings.TimezoneName())

	_, _, err = svc.SettingsForProfessional(context.Background(), profID)
	require.NoError(t, err)
	assert.Equal(t, 1, clinics.calls, "clinic cached")
	assert.Equal(t, 1, profs.calls, "professional cached")
}

func TestSettingsForInactiveProfessional(t *testing.T) {
	svc, _, _, profID := setup("UTC", 30, false)

	prof, settings, err := svc.SettingsForProfessional(context.Background(), profID)
	require.NoError(t, err)
	assert.False(t, prof.Active)
	assert.Equal(t, prof.ClinicID, settings.ClinicID)
}

func TestSettingsForProfessionalErrors(t *testing.T) {
	t.Run("unknown professional", func(t *testing.T) {
		svc, _, _, _ := setup("UTC", 30, true)
		_, _, err := svc.SettingsForProfessional(context.Background(), uuid.New())
		assert.True(t, apperrors.IsNotFound(err))
	})


	t.Run("bad timezone", func(t *testing.T) {
		svc, _, _, profID := setup("Mars/Olympus_Mons", 30, true)
		_, _, err := svc.SettingsForProfessional(context.Background(), profID)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("bad duration", func(t *testing.T) {
		svc, _, _, profID := setup("UTC", 0, true)
		_, _, err := svc.SettingsForProfessional(context.Background(), profID)
		assert.True(t, apperrors.IsValidation(err))
	})
}
