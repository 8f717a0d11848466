package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		allowed  bool
	}{
		{AppointmentStatusScheduled, AppointmentStatusConfirmed, true},
		{AppointmentStatusScheduled, AppointmentStatusCancelled, true},
		{AppointmentStatusScheduled, AppointmentStatusNoShow, true},
		{AppointmentStatusConfirmed, AppointmentStatusCompleted, true},
		{AppointmentStatusScheduled, AppointmentStatusCompleted, false},
		{AppointmentStatusCompleted, AppointmentStatusScheduled, false},
		{AppointmentStatusCancelled, AppointmentStatusScheduled, false},
		{AppointmentStatusNoShow, AppointmentStatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestAppointmentStatusValid(t *testing.T) {
	assert.True(t, AppointmentStatusNoShow.Valid())
	assert.False(t, AppointmentStatus("pending").Valid())
}

func TestCallerCanManageSchedule(t *testing.T) {
	profID := uuid.New()

	admin := Caller{UserID: uuid.New(), Role: RoleAdmin}
	owner := Caller{UserID: uuid.New(), Role: RoleProfessional, ProfessionalID: profID}
	other := Caller{UserID: uuid.New(), Role: RoleProfessional, ProfessionalID: uuid.New()}
	patient := Caller{UserID: uuid.New(), Role: RolePatient}

	assert.True(t, admin.CanManageSchedule(profID))
	assert.True(t, owner.CanManageSchedule(profID))
	assert.False(t, other.CanManageSchedule(profID))
	assert.False(t, patient.CanManageSchedule(profID))
}
