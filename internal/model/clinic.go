package model

import (
	"time"

	"github.com/google/uuid"
)

type Clinic struct {
	Base
	Name                string `db:"name" json:"name"`
	Timezone            string `db:"timezone" json:"timezone"`
	SlotDurationMinutes int    `db:"slot_duration_minutes" json:"slot_duration_minutes"`
}

type Professional struct {
	Base
	ClinicID uuid.UUID `db:"clinic_id" json:"clinic_id"`
	UserID   uuid.UUID `db:"user_id" json:"user_id"`
	Name     string    `db:"name" json:"name"`
	Active   bool      `db:"active" json:"active"`
}

// ClinicSettings is the clinic-level configuration passed into every
// availability call.
type ClinicSettings struct {
	ClinicID            uuid.UUID
	Location            *time.Location
	SlotDurationMinutes int
}

// TimezoneName returns the IANA name of the settings' location.
func (s ClinicSettings) TimezoneName() string {
	if s.Location == nil {
		return ""
	}
	return s.Location.String()
}
