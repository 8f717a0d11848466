package model

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleProfessional Role = "professional"
	RolePatient      Role = "patient"
)

// Caller identifies who is making a request. It is threaded explicitly into
// every operation that needs it.
type Caller struct {
	UserID         uuid.UUID
	ClinicID       uuid.UUID
	Role           Role
	ProfessionalID uuid.UUID
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// CanManageSchedule reports whether the caller may edit the weekly
// availability of the given professional.
func (c Caller) CanManageSchedule(professionalID uuid.UUID) bool {
	if c.IsAdmin() {
		return true
	}
	return c.Role == RoleProfessional && c.ProfessionalID == professionalID
}

// InClinic reports whether the caller belongs to clinicID. Callers without a
// clinic claim are platform-wide.
func (c Caller) InClinic(clinicID uuid.UUID) bool {
	return c.ClinicID == uuid.Nil || c.ClinicID == clinicID
}

// CanAccessAppointment reports whether the caller may read apt.
func (c Caller) CanAccessAppointment(apt *Appointment) bool {
	if !c.InClinic(apt.ClinicID) {
		return false
	}
	switch c.Role {
	case RoleAdmin:
		return true
	case RoleProfessional:
		return c.ProfessionalID == apt.ProfessionalID
	case RolePatient:
		return c.UserID == apt.PatientID
	}
	return false
}
