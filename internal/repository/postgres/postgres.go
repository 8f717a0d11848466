package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/scheduling-api/internal/repository"
	"github.com/jwalitptl/scheduling-api/pkg/metrics"
)

// Repositories bundles every postgres-backed repository over one pool.
type Repositories struct {
	Availability  repository.AvailabilityRepository
	Appointments  repository.AppointmentRepository
	Clinics       repository.ClinicRepository
	Professionals repository.ProfessionalRepository
	Outbox        repository.OutboxRepository
}

func NewRepositories(db *sqlx.DB, m *metrics.Metrics) *Repositories {
	base := NewBaseRepository(db, m)
	return &Repositories{
		Availability:  NewAvailabilityRepository(base),
		Appointments:  NewAppointmentRepository(base),
		Clinics:       NewClinicRepository(base),
		Professionals: NewProfessionalRepository(base),
		Outbox:        NewOutboxRepository(base),
	}
}
