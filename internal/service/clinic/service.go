package clinic

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/repository"
	apperrors "github.com/jwalitptl/scheduling-api/pkg/errors"
	"github.com/jwalitptl/scheduling-api/pkg/metrics"
)

// Service resolves the clinic configuration that applies to a professional.
// Results are cached for ttl; edits to a clinic become visible once the
// entry expires.
type Service struct {
	clinics       repository.ClinicRepository
	professionals repository.ProfessionalRepository
	cache         *cache.Cache
	metrics       *metrics.Metrics
}

func NewService(
	clinics repository.ClinicRepository,
	professionals repository.ProfessionalRepository,
	ttl, cleanupInterval time.Duration,
	m *metrics.Metrics,
) *Service {
	return &Service{
		clinics:       clinics,
		professionals: professionals,
		cache:         cache.New(ttl, cleanupInterval),
		metrics:       m,
	}
}

func professionalKey(id uuid.UUID) string { return "professional:" + id.String() }
func clinicKey(id uuid.UUID) string       { return "clinic:" + id.String() }

// SettingsForProfessional returns the professional and the settings of the
// clinic they work at. Inactive professionals are returned too; callers
// that book decide what inactive means for them.
func (s *Service) SettingsForProfessional(ctx context.Context, professionalID uuid.UUID) (*model.Professional, model.ClinicSettings, error) {
	prof, err := s.professional(ctx, professionalID)
	if err != nil {
		return nil, model.ClinicSettings{}, err
	}

	settings, err := s.Settings(ctx, prof.ClinicID)
	if err != nil {
		return nil, model.ClinicSettings{}, err
	}
	return prof, settings, nil
}

// Settings returns the timezone and slot duration of a clinic.
func (s *Service) Settings(ctx context.Context, clinicID uuid.UUID) (model.ClinicSettings, error) {
	if cached, ok := s.cache.Get(clinicKey(clinicID)); ok {
		s.observe("hit")
		return cached.(model.ClinicSettings), nil
	}
	s.observe("miss")

	clinic, err := s.clinics.Get(ctx, clinicID)
	if err != nil {
		return model.ClinicSettings{}, err
	}

	loc, err := time.LoadLocation(clinic.Timezone)
	if err != nil {
		return model.ClinicSettings{}, apperrors.Validation("clinic %s has unknown timezone %q", clinicID, clinic.Timezone)
	}
	if clinic.SlotDurationMinutes <= 0 {
		return model.ClinicSettings{}, apperrors.Validation("clinic %s has non-positive slot duration %d", clinicID, clinic.SlotDurationMinutes)
	}

	settings := model.ClinicSettings{
		ClinicID:            clinic.ID,
		Location:            loc,
		SlotDurationMinutes: clinic.SlotDurationMinutes,
	}
	s.cache.SetDefault(clinicKey(clinicID), settings)
	return settings, nil
}

func (s *Service) professional(ctx context.Context, id uuid.UUID) (*model.Professional, error) {
	if cached, ok := s.cache.Get(professionalKey(id)); ok {
		s.observe("hit")
		return cached.(*model.Professional), nil
	}
	s.observe("miss")

	prof, err := s.professionals.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(professionalKey(id), prof)
	return prof, nil
}

func (s *Service) observe(result string) {
	if s.metrics != nil {
		s.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}
