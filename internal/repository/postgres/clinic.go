package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/repository"
)

type clinicRepository struct {
	BaseRepository
}

func NewClinicRepository(base BaseRepository) repository.ClinicRepository {
	return &clinicRepository{base}
}

func (r *clinicRepository) Get(ctx context.Context, id uuid.UUID) (clinic *model.Clinic, err error) {
	start := time.Now()
	defer func() { r.observe("clinics.get", start, err) }()

	query := `
		SELECT id, name, timezone, slot_duration_minutes, created_at, updated_at
		FROM clinics
		WHERE id = $1
	`
	var row model.Clinic
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, translate("get clinic", "clinic", err)
	}
	return &row, nil
}

type professionalRepository struct {
	BaseRepository
}

func NewProfessionalRepository(base BaseRepository) repository.ProfessionalRepository {
	return &professionalRepository{base}
}

func (r *professionalRepository) Get(ctx context.Context, id uuid.UUID) (prof *model.Professional, err error) {
	start := time.Now()
	defer func() { r.observe("professionals.get", start, err) }()

	query := `
		SELECT id, clinic_id, user_id, name, active, created_at, updated_at
		FROM professionals
		WHERE id = $1
	`
	var row model.Professional
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, translate("get professional", "professional", err)
	}
	return &row, nil
}
