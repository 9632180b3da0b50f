package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-admin/internal/model"
)

const patientColumns = `id, clinic_id, name, email, phone_number, sex, created_at, updated_at`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (` + patientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	patient.Touch(time.Now())

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.ClinicID,
		patient.Name,
		patient.Email,
		patient.PhoneNumber,
		patient.Sex,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", translateError(err))
	}
	return nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET name = $1, email = $2, phone_number = $3, sex = $4, updated_at = $5
		WHERE id = $6 AND clinic_id = $7
		RETURNING created_at
	`
	patient.UpdatedAt = time.Now()

	err := r.db.QueryRowxContext(ctx, query,
		patient.Name,
		patient.Email,
		patient.PhoneNumber,
		patient.Sex,
		patient.UpdatedAt,
		patient.ID,
		patient.ClinicID,
	).Scan(&patient.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", translateError(err))
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1 AND clinic_id = $2`

	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id, clinicID); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", translateError(err))
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context, clinicID uuid.UUID) ([]*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE clinic_id = $1 ORDER BY name ASC`

	patients := []*model.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	query := `DELETE FROM patients WHERE id = $1 AND clinic_id = $2`
	if _, err := r.db.ExecContext(ctx, query, id, clinicID); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}
