package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-admin/internal/model"
)

const doctorColumns = `
	id, clinic_id, name, avatar_image_url, specialty, appointment_price_in_cents,
	available_from_week_day, available_to_week_day,
	available_from_time, available_to_time, created_at, updated_at
`

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (` + doctorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	doctor.Touch(time.Now())

	_, err := r.db.ExecContext(ctx, query,
		doctor.ID,
		doctor.ClinicID,
		doctor.Name,
		doctor.AvatarImageURL,
		doctor.Specialty,
		doctor.AppointmentPriceInCents,
		doctor.AvailableFromWeekDay,
		doctor.AvailableToWeekDay,
		doctor.AvailableFromTime,
		doctor.AvailableToTime,
		doctor.CreatedAt,
		doctor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", translateError(err))
	}
	return nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	query := `
		UPDATE doctors
		SET name = $1, avatar_image_url = $2, specialty = $3,
			appointment_price_in_cents = $4,
			available_from_week_day = $5, available_to_week_day = $6,
			available_from_time = $7, available_to_time = $8,
			updated_at = $9
		WHERE id = $10 AND clinic_id = $11
		RETURNING created_at
	`
	doctor.UpdatedAt = time.Now()

	err := r.db.QueryRowxContext(ctx, query,
		doctor.Name,
		doctor.AvatarImageURL,
		doctor.Specialty,
		doctor.AppointmentPriceInCents,
		doctor.AvailableFromWeekDay,
		doctor.AvailableToWeekDay,
		doctor.AvailableFromTime,
		doctor.AvailableToTime,
		doctor.UpdatedAt,
		doctor.ID,
		doctor.ClinicID,
	).Scan(&doctor.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to update doctor: %w", translateError(err))
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE id = $1 AND clinic_id = $2`

	var doctor model.Doctor
	if err := r.db.GetContext(ctx, &doctor, query, id, clinicID); err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", translateError(err))
	}
	return &doctor, nil
}

func (r *doctorRepository) List(ctx context.Context, clinicID uuid.UUID) ([]*model.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE clinic_id = $1 ORDER BY name ASC`

	doctors := []*model.Doctor{}
	if err := r.db.SelectContext(ctx, &doctors, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	query := `DELETE FROM doctors WHERE id = $1 AND clinic_id = $2`
	if _, err := r.db.ExecContext(ctx, query, id, clinicID); err != nil {
		return fmt.Errorf("failed to delete doctor: %w", err)
	}
	return nil
}
