package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-admin/internal/model"
)

func (r *clinicRepository) CreateForUser(ctx context.Context, clinic *model.Clinic, userID uuid.UUID) error {
	clinic.Touch(time.Now())

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO clinics (id, name, created_at, updated_at)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.ExecContext(ctx, query,
			clinic.ID,
			clinic.Name,
			clinic.CreatedAt,
			clinic.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create clinic: %w", translateError(err))
		}

		link := `
			INSERT INTO users_to_clinics (user_id, clinic_id, created_at)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, link, userID, clinic.ID, clinic.CreatedAt); err != nil {
			return fmt.Errorf("failed to link clinic to user: %w", translateError(err))
		}
		return nil
	})
}

func (r *clinicRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM clinics
		WHERE id = $1
	`
	var clinic model.Clinic
	if err := r.db.GetContext(ctx, &clinic, query, id); err != nil {
		return nil, fmt.Errorf("failed to get clinic: %w", translateError(err))
	}
	return &clinic, nil
}

func (r *clinicRepository) ListUserClinics(ctx context.Context, userID uuid.UUID) ([]*model.Clinic, error) {
	query := `
		SELECT c.id, c.name, c.created_at, c.updated_at
		FROM clinics c
		JOIN users_to_clinics uc ON uc.clinic_id = c.id
		WHERE uc.user_id = $1
		ORDER BY uc.created_at ASC
	`
	clinics := []*model.Clinic{}
	if err := r.db.SelectContext(ctx, &clinics, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list user clinics: %w", err)
	}
	return clinics, nil
}
