package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-admin/internal/model"
)

const appointmentColumns = `id, clinic_id, patient_id, doctor_id, date, created_at, updated_at`

// appointmentDetailSelect aliases joined columns as "patient.x"/"doctor.x"
// so sqlx scans them into the embedded structs. The joins only match
// patients and doctors of the appointment's own clinic.
const appointmentDetailSelect = `
	SELECT
		a.id, a.clinic_id, a.patient_id, a.doctor_id, a.date, a.created_at, a.updated_at,
		p.id AS "patient.id", p.clinic_id AS "patient.clinic_id", p.name AS "patient.name",
		p.email AS "patient.email", p.phone_number AS "patient.phone_number",
		p.sex AS "patient.sex", p.created_at AS "patient.created_at",
		p.updated_at AS "patient.updated_at",
		d.id AS "doctor.id", d.clinic_id AS "doctor.clinic_id", d.name AS "doctor.name",
		d.avatar_image_url AS "doctor.avatar_image_url", d.specialty AS "doctor.specialty",
		d.appointment_price_in_cents AS "doctor.appointment_price_in_cents",
		d.available_from_week_day AS "doctor.available_from_week_day",
		d.available_to_week_day AS "doctor.available_to_week_day",
		d.available_from_time AS "doctor.available_from_time",
		d.available_to_time AS "doctor.available_to_time",
		d.created_at AS "doctor.created_at", d.updated_at AS "doctor.updated_at"
	FROM appointments a
	JOIN patients p ON p.id = a.patient_id AND p.clinic_id = a.clinic_id
	JOIN doctors d ON d.id = a.doctor_id AND d.clinic_id = a.clinic_id
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	appointment.Touch(time.Now())

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.ClinicID,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.Date,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", translateError(err))
	}
	return nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET patient_id = $1, doctor_id = $2, date = $3, updated_at = $4
		WHERE id = $5 AND clinic_id = $6
		RETURNING created_at
	`
	appointment.UpdatedAt = time.Now()

	err := r.db.QueryRowxContext(ctx, query,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.Date,
		appointment.UpdatedAt,
		appointment.ID,
		appointment.ClinicID,
	).Scan(&appointment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", translateError(err))
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	query := `DELETE FROM appointments WHERE id = $1 AND clinic_id = $2`
	if _, err := r.db.ExecContext(ctx, query, id, clinicID); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) GetDetail(ctx context.Context, clinicID, id uuid.UUID) (*model.AppointmentDetail, error) {
	query := appointmentDetailSelect + `WHERE a.id = $1 AND a.clinic_id = $2`

	var detail model.AppointmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id, clinicID); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", translateError(err))
	}
	return &detail, nil
}

func (r *appointmentRepository) ListDetails(ctx context.Context, clinicID uuid.UUID) ([]*model.AppointmentDetail, error) {
	query := appointmentDetailSelect + `WHERE a.clinic_id = $1 ORDER BY a.date ASC`

	details := []*model.AppointmentDetail{}
	if err := r.db.SelectContext(ctx, &details, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return details, nil
}
