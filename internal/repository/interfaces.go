package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-admin/internal/model"
)

var (
	// ErrNotFound is returned when no row matches the given id and clinic.
	ErrNotFound = errors.New("record not found")
	// ErrReferenceNotFound is returned when a foreign key points nowhere.
	ErrReferenceNotFound = errors.New("referenced record not found")
)

// All repository interfaces in one file. Every clinic-owned entity is read
// and written scoped to its clinic.
type (
	ClinicRepository interface {
		// CreateForUser inserts the clinic and links it to userID atomically.
		CreateForUser(ctx context.Context, clinic *model.Clinic, userID uuid.UUID) error
		Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
		ListUserClinics(ctx context.Context, userID uuid.UUID) ([]*model.Clinic, error)
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Update(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Doctor, error)
		List(ctx context.Context, clinicID uuid.UUID) ([]*model.Doctor, error)
		Delete(ctx context.Context, clinicID, id uuid.UUID) error
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Update(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Patient, error)
		List(ctx context.Context, clinicID uuid.UUID) ([]*model.Patient, error)
		Delete(ctx context.Context, clinicID, id uuid.UUID) error
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		// Update fills CreatedAt from the stored row. A patient or doctor
		// outside the appointment's clinic is ErrReferenceNotFound.
		Update(ctx context.Context, appointment *model.Appointment) error
		// Delete removes the appointment; a missing id affects zero rows and
		// is not an error.
		Delete(ctx context.Context, clinicID, id uuid.UUID) error
		GetDetail(ctx context.Context, clinicID, id uuid.UUID) (*model.AppointmentDetail, error)
		ListDetails(ctx context.Context, clinicID uuid.UUID) ([]*model.AppointmentDetail, error)
	}
)
