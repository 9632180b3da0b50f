package model

import (
	"time"

	"github.com/google/uuid"
)

type Clinic struct {
	Base
	Name string `db:"name" json:"name"`
}

// UserClinic links an authenticated user to a clinic.
type UserClinic struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ClinicID  uuid.UUID `db:"clinic_id" json:"clinic_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CreateClinicRequest struct {
	Name string `json:"name" validate:"notblank,max=255"`
}

// CreateClinicResponse carries the clinic and a session token that now
// includes it.
type CreateClinicResponse struct {
	Clinic *Clinic `json:"clinic"`
	Token  string  `json:"token"`
}
