package model

import (
	"github.com/google/uuid"
)

type Doctor struct {
	Base
	ClinicID                uuid.UUID `db:"clinic_id" json:"clinic_id"`
	Name                    string    `db:"name" json:"name"`
	AvatarImageURL          *string   `db:"avatar_image_url" json:"avatar_image_url,omitempty"`
	Specialty               string    `db:"specialty" json:"specialty"`
	AppointmentPriceInCents int       `db:"appointment_price_in_cents" json:"appointment_price_in_cents"`
	AvailableFromWeekDay    int       `db:"available_from_week_day" json:"available_from_week_day"`
	AvailableToWeekDay      int       `db:"available_to_week_day" json:"available_to_week_day"`
	AvailableFromTime       string    `db:"available_from_time" json:"available_from_time"`
	AvailableToTime         string    `db:"available_to_time" json:"available_to_time"`
}

// UpsertDoctorRequest creates a doctor when ID is empty and updates it
// otherwise.
type UpsertDoctorRequest struct {
	ID                      string  `json:"id" validate:"omitempty,uuid"`
	Name                    string  `json:"name" validate:"notblank,max=255"`
	AvatarImageURL          *string `json:"avatar_image_url" validate:"omitempty,url"`
	Specialty               string  `json:"specialty" validate:"notblank,max=255"`
	AppointmentPriceInCents int     `json:"appointment_price_in_cents" validate:"min=1"`
	AvailableFromWeekDay    int     `json:"available_from_week_day" validate:"min=0,max=6"`
	AvailableToWeekDay      int     `json:"available_to_week_day" validate:"min=0,max=6"`
	AvailableFromTime       string  `json:"available_from_time" validate:"required,hhmm"`
	AvailableToTime         string  `json:"available_to_time" validate:"required,hhmm"`
}
