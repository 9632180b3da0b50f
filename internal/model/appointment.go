package model

import (
	"time"

	"github.com/google/uuid"
)

type Appointment struct {
	Base
	ClinicID  uuid.UUID `db:"clinic_id" json:"clinic_id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Date      time.Time `db:"date" json:"date"`
}

// AppointmentDetail is an appointment joined with its patient and doctor,
// as shown in the appointments table.
type AppointmentDetail struct {
	Appointment
	Patient Patient `db:"patient" json:"patient"`
	Doctor  Doctor  `db:"doctor" json:"doctor"`
}

// UpsertAppointmentRequest is the create/update appointment input. Date is
// a calendar day and Time one of the doctor's HH:mm slots.
type UpsertAppointmentRequest struct {
	ID        string `json:"id" validate:"omitempty,uuid"`
	PatientID string `json:"patient_id" validate:"required,uuid"`
	DoctorID  string `json:"doctor_id" validate:"required,uuid"`
	Date      string `json:"date" validate:"required,calendardate"`
	Time      string `json:"time" validate:"required,hhmm"`
}

// AvailableTimes lists the bookable start times of a doctor.
type AvailableTimes struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	Times    []string  `json:"times"`
}
