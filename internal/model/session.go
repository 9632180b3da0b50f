package model

import (
	"github.com/google/uuid"
)

// Session is the authenticated caller as resolved from the session token.
type Session struct {
	UserID uuid.UUID      `json:"user_id"`
	Email  string         `json:"email,omitempty"`
	Name   string         `json:"name,omitempty"`
	Clinic *SessionClinic `json:"clinic,omitempty"`
}

// SessionClinic is the clinic currently selected by the user.
type SessionClinic struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name,omitempty"`
}

// HasClinic reports whether a clinic is selected.
func (s *Session) HasClinic() bool {
	return s != nil && s.Clinic != nil && s.Clinic.ID != uuid.Nil
}
