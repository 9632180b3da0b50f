// Package service holds helpers shared by the domain services.
package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-admin/internal/model"
	"github.com/jwalitptl/clinic-admin/internal/repository"
	apperrors "github.com/jwalitptl/clinic-admin/pkg/errors"
)

var (
	ErrNoSession = errors.New("no session")
	ErrNoClinic  = errors.New("no clinic selected")
)

// RequireUser returns the session's user id.
func RequireUser(sess *model.Session) (uuid.UUID, error) {
	if sess == nil || sess.UserID == uuid.Nil {
		return uuid.Nil, apperrors.Unauthorized(ErrNoSession)
	}
	return sess.UserID, nil
}

// RequireClinic returns the clinic every read and write is scoped to.
func RequireClinic(sess *model.Session) (uuid.UUID, error) {
	if _, err := RequireUser(sess); err != nil {
		return uuid.Nil, err
	}
	if !sess.HasClinic() {
		return uuid.Nil, apperrors.Forbidden("clinic setup required", ErrNoClinic)
	}
	return sess.Clinic.ID, nil
}

// ParseID parses a path identifier, reporting a field error for field.
func ParseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.Validation([]apperrors.FieldError{
			{Field: field, Message: "must be a valid identifier"},
		})
	}
	return id, nil
}

// StoreError logs a persistence failure and turns it into the error
// returned to callers. Not-found and dangling references keep their
// meaning; anything else becomes a generic failure.
func StoreError(logger zerolog.Logger, op, resource string, clinicID uuid.UUID, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound(resource, err)
	case errors.Is(err, repository.ErrReferenceNotFound):
		return apperrors.BadRequest("referenced record does not exist", err)
	}

	logger.Error().
		Err(err).
		Str("operation", op).
		Str("clinic_id", clinicID.String()).
		Msg("persistence failure")
	return apperrors.Internal("failed to "+op, err)
}
