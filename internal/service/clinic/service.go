package clinic

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-admin/internal/model"
	"github.com/jwalitptl/clinic-admin/internal/repository"
	"github.com/jwalitptl/clinic-admin/internal/service"
	"github.com/jwalitptl/clinic-admin/pkg/auth"
	apperrors "github.com/jwalitptl/clinic-admin/pkg/errors"
	"github.com/jwalitptl/clinic-admin/pkg/validator"
)

type ClinicServicer interface {
	CreateClinic(ctx context.Context, sess *model.Session, req *model.CreateClinicRequest) (*model.CreateClinicResponse, error)
	GetCurrent(ctx context.Context, sess *model.Session) (*model.Clinic, error)
	ListMine(ctx context.Context, sess *model.Session) ([]*model.Clinic, error)
}

type Service struct {
	repo      repository.ClinicRepository
	tokens    auth.JWTService
	validator *validator.Validator
	logger    zerolog.Logger
}

func NewService(repo repository.ClinicRepository, tokens auth.JWTService, v *validator.Validator, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		tokens:    tokens,
		validator: v,
		logger:    logger.With().Str("service", "clinic").Logger(),
	}
}

// CreateClinic creates a clinic owned by the session user and returns a
// session token that has the new clinic selected.
func (s *Service) CreateClinic(ctx context.Context, sess *model.Session, req *model.CreateClinicRequest) (*model.CreateClinicResponse, error) {
	userID, err := service.RequireUser(sess)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperrors.BadRequest("missing clinic", nil)
	}
	if fields := s.validator.Struct(req); fields != nil {
		return nil, apperrors.Validation(fields)
	}

	clinic := &model.Clinic{Name: strings.TrimSpace(req.Name)}
	if err := s.repo.CreateForUser(ctx, clinic, userID); err != nil {
		return nil, service.StoreError(s.logger, "create clinic", "clinic", clinic.ID, err)
	}

	next := *sess
	next.Clinic = &model.SessionClinic{ID: clinic.ID, Name: clinic.Name}
	token, err := s.tokens.GenerateSessionToken(&next)
	if err != nil {
		s.logger.Error().Err(err).Str("clinic_id", clinic.ID.String()).Msg("failed to issue session token")
		return nil, apperrors.Internal("failed to issue session token", err)
	}

	s.logger.Info().
		Str("clinic_id", clinic.ID.String()).
		Str("user_id", userID.String()).
		Msg("clinic created")

	return &model.CreateClinicResponse{Clinic: clinic, Token: token}, nil
}

func (s *Service) GetCurrent(ctx context.Context, sess *model.Session) (*model.Clinic, error) {
	clinicID, err := service.RequireClinic(sess)
	if err != nil {
		return nil, err
	}
	clinic, err := s.repo.Get(ctx, clinicID)
	if err != nil {
		return nil, service.StoreError(s.logger, "get clinic", "clinic", clinicID, err)
	}
	return clinic, nil
}

// ListMine lists the clinics linked to the session user.
func (s *Service) ListMine(ctx context.Context, sess *model.Session) ([]*model.Clinic, error) {
	userID, err := service.RequireUser(sess)
	if err != nil {
		return nil, err
	}
	clinics, err := s.repo.ListUserClinics(ctx, userID)
	if err != nil {
		return nil, service.StoreError(s.logger, "list clinics", "clinics", userID, err)
	}
	return clinics, nil
}
