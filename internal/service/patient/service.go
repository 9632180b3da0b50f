package patient

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-admin/internal/model"
	"github.com/jwalitptl/clinic-admin/internal/repository"
	"github.com/jwalitptl/clinic-admin/internal/service"
	apperrors "github.com/jwalitptl/clinic-admin/pkg/errors"
	"github.com/jwalitptl/clinic-admin/pkg/validator"
)

// ListingInvalidator drops cached appointment listings, which embed
// patient details.
type ListingInvalidator interface {
	Invalidate(ctx context.Context, clinicID uuid.UUID)
}

type PatientService interface {
	Upsert(ctx context.Context, sess *model.Session, req *model.UpsertPatientRequest) (*model.Patient, error)
	Get(ctx context.Context, sess *model.Session, id string) (*model.Patient, error)
	List(ctx context.Context, sess *model.Session) ([]*model.Patient, error)
	Delete(ctx context.Context, sess *model.Session, id string) error
}

type Service struct {
	repo      repository.PatientRepository
	listing   ListingInvalidator
	validator *validator.Validator
	logger    zerolog.Logger
}

func NewService(repo repository.PatientRepository, listing ListingInvalidator, v *validator.Validator, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		listing:   listing,
		validator: v,
		logger:    logger.With().Str("service", "patient").Logger(),
	}
}

func (s *Service) Upsert(ctx context.Context, sess *model.Session, req *model.UpsertPatientRequest) (*model.Patient, error) {
	clinicID, err := service.RequireClinic(sess)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperrors.BadRequest("missing patient", nil)
	}

	in := *req
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if fields := s.validator.Struct(&in); fields != nil {
		return nil, apperrors.Validation(fields)
	}

	patient := &model.Patient{
		ClinicID:    clinicID,
		Name:        in.Name,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Sex:         model.PatientSex(in.Sex),
	}

	op := "create patient"
	if req.ID == "" {
		err = s.repo.Create(ctx, patient)
	} else {
		op = "update patient"
		patient.ID = uuid.MustParse(req.ID)
		err = s.repo.Update(ctx, patient)
	}
	if err != nil {
		return nil, service.StoreError(s.logger, op, "patient", clinicID, err)
	}

	if s.listing != nil {
		s.listing.Invalidate(ctx, clinicID)
	}
	return patient, nil
}

func (s *Service) Get(ctx context.Context, sess *model.Session, id string) (*model.Patient, error) {
	clinicID, err := service.RequireClinic(sess)
	if err != nil {
		return nil, err
	}
	patientID, err := service.ParseID("id", id)
	if err != nil {
		return nil, err
	}

	patient, err := s.repo.Get(ctx, clinicID, patientID)
	if err != nil {
		return nil, service.StoreError(s.logger, "get patient", "patient", clinicID, err)
	}
	return patient, nil
}

func (s *Service) List(ctx context.Context, sess *model.Session) ([]*model.Patient, error) {
	clinicID, err := service.RequireClinic(sess)
	if err != nil {
		return nil, err
	}

	patients, err := s.repo.List(ctx, clinicID)
	if err != nil {
		return nil, service.StoreError(s.logger, "list patients", "patients", clinicID, err)
	}
	return patients, nil
}

// Delete removes the patient; a missing id is a no-op.
func (s *Service) Delete(ctx context.Context, sess *model.Session, id string) error {
	clinicID, err := service.RequireClinic(sess)
	if err != nil {
		return err
	}
	patientID, err := service.ParseID("id", id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, clinicID, patientID); err != nil {
		return service.StoreError(s.logger, "delete patient", "patient", clinicID, err)
	}
	if s.listing != nil {
		s.listing.Invalidate(ctx, clinicID)
	}
	return nil
}
