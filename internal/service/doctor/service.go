package doctor

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-admin/internal/model"
	"github.com/jwalitptl/clinic-admin/internal/repository"
	"github.com/jwalitptl/clinic-admin/internal/schedule"
	"github.com/jwalitptl/clinic-admin/internal/service"
	apperrors "github.com/jwalitptl/clinic-admin/pkg/errors"
	"github.com/jwalitptl/clinic-admin/pkg/validator"
)

// ListingInvalidator drops cached appointment listings, which embed
// doctor details.
type ListingInvalidator interface {
	Invalidate(ctx context.Context, clinicID uuid.UUID)
}

type DoctorServicer interface {
	Upsert(ctx context.Context, sess *model.Session, req *model.UpsertDoctorRequest) (*model.Doctor, error)
	Get(ctx context.Context, sess *model.Session, id string) (*model.Doctor, error)
	List(ctx context.Context, sess *model.Session) ([]*model.Doctor, error)
	Delete(ctx context.Context, sess *model.Session, id string) error
	AvailableTimes(ctx context.Context, sess *model.Session, id string) (*model.AvailableTimes, error)
}

type Service struct {
	repo      repository.DoctorRepository
	listing   ListingInvalidator
	validator *validator.Validator
	logger    zerolog.Logger
}

func NewService(repo repository.DoctorRepository, listing ListingInvalidator, v *validator.Validator, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		listing:   listing,
		validator: v,
		logger:    logger.With().Str("service", "doctor").Logger(),
	}
}

func (s *Service) validate(req *model.UpsertDoctorRequest) error {
	if req == nil {
		return apperrors.BadRequest("missing doctor", nil)
	}
	if fields := s.validator.Struct(req); fields != nil {
		return apperrors.Validation(fields)
	}

	from, _ := schedule.ParseClock(req.AvailableFromTime)
	to, _ := schedule.ParseClock(req.AvailableToTime)
	if from >= to {
		return apperrors.Validation([]apperrors.FieldError{
			{Field: "available_to_time", Message: "must be after available_from_time"},
		})
	}
	return nil
}

// Upsert creates the doctor when req has no id and updates it otherwise.
func (s *Service) Upsert(ctx context.Context, sess *model.Session, req *model.UpsertDoctorRequest) (*model.Doctor, error) {
	clinicID, err := service.RequireClinic(sess)
	if err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}

	doctor := &model.Doctor{
		ClinicID:                clinicID,
		Name:                    strings.TrimSpace(req.Name),
		AvatarImageURL:          req.AvatarImageURL,
		Specialty:               strings.TrimSpace(req.Specialty),
		AppointmentPriceInCents: req.AppointmentPriceInCents,
		AvailableFromWeekDay:    req.AvailableFromWeekDay,
		AvailableToWeekDay:      req.AvailableToWeekDay,
		AvailableFromTime:       req.AvailableFromTime,
		AvailableToTime:         req.AvailableToTime,
	}

	op := "create doctor"
	if req.ID == "" {
		err = s.repo.Create(ctx, doctor)
	} else {
		op = "update doctor"
		doctor.ID = uuid.MustParse(req.ID)
		err = s.repo.Update(ctx, doctor)
	}
	if err != nil {
		return nil, service.StoreError(s.logger, op, "doctor", clinicID, err)
	}

	if s.listing != nil {
		s.listing.Invalidate(ctx, clinicID)
	}
	return doctor, nil
}

func (s *Service) Get(ctx context.Context, sess *model.Session, id string) (*model.Doctor, error) {
	clinicID, err := service.RequireClinic(sess)
	if err != nil {
		return nil, err
	}
	doctorID, err := service.ParseID("id", id)
	if err != nil {
		return nil, err
	}

	doctor, err := s.repo.Get(ctx, clinicID, doctorID)
	if err != nil {
		return nil, service.StoreError(s.logger, "get doctor", "doctor", clinicID, err)
	}
	return doctor, nil
}

func (s *Service) List(ctx context.Context, sess *model.Session) ([]*model.Doctor, error) {
	clinicID, err := service.RequireClinic(sess)
	if err != nil {
		return nil, err
	}

	doctors, err := s.repo.List(ctx, clinicID)
	if err != nil {
		return nil, service.StoreError(s.logger, "list doctors", "doctors", clinicID, err)
	}
	return doctors, nil
}

// Delete removes the doctor and, through the store, their appointments.
// A missing id is a no-op.
func (s *Service) Delete(ctx context.Context, sess *model.Session, id string) error {
	clinicID, err := service.RequireClinic(sess)
	if err != nil {
		return err
	}
	doctorID, err := service.ParseID("id", id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, clinicID, doctorID); err != nil {
		return service.StoreError(s.logger, "delete doctor", "doctor", clinicID, err)
	}
	if s.listing != nil {
		s.listing.Invalidate(ctx, clinicID)
	}
	return nil
}

// AvailableTimes lists the doctor's bookable start times.
func (s *Service) AvailableTimes(ctx context.Context, sess *model.Session, id string) (*model.AvailableTimes, error) {
	doctor, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}

	times, err := schedule.Slots(doctor.AvailableFromTime, doctor.AvailableToTime)
	if err != nil {
		s.logger.Error().Err(err).Str("doctor_id", doctor.ID.String()).Msg("stored availability is malformed")
		return nil, apperrors.Internal("doctor availability is misconfigured", err)
	}

	return &model.AvailableTimes{
		DoctorID: doctor.ID,
		From:     doctor.AvailableFromTime,
		To:       doctor.AvailableToTime,
		Times:    times,
	}, nil
}
