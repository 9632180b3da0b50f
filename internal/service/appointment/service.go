package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-admin/internal/model"
	"github.com/jwalitptl/clinic-admin/internal/repository"
	"github.com/jwalitptl/clinic-admin/internal/schedule"
	"github.com/jwalitptl/clinic-admin/internal/service"
	"github.com/jwalitptl/clinic-admin/internal/service/notification"
	apperrors "github.com/jwalitptl/clinic-admin/pkg/errors"
	"github.com/jwalitptl/clinic-admin/pkg/metrics"
	"github.com/jwalitptl/clinic-admin/pkg/validator"
)

const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// ListingCache holds each clinic's appointments listing.
type ListingCache interface {
	Get(clinicID uuid.UUID) ([]*model.AppointmentDetail, bool)
	Set(clinicID uuid.UUID, listing []*model.AppointmentDetail)
	Invalidate(ctx context.Context, clinicID uuid.UUID)
}

type AppointmentServicer interface {
	Upsert(ctx context.Context, sess *model.Session, req *model.UpsertAppointmentRequest) (*model.Appointment, error)
	Delete(ctx context.Context, sess *model.Session, id string) error
	Get(ctx context.Context, sess *model.Session, id string) (*model.AppointmentDetail, error)
	List(ctx context.Context, sess *model.Session) ([]*model.AppointmentDetail, error)
}

type Options struct {
	// Location places the combined date and time; nil means time.Local.
	Location *time.Location
	// EnforceAvailability rejects times outside the doctor's schedule.
	EnforceAvailability bool
	Metrics             *metrics.Metrics
	Logger              zerolog.Logger
}

type Service struct {
	repo      repository.AppointmentRepository
	doctors   repository.DoctorRepository
	cache     ListingCache
	notifier  notification.Service
	validator *validator.Validator
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	loc       *time.Location
	enforce   bool
}

func NewService(
	repo repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	cache ListingCache,
	// notifier may be nil, which disables booking e-mails.
	notifier notification.Service,
	v *validator.Validator,
	opts Options,
) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Service{
		repo:      repo,
		doctors:   doctors,
		cache:     cache,
		notifier:  notifier,
		validator: v,
		metrics:   opts.Metrics,
		logger:    opts.Logger.With().Str("service", "appointment").Logger(),
		loc:       opts.Location,
		enforce:   opts.EnforceAvailability,
	}
}

// Command is a validated appointment request.
type Command struct {
	// ID is uuid.Nil when the request creates an appointment.
	ID        uuid.UUID
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	// Date is the request's date and time combined in the service location.
	Date time.Time
	Time string
}

// Validate checks req without touching the store and resolves it into a
// Command. Failures are reported as a validation AppError.
func (s *Service) Validate(req *model.UpsertAppointmentRequest) (*Command, error) {
	if req == nil {
		return nil, apperrors.BadRequest("missing appointment", nil)
	}
	if fields := s.validator.Struct(req); fields != nil {
		return nil, apperrors.Validation(fields)
	}

	// The tags above guarantee these parse.
	cmd := &Command{
		PatientID: uuid.MustParse(req.PatientID),
		DoctorID:  uuid.MustParse(req.DoctorID),
		Time:      req.Time,
	}
	if req.ID != "" {
		cmd.ID = uuid.MustParse(req.ID)
	}

	date, err := schedule.CombineDate(req.Date, req.Time, s.loc)
	if err != nil {
		return nil, apperrors.Validation([]apperrors.FieldError{{Field: "date", Message: err.Error()}})
	}
	cmd.Date = date
	return cmd, nil
}

// Upsert creates the appointment when req has no id and updates it
// otherwise. Updating an id that does not exist in the clinic is NotFound.
func (s *Service) Upsert(ctx context.Context, sess *model.Session, req *model.UpsertAppointmentRequest) (*model.Appointment, error) {
	clinicID, err := service.RequireClinic(sess)
	if err != nil {
		return nil, err
	}

	cmd, err := s.Validate(req)
	if err != nil {
		s.logger.Debug().Err(err).Msg("rejected appointment request")
		return nil, err
	}

	if s.enforce {
		if err := s.checkAvailability(ctx, clinicID, cmd); err != nil {
			return nil, err
		}
	}

	appt := &model.Appointment{
		Base:      model.Base{ID: cmd.ID},
		ClinicID:  clinicID,
		PatientID: cmd.PatientID,
		DoctorID:  cmd.DoctorID,
		Date:      cmd.Date,
	}

	op := opUpdate
	if cmd.ID == uuid.Nil {
		op = opCreate
		err = s.repo.Create(ctx, appt)
	} else {
		err = s.repo.Update(ctx, appt)
	}
	s.observe(op, err)
	if err != nil {
		return nil, service.StoreError(s.logger, op+" appointment", "appointment", clinicID, err)
	}

	s.cache.Invalidate(ctx, clinicID)

	if op == opCreate {
		s.notify(ctx, clinicID, appt.ID)
	}
	return appt, nil
}

// Delete removes the appointment. An id that matches no row is a no-op.
func (s *Service) Delete(ctx context.Context, sess *model.Session, id string) error {
	clinicID, err := service.RequireClinic(sess)
	if err != nil {
		return err
	}
	appointmentID, err := service.ParseID("id", id)
	if err != nil {
		return err
	}

	err = s.repo.Delete(ctx, clinicID, appointmentID)
	s.observe(opDelete, err)
	if err != nil {
		return service.StoreError(s.logger, "delete appointment", "appointment", clinicID, err)
	}

	s.cache.Invalidate(ctx, clinicID)
	return nil
}

func (s *Service) Get(ctx context.Context, sess *model.Session, id string) (*model.AppointmentDetail, error) {
	clinicID, err := service.RequireClinic(sess)
	if err != nil {
		return nil, err
	}
	appointmentID, err := service.ParseID("id", id)
	if err != nil {
		return nil, err
	}

	detail, err := s.repo.GetDetail(ctx, clinicID, appointmentID)
	if err != nil {
		return nil, service.StoreError(s.logger, "get appointment", "appointment", clinicID, err)
	}
	return detail, nil
}

// List returns the clinic's appointments with patient and doctor, oldest
// first, from the listing cache when it holds them.
func (s *Service) List(ctx context.Context, sess *model.Session) ([]*model.AppointmentDetail, error) {
	clinicID, err := service.RequireClinic(sess)
	if err != nil {
		return nil, err
	}

	if listing, ok := s.cache.Get(clinicID); ok {
		return listing, nil
	}

	listing, err := s.repo.ListDetails(ctx, clinicID)
	if err != nil {
		return nil, service.StoreError(s.logger, "list appointments", "appointments", clinicID, err)
	}
	s.cache.Set(clinicID, listing)
	return listing, nil
}

func (s *Service) checkAvailability(ctx context.Context, clinicID uuid.UUID, cmd *Command) error {
	doctor, err := s.doctors.Get(ctx, clinicID, cmd.DoctorID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.Validation([]apperrors.FieldError{{Field: "doctor_id", Message: "doctor not found"}})
	}
	if err != nil {
		return service.StoreError(s.logger, "get doctor", "doctor", clinicID, err)
	}

	var fields []apperrors.FieldError
	if !schedule.WeekdayInRange(cmd.Date.Weekday(), doctor.AvailableFromWeekDay, doctor.AvailableToWeekDay) {
		fields = append(fields, apperrors.FieldError{Field: "date", Message: "doctor is not available on this day"})
	}
	ok, err := schedule.Contains(doctor.AvailableFromTime, doctor.AvailableToTime, cmd.Time)
	if err != nil {
		return apperrors.Internal("doctor availability is misconfigured", err)
	}
	if !ok {
		fields = append(fields, apperrors.FieldError{Field: "time", Message: "doctor is not available at this time"})
	}

	if fields != nil {
		return apperrors.Validation(fields)
	}
	return nil
}

func (s *Service) notify(ctx context.Context, clinicID, id uuid.UUID) {
	if s.notifier == nil {
		return
	}
	detail, err := s.repo.GetDetail(ctx, clinicID, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("appointment_id", id.String()).Msg("skipping notification")
		return
	}
	s.notifier.AppointmentBooked(ctx, detail)
}

func (s *Service) observe(op string, err error) {
	if s.metrics != nil {
		s.metrics.AppointmentMutations.WithLabelValues(op, metrics.Status(err)).Inc()
	}
}
