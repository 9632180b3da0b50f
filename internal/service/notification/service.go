package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-admin/internal/email"
	"github.com/jwalitptl/clinic-admin/internal/model"
	"github.com/jwalitptl/clinic-admin/pkg/metrics"
)

const sendTimeout = 10 * time.Second

type Service interface {
	// AppointmentBooked tells the patient about a new appointment. It is best
	// effort: failures are logged and counted, never returned.
	AppointmentBooked(ctx context.Context, detail *model.AppointmentDetail)
}

var bookedTemplate = template.Must(template.New("booked").Parse(
	`<p>Hello {{.Patient.Name}},</p>
<p>Your appointment with {{.Doctor.Name}} ({{.Doctor.Specialty}}) is booked for {{.When}}.</p>`))

type service struct {
	mailer  email.Service
	metrics *metrics.Metrics
	logger  zerolog.Logger
	loc     *time.Location
}

func NewService(mailer email.Service, m *metrics.Metrics, loc *time.Location, logger zerolog.Logger) Service {
	if loc == nil {
		loc = time.Local
	}
	return &service{
		mailer:  mailer,
		metrics: m,
		logger:  logger.With().Str("component", "notification").Logger(),
		loc:     loc,
	}
}

func (s *service) AppointmentBooked(ctx context.Context, detail *model.AppointmentDetail) {
	if detail == nil || detail.Patient.Email == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	err := s.send(ctx, detail)
	if s.metrics != nil {
		s.metrics.NotificationsSent.WithLabelValues(metrics.Status(err)).Inc()
	}
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("appointment_id", detail.ID.String()).
			Msg("failed to send appointment notification")
	}
}

func (s *service) send(ctx context.Context, detail *model.AppointmentDetail) error {
	when := detail.Date.In(s.loc).Format("02/01/2006 15:04")

	var body bytes.Buffer
	if err := bookedTemplate.Execute(&body, struct {
		Patient model.Patient
		Doctor  model.Doctor
		When    string
	}{detail.Patient, detail.Doctor, when}); err != nil {
		return fmt.Errorf("failed to render notification: %w", err)
	}

	return s.mailer.Send(ctx, email.Message{
		To:       detail.Patient.Email,
		Subject:  fmt.Sprintf("Appointment booked for %s", when),
		HTMLBody: body.String(),
		TextBody: fmt.Sprintf("Your appointment with %s is booked for %s.", detail.Doctor.Name, when),
	})
}
