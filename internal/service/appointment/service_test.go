package appointment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-admin/internal/model"
	"github.com/jwalitptl/clinic-admin/internal/repository"
	apperrors "github.com/jwalitptl/clinic-admin/pkg/errors"
	"github.com/jwalitptl/clinic-admin/pkg/logger"
	"github.com/jwalitptl/clinic-admin/pkg/metrics"
	"github.com/jwalitptl/clinic-admin/pkg/validator"
)

type fakeRepo struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]*model.Appointment
	calls int
	err   error
	// owners maps patient and doctor ids to their clinic; ids it does not
	// know are accepted.
	owners map[uuid.UUID]uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[uuid.UUID]*model.Appointment{}}
}

func (r *fakeRepo) touch() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.err
}

// checkRefs mirrors the composite foreign keys on appointments.
func (r *fakeRepo) checkRefs(a *model.Appointment) error {
	for _, id := range []uuid.UUID{a.PatientID, a.DoctorID} {
		if clinicID, ok := r.owners[id]; ok && clinicID != a.ClinicID {
			return fmt.Errorf("%w: appointments_clinic_fkey", repository.ErrReferenceNotFound)
		}
	}
	return nil
}

func (r *fakeRepo) Create(_ context.Context, a *model.Appointment) error {
	if err := r.touch(); err != nil {
		return err
	}
	if err := r.checkRefs(a); err != nil {
		return err
	}
	a.Touch(time.Now())
	cp := *a
	r.rows[a.ID] = &cp
	return nil
}

func (r *fakeRepo) Update(_ context.Context, a *model.Appointment) error {
	if err := r.touch(); err != nil {
		return err
	}
	existing, ok := r.rows[a.ID]
	if !ok || existing.ClinicID != a.ClinicID {
		return repository.ErrNotFound
	}
	if err := r.checkRefs(a); err != nil {
		return err
	}
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = time.Now()
	cp := *a
	r.rows[a.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, clinicID, id uuid.UUID) error {
	if err := r.touch(); err != nil {
		return err
	}
	if a, ok := r.rows[id]; ok && a.ClinicID == clinicID {
		delete(r.rows, id)
	}
	return nil
}

func (r *fakeRepo) GetDetail(_ context.Context, clinicID, id uuid.UUID) (*model.AppointmentDetail, error) {
	if err := r.touch(); err != nil {
		return nil, err
	}
	a, ok := r.rows[id]
	if !ok || a.ClinicID != clinicID {
		return nil, repository.ErrNotFound
	}
	return &model.AppointmentDetail{Appointment: *a, Patient: model.Patient{Email: "p@example.com"}}, nil
}

func (r *fakeRepo) ListDetails(_ context.Context, clinicID uuid.UUID) ([]*model.AppointmentDetail, error) {
	if err := r.touch(); err != nil {
		return nil, err
	}
	out := []*model.AppointmentDetail{}
	for _, a := range r.rows {
		if a.ClinicID == clinicID {
			out = append(out, &model.AppointmentDetail{Appointment: *a})
		}
	}
	return out, nil
}

type fakeDoctors struct {
	repository.DoctorRepository
	doctor *model.Doctor
}

func (f *fakeDoctors) Get(_ context.Context, clinicID, id uuid.UUID) (*model.Doctor, error) {
	if f.doctor == nil || f.doctor.ID != id || f.doctor.ClinicID != clinicID {
		return nil, repository.ErrNotFound
	}
	return f.doctor, nil
}

type fakeCache struct {
	listings    map[uuid.UUID][]*model.AppointmentDetail
	invalidated []uuid.UUID
}

func newFakeCache() *fakeCache {
	return &fakeCache{listings: map[uuid.UUID][]*model.AppointmentDetail{}}
}

func (c *fakeCache) Get(id uuid.UUID) ([]*model.AppointmentDetail, bool) {
	l, ok := c.listings[id]
	return l, ok
}

func (c *fakeCache) Set(id uuid.UUID, l []*model.AppointmentDetail) { c.listings[id] = l }

func (c *fakeCache) Invalidate(_ context.Context, id uuid.UUID) {
	delete(c.listings, id)
	c.invalidated = append(c.invalidated, id)
}

type fakeNotifier struct {
	booked []*model.AppointmentDetail
}

func (n *fakeNotifier) AppointmentBooked(_ context.Context, d *model.AppointmentDetail) {
	n.booked = append(n.booked, d)
}

type fixture struct {
	svc      *Service
	repo     *fakeRepo
	doctors  *fakeDoctors
	cache    *fakeCache
	notifier *fakeNotifier
	metrics  *metrics.Metrics
	session  *model.Session
	loc      *time.Location
}

func newFixture(t *testing.T, enforce bool) *fixture {
	t.Helper()
	f := &fixture{
		repo:     newFakeRepo(),
		doctors:  &fakeDoctors{},
		cache:    newFakeCache(),
		notifier: &fakeNotifier{},
		metrics:  metrics.NewMetrics(nil, "test"),
		loc:      time.FixedZone("BRT", -3*60*60),
		session: &model.Session{
			UserID: uuid.New(),
			Clinic: &model.SessionClinic{ID: uuid.New(), Name: "Central"},
		},
	}
	f.svc = NewService(f.repo, f.doctors, f.cache, f.notifier, validator.New(), Options{
		Location:            f.loc,
		EnforceAvailability: enforce,
		Metrics:             f.metrics,
		Logger:              logger.Nop(),
	})
	return f
}

func validRequest() *model.UpsertAppointmentRequest {
	return &model.UpsertAppointmentRequest{
		PatientID: uuid.NewString(),
		DoctorID:  uuid.NewString(),
		Date:      "2024-06-01",
		Time:      "14:30",
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, apperrors.ErrValidation, appErr.Code)
	out := map[string]string{}
	for _, f := range appErr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestCreateCombinesDateAndTime(t *testing.T) {
	f := newFixture(t, false)
	req := validRequest()

	appt, err := f.svc.Upsert(context.Background(), f.session, req)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, appt.ID)
	assert.Equal(t, f.session.Clinic.ID, appt.ClinicID)
	assert.Equal(t, time.Date(2024, 6, 1, 14, 30, 0, 0, f.loc), appt.Date)
	assert.Equal(t, "2024-06-01T14:30:00-03:00", appt.Date.Format(time.RFC3339))
	assert.Len(t, f.repo.rows, 1)
	assert.Equal(t, []uuid.UUID{f.session.Clinic.ID}, f.cache.invalidated)
	assert.Len(t, f.notifier.booked, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AppointmentMutations.WithLabelValues("create", "success")))
}

func TestEmptyIdentifiersRejectedBeforeStoreAccess(t *testing.T) {
	f := newFixture(t, false)

	req := validRequest()
	req.PatientID = ""
	req.DoctorID = ""

	_, err := f.svc.Upsert(context.Background(), f.session, req)
	fields := fieldsOf(t, err)
	assert.Equal(t, "is required", fields["patient_id"])
	assert.Equal(t, "is required", fields["doctor_id"])
	assert.Zero(t, f.repo.calls)
	assert.Empty(t, f.cache.invalidated)
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*model.UpsertAppointmentRequest)
		field string
	}{
		{"bad date", func(r *model.UpsertAppointmentRequest) { r.Date = "2024-02-30" }, "date"},
		{"missing date", func(r *model.UpsertAppointmentRequest) { r.Date = "" }, "date"},
		{"missing time", func(r *model.UpsertAppointmentRequest) { r.Time = "" }, "time"},
		{"unpadded time", func(r *model.UpsertAppointmentRequest) { r.Time = "9:30" }, "time"},
		{"bad patient id", func(r *model.UpsertAppointmentRequest) { r.PatientID = "nope" }, "patient_id"},
		{"bad appointment id", func(r *model.UpsertAppointmentRequest) { r.ID = "nope" }, "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			req := validRequest()
			tt.edit(req)

			_, err := f.svc.Upsert(context.Background(), f.session, req)
			assert.Contains(t, fieldsOf(t, err), tt.field)
			assert.Zero(t, f.repo.calls)
		})
	}
}

func TestUpdateExisting(t *testing.T) {
	f := newFixture(t, false)
	created, err := f.svc.Upsert(context.Background(), f.session, validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.ID = created.ID.String()
	req.Time = "09:00"
	updated, err := f.svc.Upsert(context.Background(), f.session, req)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.CreatedAt.IsZero())
	assert.Equal(t, 9, f.repo.rows[created.ID].Date.Hour())
	assert.Len(t, f.cache.invalidated, 2)
	assert.Len(t, f.notifier.booked, 1)
}

func TestUpdateMissingIsNotFound(t *testing.T) {
	f := newFixture(t, false)
	req := validRequest()
	req.ID = uuid.NewString()

	_, err := f.svc.Upsert(context.Background(), f.session, req)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.Empty(t, f.cache.invalidated)
}

func TestDeleteNonexistentIsNoop(t *testing.T) {
	f := newFixture(t, false)

	err := f.svc.Delete(context.Background(), f.session, uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.calls)
	assert.Len(t, f.cache.invalidated, 1)
}

func TestDeleteRejectsMalformedID(t *testing.T) {
	f := newFixture(t, false)
	err := f.svc.Delete(context.Background(), f.session, "42")
	assert.Contains(t, fieldsOf(t, err), "id")
	assert.Zero(t, f.repo.calls)
}

func TestStoreFailureIsGeneric(t *testing.T) {
	f := newFixture(t, false)
	f.repo.err = errors.New("connection reset")

	_, err := f.svc.Upsert(context.Background(), f.session, validRequest())
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrInternal, appErr.Code)
	assert.Equal(t, "failed to create appointment", appErr.Message)
	assert.Empty(t, f.cache.invalidated)
	assert.Equal(t, 1, f.repo.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AppointmentMutations.WithLabelValues("create", "error")))
}

func TestMissingReferenceIsBadRequest(t *testing.T) {
	f := newFixture(t, false)
	f.repo.err = repository.ErrReferenceNotFound

	_, err := f.svc.Upsert(context.Background(), f.session, validRequest())
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestForeignClinicReferencesRejected(t *testing.T) {
	f := newFixture(t, false)
	otherClinic := uuid.New()

	patientID, doctorID := uuid.New(), uuid.New()
	f.repo.owners = map[uuid.UUID]uuid.UUID{
		patientID: otherClinic,
		doctorID:  f.session.Clinic.ID,
	}

	req := validRequest()
	req.PatientID = patientID.String()
	req.DoctorID = doctorID.String()
	_, err := f.svc.Upsert(context.Background(), f.session, req)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	assert.Equal(t, "referenced record does not exist", appErr.Message)
	assert.Empty(t, f.repo.rows)
	assert.Empty(t, f.cache.invalidated)
	assert.Empty(t, f.notifier.booked)

	f.repo.owners[doctorID] = otherClinic
	f.repo.owners[patientID] = f.session.Clinic.ID
	_, err = f.svc.Upsert(context.Background(), f.session, req)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestSessionRequired(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.svc.Upsert(context.Background(), nil, validRequest())
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))

	_, err = f.svc.List(context.Background(), &model.Session{UserID: uuid.New()})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	assert.Zero(t, f.repo.calls)
}

func TestListUsesCache(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.svc.Upsert(context.Background(), f.session, validRequest())
	require.NoError(t, err)
	callsAfterCreate := f.repo.calls

	first, err := f.svc.List(context.Background(), f.session)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := f.svc.List(context.Background(), f.session)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterCreate+1, f.repo.calls)
}

func TestListIsClinicScoped(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.svc.Upsert(context.Background(), f.session, validRequest())
	require.NoError(t, err)

	other := &model.Session{UserID: uuid.New(), Clinic: &model.SessionClinic{ID: uuid.New()}}
	got, err := f.svc.List(context.Background(), other)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEnforceAvailability(t *testing.T) {
	f := newFixture(t, true)
	doctor := &model.Doctor{
		Base:                 model.Base{ID: uuid.New()},
		ClinicID:             f.session.Clinic.ID,
		AvailableFromWeekDay: 1,
		AvailableToWeekDay:   5,
		AvailableFromTime:    "08:00",
		AvailableToTime:      "12:00",
	}
	f.doctors.doctor = doctor

	// 2024-06-03 is a Monday.
	req := validRequest()
	req.DoctorID = doctor.ID.String()
	req.Date = "2024-06-03"
	req.Time = "09:30"
	_, err := f.svc.Upsert(context.Background(), f.session, req)
	require.NoError(t, err)

	req.Time = "12:00"
	fields := fieldsOf(t, mustErr(f.svc.Upsert(context.Background(), f.session, req)))
	assert.Equal(t, "doctor is not available at this time", fields["time"])

	req.Time = "09:30"
	req.Date = "2024-06-01"
	fields = fieldsOf(t, mustErr(f.svc.Upsert(context.Background(), f.session, req)))
	assert.Equal(t, "doctor is not available on this day", fields["date"])

	req.DoctorID = uuid.NewString()
	fields = fieldsOf(t, mustErr(f.svc.Upsert(context.Background(), f.session, req)))
	assert.Equal(t, "doctor not found", fields["doctor_id"])
}

func TestAvailabilityNotEnforcedByDefault(t *testing.T) {
	f := newFixture(t, false)
	req := validRequest()
	req.Time = "03:15"

	_, err := f.svc.Upsert(context.Background(), f.session, req)
	assert.NoError(t, err)
}

func mustErr(_ *model.Appointment, err error) error {
	return err
}

func TestCreateWithoutNotifier(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeDoctors{}, newFakeCache(), nil, validator.New(), Options{Logger: logger.Nop()})
	sess := &model.Session{UserID: uuid.New(), Clinic: &model.SessionClinic{ID: uuid.New()}}

	_, err := svc.Upsert(context.Background(), sess, validRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls, "no detail lookup without a notifier")
}
