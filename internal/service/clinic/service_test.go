package clinic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-admin/internal/model"
	"github.com/jwalitptl/clinic-admin/pkg/auth"
	apperrors "github.com/jwalitptl/clinic-admin/pkg/errors"
	"github.com/jwalitptl/clinic-admin/pkg/logger"
	"github.com/jwalitptl/clinic-admin/pkg/validator"
)

type fakeRepo struct {
	clinics map[uuid.UUID]*model.Clinic
	links   map[uuid.UUID][]uuid.UUID
	err     error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{clinics: map[uuid.UUID]*model.Clinic{}, links: map[uuid.UUID][]uuid.UUID{}}
}

func (r *fakeRepo) CreateForUser(_ context.Context, c *model.Clinic, userID uuid.UUID) error {
	if r.err != nil {
		return r.err
	}
	c.Touch(time.Now())
	r.clinics[c.ID] = c
	r.links[userID] = append(r.links[userID], c.ID)
	return nil
}

func (r *fakeRepo) Get(_ context.Context, id uuid.UUID) (*model.Clinic, error) {
	return r.clinics[id], nil
}

func (r *fakeRepo) ListUserClinics(_ context.Context, userID uuid.UUID) ([]*model.Clinic, error) {
	out := []*model.Clinic{}
	for _, id := range r.links[userID] {
		out = append(out, r.clinics[id])
	}
	return out, nil
}

func TestCreateClinicIssuesTokenWithClinic(t *testing.T) {
	repo := newFakeRepo()
	tokens := auth.NewJWTService("secret", "clinic-api", time.Hour)
	svc := NewService(repo, tokens, validator.New(), logger.Nop())
	sess := &model.Session{UserID: uuid.New(), Email: "ana@example.com"}

	resp, err := svc.CreateClinic(context.Background(), sess, &model.CreateClinicRequest{Name: " Central "})
	require.NoError(t, err)
	assert.Equal(t, "Central", resp.Clinic.Name)
	assert.Equal(t, []uuid.UUID{resp.Clinic.ID}, repo.links[sess.UserID])
	assert.Nil(t, sess.Clinic)

	next, err := tokens.ValidateToken(resp.Token)
	require.NoError(t, err)
	require.True(t, next.HasClinic())
	assert.Equal(t, resp.Clinic.ID, next.Clinic.ID)
	assert.Equal(t, sess.UserID, next.UserID)

	mine, err := svc.ListMine(context.Background(), sess)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestCreateClinicRequiresUser(t *testing.T) {
	svc := NewService(newFakeRepo(), auth.NewJWTService("s", "", time.Hour), validator.New(), logger.Nop())
	_, err := svc.CreateClinic(context.Background(), nil, &model.CreateClinicRequest{Name: "X"})
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}

func TestCreateClinicValidatesName(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, auth.NewJWTService("s", "", time.Hour), validator.New(), logger.Nop())
	_, err := svc.CreateClinic(context.Background(), &model.Session{UserID: uuid.New()}, &model.CreateClinicRequest{Name: "  "})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	assert.Empty(t, repo.clinics)
}

func TestCreateClinicStoreFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("tx aborted")
	svc := NewService(repo, auth.NewJWTService("s", "", time.Hour), validator.New(), logger.Nop())
	_, err := svc.CreateClinic(context.Background(), &model.Session{UserID: uuid.New()}, &model.CreateClinicRequest{Name: "X"})
	assert.True(t, apperrors.Is(err, apperrors.ErrInternal))
}
