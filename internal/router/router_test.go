package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-admin/internal/handler"
	prommw "github.com/jwalitptl/clinic-admin/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-admin/internal/middleware"
	"github.com/jwalitptl/clinic-admin/internal/model"
	"github.com/jwalitptl/clinic-admin/pkg/auth"
)

// stubHandler answers GET <path> with the session's clinic id.
type stubHandler struct {
	path       string
	clinicPath string
}

func (h stubHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET(h.path, reply)
}

func (h stubHandler) RegisterClinicRoutes(r *gin.RouterGroup) {
	r.GET(h.clinicPath, reply)
}

func reply(c *gin.Context) {
	handler.OK(c, handler.CurrentSession(c))
}

func newTestRouter(t *testing.T) (*gin.Engine, auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewJWTService("test-secret", "clinic-api", time.Hour)
	r := NewRouter(
		middleware.NewAuthMiddleware(tokens),
		Handlers{
			Clinic:      stubHandler{path: "/clinics", clinicPath: "/clinics/current"},
			Doctor:      stubHandler{path: "/doctors"},
			Patient:     stubHandler{path: "/patients"},
			Appointment: stubHandler{path: "/appointments"},
		},
		prommw.New(prometheus.NewRegistry(), "test"),
		zerolog.Nop(),
		RouterConfig{Mode: gin.TestMode, RequestTimeout: time.Second, CORSConfig: middleware.DefaultCORSConfig()},
	)
	r.Setup()
	return r.Engine(), tokens
}

func get(t *testing.T, r http.Handler, path, token string) (*httptest.ResponseRecorder, handler.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp handler.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestAnonymousIsRedirectedToAuthentication(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, path := range []string{"/api/v1/clinics", "/api/v1/appointments", "/api/v1/doctors"} {
		w, resp := get(t, r, path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Equal(t, handler.RedirectAuthentication, resp.Redirect, path)
	}
}

func TestInvalidTokenIsRejected(t *testing.T) {
	r, _ := newTestRouter(t)

	w, resp := get(t, r, "/api/v1/clinics", "not-a-token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, handler.RedirectAuthentication, resp.Redirect)
}

func TestUserWithoutClinic(t *testing.T) {
	r, tokens := newTestRouter(t)
	token, err := tokens.GenerateSessionToken(&model.Session{UserID: uuid.New(), Email: "ana@example.com"})
	require.NoError(t, err)

	w, _ := get(t, r, "/api/v1/clinics", token)
	assert.Equal(t, http.StatusOK, w.Code)

	for _, path := range []string{"/api/v1/clinics/current", "/api/v1/patients", "/api/v1/appointments"} {
		w, resp := get(t, r, path, token)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
		assert.Equal(t, handler.RedirectClinicSetup, resp.Redirect, path)
	}
}

func TestUserWithClinic(t *testing.T) {
	r, tokens := newTestRouter(t)
	clinicID := uuid.New()
	token, err := tokens.GenerateSessionToken(&model.Session{
		UserID: uuid.New(),
		Clinic: &model.SessionClinic{ID: clinicID, Name: "Sorriso"},
	})
	require.NoError(t, err)

	w, resp := get(t, r, "/api/v1/appointments", token)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	clinic, ok := data["clinic"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, clinicID.String(), clinic["id"])
}
