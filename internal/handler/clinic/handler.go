package clinic

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-admin/internal/handler"
	"github.com/jwalitptl/clinic-admin/internal/model"
	"github.com/jwalitptl/clinic-admin/internal/service/clinic"
)

type Handler struct {
	service clinic.ClinicServicer
}

func NewHandler(service clinic.ClinicServicer) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts routes that need a user only; clinic creation is
// how a user without a clinic gets one.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	clinics := r.Group("/clinics")
	{
		clinics.GET("", h.ListClinics)
		clinics.POST("", h.CreateClinic)
	}
}

// RegisterClinicRoutes mounts routes that need a selected clinic.
func (h *Handler) RegisterClinicRoutes(r *gin.RouterGroup) {
	r.GET("/clinics/current", h.GetCurrentClinic)
}

func (h *Handler) CreateClinic(c *gin.Context) {
	var req model.CreateClinicRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.CreateClinic(c.Request.Context(), handler.CurrentSession(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.Created(c, resp)
}

func (h *Handler) GetCurrentClinic(c *gin.Context) {
	clinic, err := h.service.GetCurrent(c.Request.Context(), handler.CurrentSession(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.OK(c, clinic)
}

func (h *Handler) ListClinics(c *gin.Context) {
	clinics, err := h.service.ListMine(c.Request.Context(), handler.CurrentSession(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.OK(c, clinics)
}
