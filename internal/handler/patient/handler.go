package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-admin/internal/handler"
	"github.com/jwalitptl/clinic-admin/internal/model"
	"github.com/jwalitptl/clinic-admin/internal/service/patient"
)

type Handler struct {
	service patient.PatientService
}

func NewHandler(service patient.PatientService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.POST("", h.CreatePatient)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.UpsertPatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	req.ID = ""

	patient, err := h.service.Upsert(c.Request.Context(), handler.CurrentSession(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.Created(c, patient)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	var req model.UpsertPatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	req.ID = c.Param("id")

	patient, err := h.service.Upsert(c.Request.Context(), handler.CurrentSession(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.OK(c, patient)
}

func (h *Handler) GetPatient(c *gin.Context) {
	patient, err := h.service.Get(c.Request.Context(), handler.CurrentSession(c), c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.OK(c, patient)
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.service.List(c.Request.Context(), handler.CurrentSession(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.OK(c, patients)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), handler.CurrentSession(c), c.Param("id")); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
