package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-admin/internal/handler"
	"github.com/jwalitptl/clinic-admin/internal/model"
	"github.com/jwalitptl/clinic-admin/internal/service/doctor"
)

type Handler struct {
	service doctor.DoctorServicer
}

func NewHandler(service doctor.DoctorServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.POST("", h.CreateDoctor)
		doctors.GET("/:id", h.GetDoctor)
		doctors.PUT("/:id", h.UpdateDoctor)
		doctors.DELETE("/:id", h.DeleteDoctor)
		doctors.GET("/:id/available-times", h.GetAvailableTimes)
	}
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	var req model.UpsertDoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	req.ID = ""

	doctor, err := h.service.Upsert(c.Request.Context(), handler.CurrentSession(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.Created(c, doctor)
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	var req model.UpsertDoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	req.ID = c.Param("id")

	doctor, err := h.service.Upsert(c.Request.Context(), handler.CurrentSession(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.OK(c, doctor)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	doctor, err := h.service.Get(c.Request.Context(), handler.CurrentSession(c), c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.OK(c, doctor)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.service.List(c.Request.Context(), handler.CurrentSession(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.OK(c, doctors)
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), handler.CurrentSession(c), c.Param("id")); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetAvailableTimes(c *gin.Context) {
	times, err := h.service.AvailableTimes(c.Request.Context(), handler.CurrentSession(c), c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.OK(c, times)
}
