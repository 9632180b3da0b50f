package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-admin/internal/handler"
	"github.com/jwalitptl/clinic-admin/internal/model"
	"github.com/jwalitptl/clinic-admin/internal/service/appointment"
)

type Handler struct {
	service appointment.AppointmentServicer
}

func NewHandler(service appointment.AppointmentServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.POST("", h.CreateAppointment)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.DELETE("/:id", h.DeleteAppointment)
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.UpsertAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	req.ID = ""

	appointment, err := h.service.Upsert(c.Request.Context(), handler.CurrentSession(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.Created(c, appointment)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	var req model.UpsertAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	req.ID = c.Param("id")

	appointment, err := h.service.Upsert(c.Request.Context(), handler.CurrentSession(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.OK(c, appointment)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), handler.CurrentSession(c), c.Param("id")); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	appointment, err := h.service.Get(c.Request.Context(), handler.CurrentSession(c), c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.OK(c, appointment)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	appointments, err := h.service.List(c.Request.Context(), handler.CurrentSession(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.OK(c, appointments)
}
