package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-admin/internal/model"
	"github.com/jwalitptl/clinic-admin/internal/service"
	apperrors "github.com/jwalitptl/clinic-admin/pkg/errors"
)

const (
	// SessionKey is the gin context key holding the *model.Session.
	SessionKey = "session"

	RedirectAuthentication = "/authentication"
	RedirectClinicSetup    = "/clinic-form"
)

type Response struct {
	Status   string                 `json:"status"`
	Message  string                 `json:"message,omitempty"`
	Data     interface{}            `json:"data,omitempty"`
	Errors   []apperrors.FieldError `json:"errors,omitempty"`
	Redirect string                 `json:"redirect,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError writes err as an error envelope and aborts the chain.
// Errors that are not AppErrors are reported as a generic 500.
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)

	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal("", err)
	}

	resp := NewErrorResponse(appErr.Message)
	resp.Errors = appErr.Fields
	switch {
	case appErr.Code == apperrors.ErrUnauthorized:
		resp.Redirect = RedirectAuthentication
	case errors.Is(err, service.ErrNoClinic):
		resp.Redirect = RedirectClinicSetup
	}

	c.AbortWithStatusJSON(appErr.StatusCode(), resp)
}

// BindJSON decodes the request body into dst, answering 400 on malformed
// JSON. It reports whether the handler should continue.
func BindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, apperrors.BadRequest("invalid request body", err))
		return false
	}
	return true
}

// CurrentSession returns the session stored by the session middleware, or
// nil when the request is anonymous.
func CurrentSession(c *gin.Context) *model.Session {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*model.Session)
	return sess
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, NewSuccessResponse(data))
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, NewSuccessResponse(data))
}
