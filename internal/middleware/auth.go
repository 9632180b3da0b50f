package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-admin/internal/handler"
	"github.com/jwalitptl/clinic-admin/pkg/auth"
)

type AuthMiddleware struct {
	tokens auth.JWTService
}

func NewAuthMiddleware(tokens auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate resolves the bearer token into a session. Requests without
// a valid token continue anonymously; RequireSession rejects them.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortRedirect(c, http.StatusUnauthorized, "invalid authorization format", handler.RedirectAuthentication)
			return
		}

		sess, err := m.tokens.ValidateToken(parts[1])
		if err != nil {
			abortRedirect(c, http.StatusUnauthorized, "invalid session", handler.RedirectAuthentication)
			return
		}

		c.Set(handler.SessionKey, sess)
		c.Next()
	}
}

// RequireSession answers 401 with a redirect to the login page when the
// request has no session.
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if handler.CurrentSession(c) == nil {
			abortRedirect(c, http.StatusUnauthorized, "authentication required", handler.RedirectAuthentication)
			return
		}
		c.Next()
	}
}

// RequireClinic answers 403 with a redirect to clinic setup when the user
// has not created or selected a clinic yet.
func (m *AuthMiddleware) RequireClinic() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := handler.CurrentSession(c)
		if sess == nil {
			abortRedirect(c, http.StatusUnauthorized, "authentication required", handler.RedirectAuthentication)
			return
		}
		if !sess.HasClinic() {
			abortRedirect(c, http.StatusForbidden, "clinic setup required", handler.RedirectClinicSetup)
			return
		}
		c.Next()
	}
}

func abortRedirect(c *gin.Context, status int, message, redirect string) {
	resp := handler.NewErrorResponse(message)
	resp.Redirect = redirect
	c.AbortWithStatusJSON(status, resp)
}
