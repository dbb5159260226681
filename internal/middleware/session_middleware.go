package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cmozaiq-saas/mvp-booster/internal/models"
	"github.com/cmozaiq-saas/mvp-booster/internal/service"
)

// Context keys set by the session gate for downstream handlers.
const (
	CtxAdminUser    = "admin_user"
	CtxSessionToken = "session_token"
)

// SessionMiddleware is the authentication gate for the /admin namespace.
// Every protected request passes through Handle before reaching its handler.
type SessionMiddleware struct {
	authService *service.AdminAuthService
	cookieName  string
}

// NewSessionMiddleware constructs a SessionMiddleware.
func NewSessionMiddleware(authService *service.AdminAuthService, cookieName string) *SessionMiddleware {
	return &SessionMiddleware{authService: authService, cookieName: cookieName}
}

// Handle resolves the session cookie to an AdminUser and attaches it to the
// request context. Unauthenticated requests are redirected to the sign-in
// form — never answered with a bare 401 page.
func (m *SessionMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(m.cookieName)
		if err != nil {
			token = ""
		}

		user, authErr := m.authService.Authorize(c.Request.Context(), token)
		if authErr != nil {
			c.Redirect(http.StatusFound, "/admin/sign_in")
			c.Abort()
			return
		}

		c.Set(CtxAdminUser, user)
		c.Set(CtxSessionToken, token)
		c.Next()
	}
}

// CurrentAdmin returns the AdminUser attached by the gate, or nil on
// unprotected routes.
func CurrentAdmin(c *gin.Context) *models.AdminUser {
	if v, ok := c.Get(CtxAdminUser); ok {
		if user, ok := v.(*models.AdminUser); ok {
			return user
		}
	}
	return nil
}

// CurrentSessionToken returns the session token attached by the gate.
func CurrentSessionToken(c *gin.Context) string {
	return c.GetString(CtxSessionToken)
}
