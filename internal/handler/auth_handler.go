package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cmozaiq-saas/mvp-booster/internal/config"
	"github.com/cmozaiq-saas/mvp-booster/internal/service"
	"github.com/cmozaiq-saas/mvp-booster/internal/utils"
)

// AuthHandler serves the sign-in and sign-out endpoints of the admin
// namespace.
type AuthHandler struct {
	authService *service.AdminAuthService
	session     config.SessionConfig
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(authService *service.AdminAuthService, session config.SessionConfig) *AuthHandler {
	return &AuthHandler{authService: authService, session: session}
}

// ShowSignIn handles GET /admin/sign_in. An already-authenticated browser is
// sent straight to the dashboard.
func (h *AuthHandler) ShowSignIn(c *gin.Context) {
	if token, err := c.Cookie(h.session.CookieName); err == nil && token != "" {
		if _, err := h.authService.Authorize(c.Request.Context(), token); err == nil {
			c.Redirect(http.StatusFound, "/admin/")
			return
		}
	}
	c.HTML(http.StatusOK, "sign_in", gin.H{
		"Title":  "Sign in",
		"Email":  "",
		"Notice": takeFlash(c),
	})
}

// SignIn handles POST /admin/sign_in. Failure re-renders the form with one
// generic message, whichever of email or password was wrong.
func (h *AuthHandler) SignIn(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	sess, _, err := h.authService.SignIn(c.Request.Context(), email, password)
	if err != nil {
		if errors.Is(err, utils.ErrPersistenceUnavailable) {
			renderServerError(c)
			return
		}
		c.HTML(http.StatusUnprocessableEntity, "sign_in", gin.H{
			"Title": "Sign in",
			"Email": email,
			"Error": "Invalid email or password.",
		})
		return
	}

	h.setSessionCookie(c, sess.Token, int(h.session.TTL.Seconds()))
	setFlash(c, "Signed in.")
	c.Redirect(http.StatusFound, "/admin/")
}

// SignOut handles DELETE /admin/sign_out. The session is destroyed
// server-side, not just forgotten by the browser; signing out twice is fine.
func (h *AuthHandler) SignOut(c *gin.Context) {
	token, err := c.Cookie(h.session.CookieName)
	if err != nil {
		token = ""
	}
	if err := h.authService.SignOut(c.Request.Context(), token); err != nil {
		renderServerError(c)
		return
	}
	h.setSessionCookie(c, "", -1)
	setFlash(c, "Signed out.")
	c.Redirect(http.StatusFound, "/admin/sign_in")
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.session.CookieName, token, maxAge, "/", "", h.session.CookieSecure, true)
}
