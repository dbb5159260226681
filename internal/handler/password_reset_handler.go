package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cmozaiq-saas/mvp-booster/internal/middleware"
	"github.com/cmozaiq-saas/mvp-booster/internal/service"
	"github.com/cmozaiq-saas/mvp-booster/internal/utils"
)

// passwordResetFields is the allow-list for the singleton reset form.
var passwordResetFields = []string{"current_password", "new_password"}

// PasswordResetHandler serves the singleton /admin/password_reset resource
// scoped to the signed-in principal.
type PasswordResetHandler struct {
	authService *service.AdminAuthService
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(authService *service.AdminAuthService) *PasswordResetHandler {
	return &PasswordResetHandler{authService: authService}
}

// Show handles GET /admin/password_reset.
func (h *PasswordResetHandler) Show(c *gin.Context) {
	c.HTML(http.StatusOK, "password_reset", gin.H{
		"Title":  "Change password",
		"Notice": takeFlash(c),
	})
}

// Update handles POST and PATCH /admin/password_reset. On success every other
// live session of the principal is revoked; the current one stays valid.
func (h *PasswordResetHandler) Update(c *gin.Context) {
	user := middleware.CurrentAdmin(c)
	token := middleware.CurrentSessionToken(c)

	if ve := checkAllowedFields(c, passwordResetFields...); ve != nil {
		h.renderWithErrors(c, ve.Fields, "")
		return
	}

	err := h.authService.ResetPassword(
		c.Request.Context(),
		user.ID,
		token,
		c.PostForm("current_password"),
		c.PostForm("new_password"),
	)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidCredentials) {
			h.renderWithErrors(c, nil, "Current password is incorrect.")
			return
		}
		if ve, ok := utils.AsValidationError(err); ok {
			h.renderWithErrors(c, ve.Fields, "")
			return
		}
		renderServerError(c)
		return
	}

	setFlash(c, "Password changed. Other sessions have been signed out.")
	c.Redirect(http.StatusFound, "/admin/")
}

func (h *PasswordResetHandler) renderWithErrors(c *gin.Context, fields map[string]string, message string) {
	c.HTML(http.StatusUnprocessableEntity, "password_reset", gin.H{
		"Title":  "Change password",
		"Fields": fields,
		"Error":  message,
	})
}
