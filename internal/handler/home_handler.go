package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cmozaiq-saas/mvp-booster/internal/middleware"
)

// HomeHandler renders the admin namespace home page.
type HomeHandler struct{}

// NewHomeHandler constructs a HomeHandler.
func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// Home handles GET /admin/.
func (h *HomeHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home", gin.H{
		"Title":       "Dashboard",
		"CurrentUser": middleware.CurrentAdmin(c),
		"Notice":      takeFlash(c),
	})
}
