package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cmozaiq-saas/mvp-booster/internal/utils"
)

// flashCookie holds a one-shot notice across a post-redirect-get hop.
const flashCookie = "admin_flash"

// setFlash stores a notice for the next rendered page.
func setFlash(c *gin.Context, message string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, message, 60, "/", "", false, true)
}

// takeFlash reads and clears the pending notice, if any.
func takeFlash(c *gin.Context) string {
	msg, err := c.Cookie(flashCookie)
	if err != nil || msg == "" {
		return ""
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	return msg
}

// renderError renders the shared error page.
func renderError(c *gin.Context, status int, message string) {
	c.HTML(status, "error", gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
	})
}

// renderNotFound renders the 404 page.
func renderNotFound(c *gin.Context) {
	renderError(c, http.StatusNotFound, "The record you were looking for does not exist.")
}

// renderServerError renders the generic 500 page. Persistence outages end up
// here; no detail leaks to the browser.
func renderServerError(c *gin.Context) {
	renderError(c, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

// checkAllowedFields rejects any submitted form field outside the allow-list.
// Rejection (rather than silently dropping) is the consistent choice across
// every form in the admin namespace.
func checkAllowedFields(c *gin.Context, allowed ...string) *utils.ValidationError {
	if err := c.Request.ParseForm(); err != nil {
		return utils.NewValidationError(map[string]string{"form": "could not be parsed"})
	}
	allowedSet := map[string]bool{"_method": true}
	for _, f := range allowed {
		allowedSet[f] = true
	}
	fields := map[string]string{}
	for name := range c.Request.PostForm {
		if !allowedSet[name] {
			fields[name] = "is not a permitted field"
		}
	}
	if len(fields) > 0 {
		return utils.NewValidationError(fields)
	}
	return nil
}
