package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cmozaiq-saas/mvp-booster/internal/models"
	"github.com/cmozaiq-saas/mvp-booster/internal/service"
	"github.com/cmozaiq-saas/mvp-booster/internal/utils"
)

// userFormFields is the explicit allow-list for the users resource forms.
var userFormFields = []string{"email", "name", "password", "is_active"}

// AdminUserHandler serves the /admin/users CRUD resource.
type AdminUserHandler struct {
	userService *service.AdminUserService
}

// NewAdminUserHandler constructs an AdminUserHandler.
func NewAdminUserHandler(userService *service.AdminUserService) *AdminUserHandler {
	return &AdminUserHandler{userService: userService}
}

// Index handles GET /admin/users.
func (h *AdminUserHandler) Index(c *gin.Context) {
	users, err := h.userService.List()
	if err != nil {
		renderServerError(c)
		return
	}
	c.HTML(http.StatusOK, "users_index", gin.H{
		"Title":  "Admin users",
		"Users":  users,
		"Notice": takeFlash(c),
	})
}

// New handles GET /admin/users/new.
func (h *AdminUserHandler) New(c *gin.Context) {
	c.HTML(http.StatusOK, "users_new", gin.H{
		"Title": "New admin user",
		"Form":  map[string]string{},
	})
}

// Show handles GET /admin/users/:id.
func (h *AdminUserHandler) Show(c *gin.Context) {
	user, ok := h.findUser(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "users_show", gin.H{
		"Title":  user.Email,
		"User":   user,
		"Notice": takeFlash(c),
	})
}

// Edit handles GET /admin/users/:id/edit.
func (h *AdminUserHandler) Edit(c *gin.Context) {
	user, ok := h.findUser(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "users_edit", gin.H{
		"Title": "Edit " + user.Email,
		"User":  user,
		"Form":  map[string]string{"email": user.Email, "name": user.Name},
	})
}

// Create handles POST /admin/users.
func (h *AdminUserHandler) Create(c *gin.Context) {
	form := map[string]string{
		"email": c.PostForm("email"),
		"name":  c.PostForm("name"),
	}

	if ve := checkAllowedFields(c, userFormFields...); ve != nil {
		h.renderNewWithErrors(c, form, ve)
		return
	}

	req := &service.CreateAdminUserRequest{
		Email:    c.PostForm("email"),
		Name:     c.PostForm("name"),
		Password: c.PostForm("password"),
		IsActive: parseActive(c.PostForm("is_active")),
	}
	user, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		if ve, ok := utils.AsValidationError(err); ok {
			h.renderNewWithErrors(c, form, ve)
			return
		}
		renderServerError(c)
		return
	}

	setFlash(c, "User "+user.Email+" created.")
	c.Redirect(http.StatusFound, "/admin/users")
}

// Update handles PATCH /admin/users/:id.
func (h *AdminUserHandler) Update(c *gin.Context) {
	user, ok := h.findUser(c)
	if !ok {
		return
	}

	form := map[string]string{
		"email": c.PostForm("email"),
		"name":  c.PostForm("name"),
	}

	if ve := checkAllowedFields(c, userFormFields...); ve != nil {
		h.renderEditWithErrors(c, user.ID, form, ve)
		return
	}

	req := &service.UpdateAdminUserRequest{
		Email:    c.PostForm("email"),
		Name:     c.PostForm("name"),
		Password: c.PostForm("password"),
		IsActive: parseActive(c.PostForm("is_active")),
	}
	updated, err := h.userService.Update(c.Request.Context(), user.ID, req)
	if err != nil {
		if ve, ok := utils.AsValidationError(err); ok {
			h.renderEditWithErrors(c, user.ID, form, ve)
			return
		}
		if errors.Is(err, utils.ErrNotFound) {
			renderNotFound(c)
			return
		}
		renderServerError(c)
		return
	}

	setFlash(c, "User "+updated.Email+" updated.")
	c.Redirect(http.StatusFound, "/admin/users")
}

// Delete handles DELETE /admin/users/:id.
func (h *AdminUserHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		renderNotFound(c)
		return
	}
	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			renderNotFound(c)
			return
		}
		renderServerError(c)
		return
	}
	setFlash(c, "User deleted.")
	c.Redirect(http.StatusFound, "/admin/users")
}

// findUser resolves :id to an AdminUser, rendering 404/500 itself when it
// cannot. The bool reports whether the caller may proceed.
func (h *AdminUserHandler) findUser(c *gin.Context) (*models.AdminUser, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		renderNotFound(c)
		return nil, false
	}
	u, err := h.userService.Get(id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			renderNotFound(c)
		} else {
			renderServerError(c)
		}
		return nil, false
	}
	return u, true
}

func (h *AdminUserHandler) renderNewWithErrors(c *gin.Context, form map[string]string, ve *utils.ValidationError) {
	c.HTML(http.StatusUnprocessableEntity, "users_new", gin.H{
		"Title":  "New admin user",
		"Form":   form,
		"Fields": ve.Fields,
	})
}

func (h *AdminUserHandler) renderEditWithErrors(c *gin.Context, id int, form map[string]string, ve *utils.ValidationError) {
	user, err := h.userService.Get(id)
	if err != nil {
		renderServerError(c)
		return
	}
	c.HTML(http.StatusUnprocessableEntity, "users_edit", gin.H{
		"Title":  "Edit " + user.Email,
		"User":   user,
		"Form":   form,
		"Fields": ve.Fields,
	})
}

// parseActive interprets the is_active select value; absence means "leave
// default / unchanged".
func parseActive(raw string) *bool {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}
