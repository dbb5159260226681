package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cmozaiq-saas/mvp-booster/internal/config"
	"github.com/cmozaiq-saas/mvp-booster/internal/middleware"
	"github.com/cmozaiq-saas/mvp-booster/internal/models"
	"github.com/cmozaiq-saas/mvp-booster/internal/service"
	"github.com/cmozaiq-saas/mvp-booster/internal/session"
	"github.com/cmozaiq-saas/mvp-booster/internal/utils"
	"github.com/cmozaiq-saas/mvp-booster/web"
)

const (
	testEmail    = "ops@example.com"
	testPassword = "Str0ngP@ss"
	cookieName   = "admin_session"
)

// fakeAdminStore is a minimal in-memory AdminUserStore for handler tests.
type fakeAdminStore struct {
	mu     sync.Mutex
	users  map[int]*models.AdminUser
	nextID int
}

func newFakeAdminStore() *fakeAdminStore {
	return &fakeAdminStore{users: map[int]*models.AdminUser{}, nextID: 1}
}

func (f *fakeAdminStore) add(email, passwordHash string, active bool) *models.AdminUser {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := &models.AdminUser{
		ID:           f.nextID,
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		IsActive:     active,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.users[user.ID] = user
	f.nextID++
	return user
}

func (f *fakeAdminStore) GetByEmail(email string) (*models.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeAdminStore) GetByID(id int) (*models.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeAdminStore) List() ([]*models.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.AdminUser, 0, len(f.users))
	for _, u := range f.users {
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeAdminStore) Create(user *models.AdminUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return utils.NewValidationError(map[string]string{"email": "is already taken"})
		}
	}
	user.ID = f.nextID
	f.nextID++
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeAdminStore) Update(user *models.AdminUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.users[user.ID]
	if !ok {
		return utils.ErrNotFound
	}
	existing.Email = strings.ToLower(user.Email)
	existing.Name = user.Name
	existing.IsActive = user.IsActive
	return nil
}

func (f *fakeAdminStore) UpdatePasswordHash(id int, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return utils.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeAdminStore) TouchLastLogin(id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return utils.ErrNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	return nil
}

func (f *fakeAdminStore) Delete(id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return utils.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

// testEnv wires the same routes as cmd/api against in-memory stores.
type testEnv struct {
	handler  http.Handler
	store    *fakeAdminStore
	sessions *session.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newFakeAdminStore()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	store.add(testEmail, string(hash), true)

	sessions := session.NewMemoryStore()
	sessCfg := config.SessionConfig{TTL: time.Hour, CookieName: cookieName}

	authSvc := service.NewAdminAuthService(store, sessions, sessCfg.TTL)
	userSvc := service.NewAdminUserService(store, sessions)

	authHandler := NewAuthHandler(authSvc, sessCfg)
	homeHandler := NewHomeHandler()
	usersHandler := NewAdminUserHandler(userSvc)
	resetHandler := NewPasswordResetHandler(authSvc)
	sessionMw := middleware.NewSessionMiddleware(authSvc, sessCfg.CookieName)

	router := gin.New()
	router.SetHTMLTemplate(web.Templates())

	admin := router.Group("/admin")
	admin.GET("/sign_in", authHandler.ShowSignIn)
	admin.POST("/sign_in", authHandler.SignIn)
	admin.DELETE("/sign_out", authHandler.SignOut)

	protected := admin.Group("")
	protected.Use(sessionMw.Handle())
	{
		protected.GET("/", homeHandler.Home)
		protected.GET("/users", usersHandler.Index)
		protected.GET("/users/new", usersHandler.New)
		protected.POST("/users", usersHandler.Create)
		protected.GET("/users/:id", usersHandler.Show)
		protected.GET("/users/:id/edit", usersHandler.Edit)
		protected.PATCH("/users/:id", usersHandler.Update)
		protected.DELETE("/users/:id", usersHandler.Delete)
		protected.GET("/password_reset", resetHandler.Show)
		protected.POST("/password_reset", resetHandler.Update)
		protected.PATCH("/password_reset", resetHandler.Update)
	}

	return &testEnv{
		handler:  middleware.MethodOverride(router),
		store:    store,
		sessions: sessions,
	}
}

func (e *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

// signIn performs a real sign-in and returns the session cookie.
func (e *testEnv) signIn(t *testing.T) *http.Cookie {
	t.Helper()
	w := e.postForm("/admin/sign_in", url.Values{
		"email":    {testEmail},
		"password": {testPassword},
	})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/admin/", w.Header().Get("Location"))
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("sign-in did not set a session cookie")
	return nil
}
