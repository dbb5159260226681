package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/cmozaiq-saas/mvp-booster/internal/models"
	"github.com/cmozaiq-saas/mvp-booster/internal/session"
	"github.com/cmozaiq-saas/mvp-booster/internal/utils"
)

// AdminUserService handles admin-user management behind the authentication
// gate: listing, provisioning, profile updates, and removal.
type AdminUserService struct {
	adminStore AdminUserStore
	sessions   session.Store
}

// NewAdminUserService constructs an AdminUserService.
func NewAdminUserService(adminStore AdminUserStore, sessions session.Store) *AdminUserService {
	return &AdminUserService{adminStore: adminStore, sessions: sessions}
}

// CreateAdminUserRequest carries the allow-listed fields for creation.
type CreateAdminUserRequest struct {
	Email    string
	Name     string
	Password string
	IsActive *bool
}

// UpdateAdminUserRequest carries the allow-listed fields for update.
// An empty Password leaves the stored secret untouched.
type UpdateAdminUserRequest struct {
	Email    string
	Name     string
	Password string
	IsActive *bool
}

// List retrieves all admin users, newest first.
func (s *AdminUserService) List() ([]*models.AdminUser, error) {
	return s.adminStore.List()
}

// Get retrieves a single admin user by id.
func (s *AdminUserService) Get(id int) (*models.AdminUser, error) {
	return s.adminStore.GetByID(id)
}

// Create provisions a new admin user. The secret is hashed before anything is
// persisted; the unique index on lower(email) backs the duplicate check.
func (s *AdminUserService) Create(ctx context.Context, req *CreateAdminUserRequest) (*models.AdminUser, error) {
	fields := map[string]string{}
	validateEmail(req.Email, fields)
	if msg := validatePassword(req.Password); msg != "" {
		fields["password"] = msg
	}
	if len(fields) > 0 {
		return nil, utils.NewValidationError(fields)
	}

	// Friendly duplicate check first; the unique index catches races.
	if existing, err := s.adminStore.GetByEmail(req.Email); err == nil && existing != nil {
		return nil, utils.NewValidationError(map[string]string{"email": "is already taken"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	user := &models.AdminUser{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		IsActive:     active,
	}
	if err := s.adminStore.Create(user); err != nil {
		return nil, err
	}

	log.Info().Int("user_id", user.ID).Str("email", user.Email).Msg("Admin user created")
	return user, nil
}

// Update applies allow-listed changes to an existing admin user. A non-empty
// password replaces the secret and revokes all of that user's sessions.
func (s *AdminUserService) Update(ctx context.Context, id int, req *UpdateAdminUserRequest) (*models.AdminUser, error) {
	user, err := s.adminStore.GetByID(id)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	validateEmail(req.Email, fields)
	if req.Password != "" {
		if msg := validatePassword(req.Password); msg != "" {
			fields["password"] = msg
		}
	}
	if len(fields) > 0 {
		return nil, utils.NewValidationError(fields)
	}

	newEmail := strings.ToLower(strings.TrimSpace(req.Email))
	if newEmail != user.Email {
		if existing, err := s.adminStore.GetByEmail(newEmail); err == nil && existing != nil && existing.ID != id {
			return nil, utils.NewValidationError(map[string]string{"email": "is already taken"})
		}
	}

	user.Email = newEmail
	user.Name = strings.TrimSpace(req.Name)
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if err := s.adminStore.Update(user); err != nil {
		return nil, err
	}

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		if err := s.adminStore.UpdatePasswordHash(id, string(hash)); err != nil {
			return nil, err
		}
		// An administratively reset secret invalidates everything the user
		// had open; they re-authenticate with the new one.
		if err := s.sessions.DestroyAllForUser(ctx, id, ""); err != nil {
			return nil, err
		}
	}

	// Deactivation also revokes live sessions; the gate would reject them
	// anyway, but there is no reason to keep dead tokens around.
	if !user.IsActive {
		if err := s.sessions.DestroyAllForUser(ctx, id, ""); err != nil {
			return nil, err
		}
	}

	log.Info().Int("user_id", user.ID).Msg("Admin user updated")
	return user, nil
}

// Delete removes an admin user and revokes every session the account held.
// Sessions reference users weakly, so revocation is this explicit step.
func (s *AdminUserService) Delete(ctx context.Context, id int) error {
	if err := s.adminStore.Delete(id); err != nil {
		return err
	}
	if err := s.sessions.DestroyAllForUser(ctx, id, ""); err != nil {
		return err
	}
	log.Info().Int("user_id", id).Msg("Admin user deleted")
	return nil
}

// validateEmail records a field message when the email is missing or not a
// plausible address.
func validateEmail(email string, fields map[string]string) {
	email = strings.TrimSpace(email)
	if email == "" {
		fields["email"] = "is required"
		return
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		fields["email"] = "is not a valid email address"
	}
}
