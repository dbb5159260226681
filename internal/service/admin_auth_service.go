package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/cmozaiq-saas/mvp-booster/internal/models"
	"github.com/cmozaiq-saas/mvp-booster/internal/session"
	"github.com/cmozaiq-saas/mvp-booster/internal/utils"
)

// AdminAuthService implements the authentication gate: credential
// verification, session lifecycle, and the authorization check run before
// every protected request.
type AdminAuthService struct {
	adminStore AdminUserStore
	sessions   session.Store
	sessionTTL time.Duration
}

// NewAdminAuthService constructs an AdminAuthService.
func NewAdminAuthService(adminStore AdminUserStore, sessions session.Store, sessionTTL time.Duration) *AdminAuthService {
	return &AdminAuthService{
		adminStore: adminStore,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

// SignIn verifies the credential pair and establishes a session. Unknown
// email, wrong secret, and inactive account all collapse into
// ErrInvalidCredentials so the caller cannot enumerate accounts. The secret
// itself is never logged.
func (s *AdminAuthService) SignIn(ctx context.Context, email, password string) (*models.Session, *models.AdminUser, error) {
	if email == "" || password == "" {
		return nil, nil, utils.ErrInvalidCredentials
	}

	user, err := s.adminStore.GetByEmail(email)
	if err != nil {
		if errors.Is(err, utils.ErrPersistenceUnavailable) {
			return nil, nil, err
		}
		log.Warn().Str("email", email).Msg("Sign-in attempt for unknown email")
		return nil, nil, utils.ErrInvalidCredentials
	}

	if !user.IsActive {
		log.Warn().Str("email", email).Msg("Sign-in attempt for inactive account")
		return nil, nil, utils.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("Sign-in attempt with wrong password")
		return nil, nil, utils.ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, user.ID, s.sessionTTL)
	if err != nil {
		return nil, nil, err
	}

	// Best effort; a failed timestamp update must not undo a valid sign-in.
	if err := s.adminStore.TouchLastLogin(user.ID); err != nil {
		log.Warn().Err(err).Int("user_id", user.ID).Msg("Failed to record last login")
	}

	log.Info().Int("user_id", user.ID).Msg("Admin signed in")
	return sess, user, nil
}

// SignOut destroys the session server-side. Idempotent: an empty or unknown
// token is treated as "no active session" and succeeds.
func (s *AdminAuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Destroy(ctx, token); err != nil {
		return err
	}
	log.Info().Msg("Admin signed out")
	return nil
}

// Authorize resolves a session token to its AdminUser. Every failure mode —
// missing token, expired or revoked session, session store outage, vanished
// or deactivated user — fails closed as ErrUnauthenticated; access is never
// granted on doubt.
func (s *AdminAuthService) Authorize(ctx context.Context, token string) (*models.AdminUser, error) {
	if token == "" {
		return nil, utils.ErrUnauthenticated
	}

	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			log.Error().Err(err).Msg("Session store lookup failed; refusing access")
		}
		return nil, utils.ErrUnauthenticated
	}

	user, err := s.adminStore.GetByID(sess.UserID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			// The account is gone; the dangling session must not linger.
			_ = s.sessions.Destroy(ctx, token)
		} else {
			log.Error().Err(err).Msg("Credential store lookup failed; refusing access")
		}
		return nil, utils.ErrUnauthenticated
	}

	if !user.IsActive {
		_ = s.sessions.Destroy(ctx, token)
		return nil, utils.ErrUnauthenticated
	}

	return user, nil
}

// ResetPassword replaces the signed-in principal's secret. The current secret
// must verify first; the new one must pass policy. On success every other
// live session of the user is revoked so stolen or forgotten sessions cannot
// outlive a password change. The current session survives.
func (s *AdminAuthService) ResetPassword(ctx context.Context, userID int, currentToken, currentPassword, newPassword string) error {
	user, err := s.adminStore.GetByID(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		log.Warn().Int("user_id", userID).Msg("Password reset attempt with wrong current password")
		return utils.ErrInvalidCredentials
	}

	if msg := validatePassword(newPassword); msg != "" {
		return utils.NewValidationError(map[string]string{"password": msg})
	}

	// Hash first, then persist in a single statement, then revoke.
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.adminStore.UpdatePasswordHash(userID, string(hash)); err != nil {
		return err
	}
	if err := s.sessions.DestroyAllForUser(ctx, userID, currentToken); err != nil {
		// The hash is already replaced; report the revocation failure rather
		// than pretending the reset did not happen.
		return err
	}

	log.Info().Int("user_id", userID).Msg("Password reset; other sessions revoked")
	return nil
}
