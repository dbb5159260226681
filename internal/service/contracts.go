package service

import (
	"github.com/cmozaiq-saas/mvp-booster/internal/models"
)

// AdminUserStore is the credential-store contract consumed by the services.
// Satisfied by repository.AdminUserRepository in production and by in-memory
// fakes in tests.
type AdminUserStore interface {
	GetByEmail(email string) (*models.AdminUser, error)
	GetByID(id int) (*models.AdminUser, error)
	List() ([]*models.AdminUser, error)
	Create(user *models.AdminUser) error
	Update(user *models.AdminUser) error
	UpdatePasswordHash(id int, passwordHash string) error
	TouchLastLogin(id int) error
	Delete(id int) error
}
