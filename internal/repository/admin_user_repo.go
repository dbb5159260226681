package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/cmozaiq-saas/mvp-booster/internal/models"
	"github.com/cmozaiq-saas/mvp-booster/internal/utils"
)

const adminUserColumns = `id, email, password_hash, name, is_active, last_login_at, created_at, updated_at`

// AdminUserRepository provides data access methods for the admin_users table.
// Every write is a single statement, so concurrent updates to the same record
// are serialized by Postgres row locking — a partial write is never visible.
type AdminUserRepository struct {
	db *sqlx.DB
}

// NewAdminUserRepository creates a new AdminUserRepository.
func NewAdminUserRepository(db *sqlx.DB) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

// GetByEmail finds an admin user by email, case-insensitively.
func (r *AdminUserRepository) GetByEmail(email string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := r.db.Get(&user, `
		SELECT `+adminUserColumns+`
		FROM admin_users
		WHERE lower(email) = lower($1)
	`, email)
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// GetByID finds an admin user by numeric id.
func (r *AdminUserRepository) GetByID(id int) (*models.AdminUser, error) {
	var user models.AdminUser
	err := r.db.Get(&user, `
		SELECT `+adminUserColumns+`
		FROM admin_users
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// List retrieves all admin users, newest first.
func (r *AdminUserRepository) List() ([]*models.AdminUser, error) {
	var users []*models.AdminUser
	err := r.db.Select(&users, `
		SELECT `+adminUserColumns+`
		FROM admin_users
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, mapError(err)
	}
	return users, nil
}

// Create inserts a new admin user. Email is stored lowercased so the unique
// index on lower(email) and display stay consistent.
func (r *AdminUserRepository) Create(user *models.AdminUser) error {
	query := `
		INSERT INTO admin_users (email, password_hash, name, is_active)
		VALUES (lower($1), $2, $3, $4)
		RETURNING id, email, created_at, updated_at
	`
	err := r.db.QueryRowx(query, user.Email, user.PasswordHash, user.Name, user.IsActive).
		Scan(&user.ID, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	return mapError(err)
}

// Update updates profile fields of an existing admin user.
func (r *AdminUserRepository) Update(user *models.AdminUser) error {
	query := `
		UPDATE admin_users
		SET email = lower($1), name = $2, is_active = $3, updated_at = now()
		WHERE id = $4
		RETURNING email, updated_at
	`
	err := r.db.QueryRowx(query, user.Email, user.Name, user.IsActive, user.ID).
		Scan(&user.Email, &user.UpdatedAt)
	return mapError(err)
}

// UpdatePasswordHash replaces the stored secret hash in a single statement.
func (r *AdminUserRepository) UpdatePasswordHash(id int, passwordHash string) error {
	res, err := r.db.Exec(`
		UPDATE admin_users
		SET password_hash = $1, updated_at = now()
		WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return utils.ErrNotFound
	}
	return nil
}

// TouchLastLogin records a successful sign-in.
func (r *AdminUserRepository) TouchLastLogin(id int) error {
	_, err := r.db.Exec(`UPDATE admin_users SET last_login_at = now() WHERE id = $1`, id)
	return mapError(err)
}

// Delete removes an admin user by id.
func (r *AdminUserRepository) Delete(id int) error {
	res, err := r.db.Exec(`DELETE FROM admin_users WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return utils.ErrNotFound
	}
	return nil
}

// mapError translates database errors into the application taxonomy.
// Unique violations on the email index become field-level validation errors;
// anything else that is not "no rows" means the credential store cannot be
// trusted and the request must fail closed.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return utils.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return utils.NewValidationError(map[string]string{"email": "is already taken"})
	}
	return fmt.Errorf("%w: %v", utils.ErrPersistenceUnavailable, err)
}
