package service

import (
	"strings"
	"sync"
	"time"

	"github.com/cmozaiq-saas/mvp-booster/internal/models"
	"github.com/cmozaiq-saas/mvp-booster/internal/utils"
)

// fakeAdminStore is an in-memory AdminUserStore for service tests.
type fakeAdminStore struct {
	mu     sync.Mutex
	users  map[int]*models.AdminUser
	nextID int
	// failWith, when set, makes every call return this error. Simulates the
	// credential store being unreachable.
	failWith error
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
	if f.failWith != nil {
		return nil, f.failWith
	}
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
	if f.failWith != nil {
		return nil, f.failWith
	}
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
	if f.failWith != nil {
		return nil, f.failWith
	}
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
	if f.failWith != nil {
		return f.failWith
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return utils.NewValidationError(map[string]string{"email": "is already taken"})
		}
	}
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeAdminStore) Update(user *models.AdminUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	existing, ok := f.users[user.ID]
	if !ok {
		return utils.ErrNotFound
	}
	existing.Email = strings.ToLower(user.Email)
	existing.Name = user.Name
	existing.IsActive = user.IsActive
	existing.UpdatedAt = time.Now()
	return nil
}

func (f *fakeAdminStore) UpdatePasswordHash(id int, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	u, ok := f.users[id]
	if !ok {
		return utils.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	return nil
}

func (f *fakeAdminStore) TouchLastLogin(id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
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
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.users[id]; !ok {
		return utils.ErrNotFound
	}
	delete(f.users, id)
	return nil
}
