// Package session implements the server-side session store for the admin
// namespace. A session is an opaque token resolved here to an AdminUser id;
// the client never holds anything but the token.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/cmozaiq-saas/mvp-booster/internal/models"
)

// ErrNotFound is returned when a token does not resolve to a live session.
// Expired and revoked tokens are indistinguishable from never-issued ones.
var ErrNotFound = errors.New("session not found")

// Store is the session persistence contract. Implementations must treat an
// expired session exactly like a missing one on Get.
type Store interface {
	// Create issues a new session for the user with the given absolute TTL.
	Create(ctx context.Context, userID int, ttl time.Duration) (*models.Session, error)
	// Get resolves a token to a live session or ErrNotFound.
	Get(ctx context.Context, token string) (*models.Session, error)
	// Destroy revokes a session server-side. Destroying a token that does
	// not exist is not an error.
	Destroy(ctx context.Context, token string) error
	// DestroyAllForUser revokes every live session of a user except the one
	// identified by exceptToken (pass "" to revoke all of them).
	DestroyAllForUser(ctx context.Context, userID int, exceptToken string) error
}

// Pruner is implemented by stores that keep auxiliary indexes needing
// periodic cleanup. The session reaper worker calls it.
type Pruner interface {
	PruneUserIndex(ctx context.Context) error
}
