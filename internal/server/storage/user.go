package storage

import (
	"context"

	"github.com/iudanet/gophauth/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user in the storage
	// Returns ErrUserAlreadyExists if email is already taken.
	// Uniqueness is checked by the database constraint, not by a prior lookup.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// GetUserByEmail retrieves user by normalized email
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// ListUsers returns users ordered by creation time
	ListUsers(ctx context.Context, offset, limit int) ([]*models.User, error)

	// UpdateUser updates email, username, password hash and updated_at
	// Returns ErrUserNotFound or ErrUserAlreadyExists
	UpdateUser(ctx context.Context, user *models.User) error

	// DeleteUser deletes user by ID together with its OTP secret
	// Returns ErrUserNotFound if user doesn't exist
	DeleteUser(ctx context.Context, userID string) error
}

// Pinger проверяет доступность хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}
