package storage

import (
	"context"

	"github.com/iudanet/gophauth/internal/models"
)

// OtpStorage defines interface for TOTP secret persistence
type OtpStorage interface {
	// CreateOtpSecret stores a new secret
	// Returns ErrOtpSecretAlreadyExists if the user already has a secret
	// or the secret value collides with another record,
	// ErrUserNotFound if the user doesn't exist
	CreateOtpSecret(ctx context.Context, secret *models.OtpSecret) error

	// GetOtpSecretByUserID returns ErrOtpSecretNotFound if user has no secret
	GetOtpSecretByUserID(ctx context.Context, userID string) (*models.OtpSecret, error)

	// DeleteOtpSecretByUserID reports whether a secret existed
	DeleteOtpSecretByUserID(ctx context.Context, userID string) (bool, error)
}
