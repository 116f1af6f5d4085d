package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this email already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrOtpSecretNotFound indicates that user has no OTP secret
	ErrOtpSecretNotFound = errors.New("otp secret not found")

	// ErrOtpSecretAlreadyExists indicates a unique violation on otp_secrets
	ErrOtpSecretAlreadyExists = errors.New("otp secret already exists")
)
