package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/gophauth/internal/models"
	"github.com/iudanet/gophauth/internal/server/storage"
)

// CreateOtpSecret сохраняет новый TOTP секрет
func (s *Storage) CreateOtpSecret(ctx context.Context, secret *models.OtpSecret) error {
	query := `
		INSERT INTO otp_secrets (id, secret, user_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.ExecContext(ctx, query, secret.ID, secret.Secret, secret.UserID, secret.CreatedAt)
	if err != nil {
		switch pgErrorCode(err) {
		case pgUniqueViolation:
			return storage.ErrOtpSecretAlreadyExists
		case pgForeignKeyViolation:
			return storage.ErrUserNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// GetOtpSecretByUserID возвращает секрет пользователя
func (s *Storage) GetOtpSecretByUserID(ctx context.Context, userID string) (*models.OtpSecret, error) {
	query := `SELECT id, secret, user_id, created_at FROM otp_secrets WHERE user_id = $1`

	secret := &models.OtpSecret{}
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&secret.ID, &secret.Secret, &secret.UserID, &secret.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrOtpSecretNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return secret, nil
}

// DeleteOtpSecretByUserID удаляет секрет и сообщает, существовал ли он
func (s *Storage) DeleteOtpSecretByUserID(ctx context.Context, userID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM otp_secrets WHERE user_id = $1`, userID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}
