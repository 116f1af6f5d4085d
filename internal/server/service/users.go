package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/gophauth/internal/crypto"
	"github.com/iudanet/gophauth/internal/models"
	"github.com/iudanet/gophauth/internal/server/storage"
	"github.com/iudanet/gophauth/internal/validation"
)

const (
	// DefaultListLimit размер страницы List, если limit не задан
	DefaultListLimit = 100
	// MaxListLimit верхняя граница limit для List
	MaxListLimit = 1000
)

// UserUpdate - частичное обновление; nil поля не меняются
type UserUpdate struct {
	Email    *string
	Username *string
	Password *string
}

// UserService управляет учетными записями
type UserService struct {
	logger *slog.Logger
	users  storage.UserStorage
	hasher *crypto.PasswordHasher
	now    func() time.Time
}

// NewUserService создает UserService
func NewUserService(logger *slog.Logger, users storage.UserStorage, hasher *crypto.PasswordHasher) *UserService {
	return &UserService{
		logger: logger,
		users:  users,
		hasher: hasher,
		now:    time.Now,
	}
}

// Get возвращает пользователя по ID
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, mapUserErr(err)
	}
	return user, nil
}

// List возвращает страницу пользователей. limit <= 0 означает значение по умолчанию.
func (s *UserService) List(ctx context.Context, skip, limit int) ([]*models.User, error) {
	if skip < 0 {
		return nil, invalid(fmt.Errorf("skip must not be negative"))
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	users, err := s.users.ListUsers(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Update применяет частичное обновление. Новый пароль хешируется заново.
func (s *UserService) Update(ctx context.Context, userID string, upd UserUpdate) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, mapUserErr(err)
	}

	if upd.Email != nil {
		email := validation.NormalizeEmail(*upd.Email)
		if err := validation.ValidateEmail(email); err != nil {
			return nil, invalid(err)
		}
		user.Email = email
	}

	if upd.Username != nil {
		if err := validation.ValidateUsername(*upd.Username); err != nil {
			return nil, invalid(err)
		}
		user.Username = *upd.Username
	}

	if upd.Password != nil {
		if err := validation.ValidatePassword(*upd.Password); err != nil {
			return nil, invalid(err)
		}
		digest, err := s.hasher.Hash(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = digest
	}

	user.UpdatedAt = s.now().UTC()

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, mapUserErr(err)
	}

	s.logger.InfoContext(ctx, "user updated", slog.String("user_id", user.ID))

	return user, nil
}

// Delete удаляет пользователя вместе с его TOTP секретом
func (s *UserService) Delete(ctx context.Context, userID string) error {
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return mapUserErr(err)
	}

	s.logger.InfoContext(ctx, "user deleted", slog.String("user_id", userID))
	return nil
}

func mapUserErr(err error) error {
	switch {
	case errors.Is(err, storage.ErrUserNotFound):
		return fmt.Errorf("user: %w", ErrNotFound)
	case errors.Is(err, storage.ErrUserAlreadyExists):
		return fmt.Errorf("email already taken: %w", ErrConflict)
	default:
		return fmt.Errorf("user storage: %w", err)
	}
}
