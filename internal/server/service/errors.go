// Package service содержит бизнес-логику: регистрацию, вход, управление
// пользователями и TOTP. Ошибки хранилища переводятся в доменные.
package service

import "errors"

// Доменные ошибки. Обработчики HTTP сопоставляют их со статусами.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrRateLimited  = errors.New("too many attempts")
)

// validationError оборачивает ошибку валидатора в ErrValidation, сохраняя текст
type validationError struct {
	err error
}

func (e *validationError) Error() string {
	return e.err.Error()
}

func (e *validationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *validationError) Unwrap() error {
	return e.err
}

func invalid(err error) error {
	return &validationError{err: err}
}
