package storage

import "errors"

// ErrAuthNotFound - сессия не сохранена
var ErrAuthNotFound = errors.New("authentication data not found")
