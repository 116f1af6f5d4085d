package crypto

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher хеширует и проверяет пароли через bcrypt.
// Соль генерируется bcrypt для каждого хеша и хранится внутри digest.
type PasswordHasher struct {
	dummyErr  error
	dummyHash []byte
	cost      int
	dummyOnce sync.Once
}

// NewPasswordHasher создает hasher с заданной стоимостью bcrypt.
// cost вне диапазона [bcrypt.MinCost, bcrypt.MaxCost] заменяется на bcrypt.DefaultCost
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash возвращает bcrypt digest пароля
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(digest), nil
}

// Verify сравнивает пароль с digest за постоянное время
func (h *PasswordHasher) Verify(password, digest string) bool {
	if digest == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	return err == nil
}

// VerifyDummy выполняет сравнение с заранее вычисленным хешем.
// Вызывается для неизвестного email, чтобы время ответа не выдавало существование аккаунта.
func (h *PasswordHasher) VerifyDummy(password string) {
	h.dummyOnce.Do(func() {
		h.dummyHash, h.dummyErr = bcrypt.GenerateFromPassword([]byte("gophauth-dummy-password"), h.cost)
	})
	if h.dummyErr != nil {
		return
	}
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(password))
}
