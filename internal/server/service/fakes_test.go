package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iudanet/gophauth/internal/models"
	"github.com/iudanet/gophauth/internal/server/storage"
)

// fakeUserStorage is a map-backed UserStorage with store-level email uniqueness
type fakeUserStorage struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	getErr  error
	listErr error
}

func newFakeUserStorage() *fakeUserStorage {
	return &fakeUserStorage{byID: make(map[string]*models.User)}
}

func (f *fakeUserStorage) emailTaken(email, exceptID string) bool {
	for id, u := range f.byID {
		if u.Email == email && id != exceptID {
			return true
		}
	}
	return false
}

func (f *fakeUserStorage) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.emailTaken(user.Email, "") {
		return storage.ErrUserAlreadyExists
	}
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUserStorage) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStorage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeUserStorage) ListUsers(_ context.Context, offset, limit int) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	all := make([]*models.User, 0, len(f.byID))
	for _, u := range f.byID {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	if offset >= len(all) {
		return []*models.User{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (f *fakeUserStorage) UpdateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[user.ID]; !ok {
		return storage.ErrUserNotFound
	}
	if f.emailTaken(user.Email, user.ID) {
		return storage.ErrUserAlreadyExists
	}
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUserStorage) DeleteUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[userID]; !ok {
		return storage.ErrUserNotFound
	}
	delete(f.byID, userID)
	return nil
}

// fakeOtpStorage is a map-backed OtpStorage keyed by user id
type fakeOtpStorage struct {
	mu        sync.Mutex
	byUser    map[string]*models.OtpSecret
	users     *fakeUserStorage
	getErr    error
	deleteErr error
}

func newFakeOtpStorage(users *fakeUserStorage) *fakeOtpStorage {
	return &fakeOtpStorage{byUser: make(map[string]*models.OtpSecret), users: users}
}

func (f *fakeOtpStorage) CreateOtpSecret(ctx context.Context, secret *models.OtpSecret) error {
	if _, err := f.users.GetUserByID(ctx, secret.UserID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byUser[secret.UserID]; ok {
		return storage.ErrOtpSecretAlreadyExists
	}
	cp := *secret
	f.byUser[secret.UserID] = &cp
	return nil
}

func (f *fakeOtpStorage) GetOtpSecretByUserID(_ context.Context, userID string) (*models.OtpSecret, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.byUser[userID]
	if !ok {
		return nil, storage.ErrOtpSecretNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeOtpStorage) DeleteOtpSecretByUserID(_ context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	_, ok := f.byUser[userID]
	delete(f.byUser, userID)
	return ok, nil
}

// fakeSessions records session flag writes
type fakeSessions struct {
	mu   sync.Mutex
	keys map[string]any
	fail bool
}

func (f *fakeSessions) Set(_ context.Context, key string, value any, _ time.Duration) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return false
	}
	if f.keys == nil {
		f.keys = make(map[string]any)
	}
	f.keys[key] = value
	return true
}

// fakeAttempts allows a fixed number of attempts per id
type fakeAttempts struct {
	counts map[string]int
	max    int
}

func (f *fakeAttempts) Allow(_ context.Context, id string) bool {
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	f.counts[id]++
	return f.counts[id] <= f.max
}

func (f *fakeAttempts) Reset(_ context.Context, id string) {
	delete(f.counts, id)
}

type fakeUsedCodes struct {
	seen map[string]bool
}

func (f *fakeUsedCodes) MarkUsed(_ context.Context, userID string, counter int64) bool {
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	key := fmt.Sprintf("%s:%d", userID, counter)
	if f.seen[key] {
		return false
	}
	f.seen[key] = true
	return true
}
