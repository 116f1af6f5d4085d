package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophauth/internal/models"
	"github.com/iudanet/gophauth/internal/server/service"
	"github.com/iudanet/gophauth/pkg/api"
)

const (
	aliceID = "7f9c2b7e-3c1a-4c62-9f55-0d7c3b2a1e44"
	bobID   = "1b4e28ba-2fa1-11d2-883f-0016d3cca427"
)

var errDatabaseDown = errors.New("database is down")

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func aliceIdentity() models.Identity {
	return models.Identity{UserID: aliceID, Email: "alice@example.com", Username: "alice"}
}

func testUser(id, email, username string) *models.User {
	ts := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	return &models.User{
		ID:           id,
		Email:        email,
		Username:     username,
		PasswordHash: "$2a$10$hash",
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
}

// newRequest builds a request with a JSON body, optional identity and path values
func newRequest(t *testing.T, method, target string, body any, identity *models.Identity, pathValues map[string]string) *http.Request {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if identity != nil {
		req = req.WithContext(WithIdentity(req.Context(), *identity))
	}
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

// mockAuthService is a hand-written AuthService for handler tests
type mockAuthService struct {
	registerFn func(ctx context.Context, email, username, password string) (*models.User, error)
	loginFn    func(ctx context.Context, email, password string) (*models.User, error)
	issueErr   error
}

func (m *mockAuthService) Register(ctx context.Context, email, username, password string) (*models.User, error) {
	return m.registerFn(ctx, email, username, password)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	return m.loginFn(ctx, email, password)
}

func (m *mockAuthService) IssueToken(user *models.User) (string, time.Time, error) {
	if m.issueErr != nil {
		return "", time.Time{}, m.issueErr
	}
	return "token-for-" + user.ID, time.Now().Add(time.Hour), nil
}

// mockUserService keeps users in a map
type mockUserService struct {
	users     map[string]*models.User
	err       error
	lastSkip  int
	lastLimit int
	deleted   []string
	lastPatch service.UserUpdate
}

func newMockUserService(users ...*models.User) *mockUserService {
	m := &mockUserService{users: make(map[string]*models.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserService) Get(_ context.Context, userID string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, service.ErrNotFound
	}
	return u, nil
}

func (m *mockUserService) List(_ context.Context, skip, limit int) ([]*models.User, error) {
	m.lastSkip, m.lastLimit = skip, limit
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserService) Update(_ context.Context, userID string, upd service.UserUpdate) (*models.User, error) {
	m.lastPatch = upd
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, service.ErrNotFound
	}
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	return u, nil
}

func (m *mockUserService) Delete(_ context.Context, userID string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[userID]; !ok {
		return service.ErrNotFound
	}
	delete(m.users, userID)
	m.deleted = append(m.deleted, userID)
	return nil
}

// mockOtpService is a scripted OtpService
type mockOtpService struct {
	secrets   map[string]*models.OtpSecret
	verifyRes *service.Verification
	verifyErr error
	enrollErr error
	err       error
	verified  []string
}

func newMockOtpService() *mockOtpService {
	return &mockOtpService{secrets: make(map[string]*models.OtpSecret)}
}

func (m *mockOtpService) Digits() int { return 6 }

func (m *mockOtpService) Enroll(_ context.Context, userID string) (*service.Enrollment, error) {
	if m.enrollErr != nil {
		return nil, m.enrollErr
	}
	s := &models.OtpSecret{
		ID:        "0d3c7a1e-9a8b-4f4e-8d2c-5e6f7a8b9c0d",
		UserID:    userID,
		Secret:    "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP",
		CreatedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
	m.secrets[userID] = s
	return &service.Enrollment{Secret: s, URI: "otpauth://totp/gophauth:alice%40example.com?secret=" + s.Secret}, nil
}

func (m *mockOtpService) Verify(_ context.Context, userID, code string) (*service.Verification, error) {
	m.verified = append(m.verified, userID+":"+code)
	if m.verifyErr != nil {
		return nil, m.verifyErr
	}
	return m.verifyRes, nil
}

func (m *mockOtpService) Disable(_ context.Context, userID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.secrets[userID]
	delete(m.secrets, userID)
	return ok, nil
}

func (m *mockOtpService) Get(_ context.Context, userID string) (*service.Enrollment, error) {
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.secrets[userID]
	if !ok {
		return nil, service.ErrNotFound
	}
	return &service.Enrollment{Secret: s, URI: "otpauth://totp/gophauth:alice%40example.com?secret=" + s.Secret}, nil
}
