package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophauth/internal/server/service"
	"github.com/iudanet/gophauth/pkg/api"
)

func TestUserHandler_List(t *testing.T) {
	users := newMockUserService(
		testUser(aliceID, "alice@example.com", "alice"),
		testUser(bobID, "bob@example.com", "bob"),
	)
	h := NewUserHandler(setupTestLogger(), users)

	w := httptest.NewRecorder()
	h.List(w, newRequest(t, http.MethodGet, "/api/v1/users?skip=5&limit=20", nil, nil, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp []api.UserResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Len(t, resp, 2)
	assert.Equal(t, 5, users.lastSkip)
	assert.Equal(t, 20, users.lastLimit)

	w = httptest.NewRecorder()
	h.List(w, newRequest(t, http.MethodGet, "/api/v1/users?limit=ten", nil, nil, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	users.err = fmt.Errorf("skip must not be negative: %w", service.ErrValidation)
	w = httptest.NewRecorder()
	h.List(w, newRequest(t, http.MethodGet, "/api/v1/users?skip=-1", nil, nil, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_Get(t *testing.T) {
	h := NewUserHandler(setupTestLogger(), newMockUserService(testUser(aliceID, "alice@example.com", "alice")))

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{name: "found", id: aliceID, wantStatus: http.StatusOK},
		{name: "absent", id: bobID, wantStatus: http.StatusNotFound},
		{name: "not a uuid", id: "42", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Get(w, newRequest(t, http.MethodGet, "/api/v1/users/"+tt.id, nil, nil, map[string]string{"id": tt.id}))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestUserHandler_Update(t *testing.T) {
	identity := aliceIdentity()

	t.Run("self update", func(t *testing.T) {
		users := newMockUserService(testUser(aliceID, "alice@example.com", "alice"))
		h := NewUserHandler(setupTestLogger(), users)
		w := httptest.NewRecorder()

		h.Update(w, newRequest(t, http.MethodPatch, "/api/v1/users/"+aliceID,
			`{"username":"alice2"}`, &identity, map[string]string{"id": aliceID}))

		require.Equal(t, http.StatusOK, w.Code)
		var resp api.UserResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "alice2", resp.Username)
		assert.Nil(t, users.lastPatch.Email)
		assert.Nil(t, users.lastPatch.Password)
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		users := newMockUserService(testUser(bobID, "bob@example.com", "bob"))
		h := NewUserHandler(setupTestLogger(), users)
		w := httptest.NewRecorder()

		h.Update(w, newRequest(t, http.MethodPatch, "/api/v1/users/"+bobID,
			`{"username":"pwned"}`, &identity, map[string]string{"id": bobID}))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "bob", users.users[bobID].Username)
	})

	t.Run("anonymous", func(t *testing.T) {
		h := NewUserHandler(setupTestLogger(), newMockUserService())
		w := httptest.NewRecorder()

		h.Update(w, newRequest(t, http.MethodPatch, "/api/v1/users/"+aliceID,
			`{"username":"x"}`, nil, map[string]string{"id": aliceID}))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("email conflict", func(t *testing.T) {
		users := newMockUserService(testUser(aliceID, "alice@example.com", "alice"))
		users.err = fmt.Errorf("email already taken: %w", service.ErrConflict)
		h := NewUserHandler(setupTestLogger(), users)
		w := httptest.NewRecorder()

		h.Update(w, newRequest(t, http.MethodPatch, "/api/v1/users/"+aliceID,
			`{"email":"bob@example.com"}`, &identity, map[string]string{"id": aliceID}))

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestUserHandler_Delete(t *testing.T) {
	identity := aliceIdentity()
	users := newMockUserService(
		testUser(aliceID, "alice@example.com", "alice"),
		testUser(bobID, "bob@example.com", "bob"),
	)
	h := NewUserHandler(setupTestLogger(), users)

	w := httptest.NewRecorder()
	h.Delete(w, newRequest(t, http.MethodDelete, "/api/v1/users/"+bobID, nil, &identity, map[string]string{"id": bobID}))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	h.Delete(w, newRequest(t, http.MethodDelete, "/api/v1/users/"+aliceID, nil, &identity, map[string]string{"id": aliceID}))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{aliceID}, users.deleted)

	w = httptest.NewRecorder()
	h.Delete(w, newRequest(t, http.MethodDelete, "/api/v1/users/"+aliceID, nil, &identity, map[string]string{"id": aliceID}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
