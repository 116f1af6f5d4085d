package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophauth/internal/models"
	"github.com/iudanet/gophauth/internal/server/storage"
)

const (
	insertUserQuery = `(?s)^\s*INSERT\s+INTO\s+users\s*\(id,\s*email,\s*username,\s*password_hash,\s*created_at,\s*updated_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*$`
	selectByEmail   = `(?s)^SELECT\s+id,\s*email,\s*username,\s*password_hash,\s*created_at,\s*updated_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`
	selectByID      = `(?s)^SELECT\s+id,\s*email,\s*username,\s*password_hash,\s*created_at,\s*updated_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
	listUsersQuery  = `(?s)^SELECT\s+.+\s+FROM\s+users\s+ORDER\s+BY\s+created_at,\s*id\s+LIMIT\s+\$1\s+OFFSET\s+\$2$`
	updateUserQuery = `(?s)^\s*UPDATE\s+users\s+SET\s+email\s*=\s*\$1,\s*username\s*=\s*\$2,\s*password_hash\s*=\s*\$3,\s*updated_at\s*=\s*\$4\s+WHERE\s+id\s*=\s*\$5\s*$`
	deleteUserQuery = `^DELETE\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
)

var userCols = []string{"id", "email", "username", "password_hash", "created_at", "updated_at"}

func testUser() *models.User {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return &models.User{
		ID:           uuid.New().String(),
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: "$2a$10$digest",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestCreateUser(t *testing.T) {
	u := testUser()

	tests := []struct {
		dbErr   error
		wantErr error
		name    string
		errText string
	}{
		{name: "success"},
		{name: "unique violation", dbErr: &pgconn.PgError{Code: "23505"}, wantErr: storage.ErrUserAlreadyExists},
		{name: "other error", dbErr: errors.New("db down"), errText: "db error: db down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newStorageWithMock(t)

			exp := mock.ExpectExec(insertUserQuery).
				WithArgs(u.ID, u.Email, u.Username, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
			if tt.dbErr != nil {
				exp.WillReturnError(tt.dbErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := s.CreateUser(context.Background(), u)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errText)
			default:
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetUserByEmail(t *testing.T) {
	s, mock := newStorageWithMock(t)
	u := testUser()

	mock.ExpectQuery(selectByEmail).
		WithArgs(u.Email).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(u.ID, u.Email, u.Username, u.PasswordHash, u.CreatedAt, u.UpdatedAt))

	got, err := s.GetUserByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	assert.Equal(t, u, got)

	mock.ExpectQuery(selectByEmail).
		WithArgs("missing@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err = s.GetUserByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByID(t *testing.T) {
	s, mock := newStorageWithMock(t)
	u := testUser()

	mock.ExpectQuery(selectByID).
		WithArgs(u.ID).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(u.ID, u.Email, u.Username, u.PasswordHash, u.CreatedAt, u.UpdatedAt))

	got, err := s.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	mock.ExpectQuery(selectByID).WithArgs("x").WillReturnError(errors.New("timeout"))
	_, err = s.GetUserByID(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: timeout")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsers(t *testing.T) {
	s, mock := newStorageWithMock(t)
	a, b := testUser(), testUser()
	b.Email = "bob@example.com"

	mock.ExpectQuery(listUsersQuery).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(a.ID, a.Email, a.Username, a.PasswordHash, a.CreatedAt, a.UpdatedAt).
			AddRow(b.ID, b.Email, b.Username, b.PasswordHash, b.CreatedAt, b.UpdatedAt))

	users, err := s.ListUsers(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob@example.com", users[1].Email)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUser(t *testing.T) {
	u := testUser()

	tests := []struct {
		result  driverResult
		dbErr   error
		wantErr error
		name    string
	}{
		{name: "success", result: driverResult{rows: 1}},
		{name: "not found", result: driverResult{rows: 0}, wantErr: storage.ErrUserNotFound},
		{name: "email taken", dbErr: &pgconn.PgError{Code: "23505"}, wantErr: storage.ErrUserAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newStorageWithMock(t)

			exp := mock.ExpectExec(updateUserQuery).
				WithArgs(u.Email, u.Username, u.PasswordHash, u.UpdatedAt, u.ID)
			if tt.dbErr != nil {
				exp.WillReturnError(tt.dbErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.result.rows))
			}

			err := s.UpdateUser(context.Background(), u)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDeleteUser(t *testing.T) {
	s, mock := newStorageWithMock(t)

	mock.ExpectExec(deleteUserQuery).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.DeleteUser(context.Background(), "u-1"))

	mock.ExpectExec(deleteUserQuery).WithArgs("u-2").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.DeleteUser(context.Background(), "u-2"), storage.ErrUserNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

type driverResult struct {
	rows int64
}
