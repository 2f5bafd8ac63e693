package userservice

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/sushihentaime/pressbox/internal/common"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "Test_1234!"
)

func setupTestEnvironment(t *testing.T) (*UserService, *sql.DB, func() error) {
	db := common.TestDB("file://../../migrations", t)
	c := common.NewCache(time.Minute, 5*time.Minute)

	cleanup := func() error {
		if _, err := db.Exec("DELETE FROM sessions"); err != nil {
			return err
		}
		if _, err := db.Exec("DELETE FROM users"); err != nil {
			return err
		}
		c.Flush()
		return nil
	}

	return NewUserService(db, c), db, cleanup
}

func createTestUser(t *testing.T, s *UserService) {
	t.Helper()

	err := s.EnsureAdmin(context.Background(), testEmail, testPassword)
	assert.NoError(t, err)
}

func TestLogin(t *testing.T) {
	s, _, cleanup := setupTestEnvironment(t)

	testCases := []struct {
		name        string
		email       string
		password    string
		expectedErr error
	}{
		{
			name:     "valid credentials",
			email:    testEmail,
			password: testPassword,
		},
		{
			name:        "wrong password",
			email:       testEmail,
			password:    "Wrong_1234!",
			expectedErr: ErrAuthenticationFailure,
		},
		{
			name:        "unknown email",
			email:       "nobody@example.com",
			password:    testPassword,
			expectedErr: ErrAuthenticationFailure,
		},
		{
			name:        "missing email",
			email:       "",
			password:    testPassword,
			expectedErr: common.ValidationError{Errors: map[string]string{"email": "must be provided"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				assert.NoError(t, cleanup())
			}()

			createTestUser(t, s)

			user, session, err := s.Login(context.Background(), tc.email, tc.password)
			if tc.expectedErr != nil {
				assert.Error(t, err)
				assert.Nil(t, session)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.email, user.Email)
			assert.NotNil(t, user.LastLogin)
			assert.Len(t, session.Plain, 26)
			assert.True(t, session.Expiry.After(time.Now()))
		})
	}
}

func TestLoginThenCurrentUser(t *testing.T) {
	s, _, cleanup := setupTestEnvironment(t)
	defer cleanup()

	createTestUser(t, s)

	user, session, err := s.Login(context.Background(), testEmail, testPassword)
	assert.NoError(t, err)

	current, err := s.CurrentUser(context.Background(), session.Plain)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)
	assert.Equal(t, user.Email, current.Email)
}

func TestFailedLoginCreatesNoSession(t *testing.T) {
	s, db, cleanup := setupTestEnvironment(t)
	defer cleanup()

	createTestUser(t, s)

	_, _, err := s.Login(context.Background(), testEmail, "Wrong_1234!")
	assert.ErrorIs(t, err, ErrAuthenticationFailure)

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestValidateSession(t *testing.T) {
	s, _, cleanup := setupTestEnvironment(t)
	defer cleanup()

	createTestUser(t, s)

	user, session, err := s.Login(context.Background(), testEmail, testPassword)
	assert.NoError(t, err)

	identity, err := s.ValidateSession(context.Background(), session.Plain)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, user.Email, identity.Email)

	// second call is served from the cache
	identity, err = s.ValidateSession(context.Background(), session.Plain)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)

	// unknown but well-formed token
	_, err = s.ValidateSession(context.Background(), "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	assert.ErrorIs(t, err, ErrNotFound)

	// malformed token
	_, err = s.ValidateSession(context.Background(), "short")
	assert.ErrorAs(t, err, &common.ValidationError{})
}

func TestExpiredSessionIsInvalid(t *testing.T) {
	s, db, cleanup := setupTestEnvironment(t)
	defer cleanup()

	createTestUser(t, s)

	_, session, err := s.Login(context.Background(), testEmail, testPassword)
	assert.NoError(t, err)

	_, err = db.Exec("UPDATE sessions SET expiry = now() - interval '1 hour'")
	assert.NoError(t, err)

	// bypass the cache by using a fresh service sharing the same database
	fresh := NewUserService(db, common.NewCache(time.Minute, 5*time.Minute))
	_, err = fresh.ValidateSession(context.Background(), session.Plain)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := fresh.DeleteExpiredSessions(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestLogout(t *testing.T) {
	s, _, cleanup := setupTestEnvironment(t)
	defer cleanup()

	createTestUser(t, s)

	_, session, err := s.Login(context.Background(), testEmail, testPassword)
	assert.NoError(t, err)

	err = s.Logout(context.Background(), session.Plain)
	assert.NoError(t, err)

	_, err = s.ValidateSession(context.Background(), session.Plain)
	assert.ErrorIs(t, err, ErrNotFound)

	// destroying an already-destroyed session reports ErrNotFound
	err = s.Logout(context.Background(), session.Plain)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCurrentUserVanished(t *testing.T) {
	s, db, cleanup := setupTestEnvironment(t)
	defer cleanup()

	createTestUser(t, s)

	_, session, err := s.Login(context.Background(), testEmail, testPassword)
	assert.NoError(t, err)

	_, err = db.Exec("UPDATE users SET is_active = false WHERE email = $1", testEmail)
	assert.NoError(t, err)

	// the session token is still unexpired, but the user is gone
	_, err = s.CurrentUser(context.Background(), session.Plain)
	assert.ErrorIs(t, err, ErrUserVanished)
}

func TestEnsureAdminIdempotent(t *testing.T) {
	s, db, cleanup := setupTestEnvironment(t)
	defer cleanup()

	createTestUser(t, s)
	createTestUser(t, s)

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM users WHERE email = $1", testEmail).Scan(&count)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestChangePassword(t *testing.T) {
	s, _, cleanup := setupTestEnvironment(t)
	defer cleanup()

	createTestUser(t, s)

	user, _, err := s.Login(context.Background(), testEmail, testPassword)
	assert.NoError(t, err)

	// wrong current password
	err = s.ChangePassword(context.Background(), user.ID, "Wrong_1234!", "NewPass_99!")
	assert.ErrorIs(t, err, ErrAuthenticationFailure)

	// new password failing the policy
	err = s.ChangePassword(context.Background(), user.ID, testPassword, "weak")
	assert.ErrorAs(t, err, &common.ValidationError{})

	err = s.ChangePassword(context.Background(), user.ID, testPassword, "NewPass_99!")
	assert.NoError(t, err)

	_, _, err = s.Login(context.Background(), testEmail, "NewPass_99!")
	assert.NoError(t, err)

	_, _, err = s.Login(context.Background(), testEmail, testPassword)
	assert.ErrorIs(t, err, ErrAuthenticationFailure)
}
