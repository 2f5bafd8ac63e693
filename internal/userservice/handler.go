package userservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sushihentaime/pressbox/internal/common"
)

var (
	ErrAuthenticationFailure = fmt.Errorf("invalid email or password")

	// ErrUserVanished marks a session whose backing user row is gone or
	// deactivated. The session must be treated as invalid even though the
	// token itself has not expired.
	ErrUserVanished = fmt.Errorf("session user no longer exists")
)

func NewUserService(db *sql.DB, c *common.Cache) *UserService {
	return &UserService{m: newUserModel(db), c: c}
}

// Login verifies the credentials of an active user, updates last_login and
// issues a new session. Absent users cost a bcrypt comparison too, so lookup
// misses are not distinguishable by timing.
func (s *UserService) Login(ctx context.Context, email, password string) (*User, *Session, error) {
	v := common.NewValidator()
	validateEmail(v, email)
	validatePasswordProvided(v, password)
	if !v.Valid() {
		return nil, nil, v.ValidationError()
	}

	user, err := s.m.getUserByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			compareDummy(password)
			return nil, nil, ErrAuthenticationFailure
		default:
			return nil, nil, err
		}
	}

	ok, err := user.Password.compare(password)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrAuthenticationFailure
	}

	if err := s.m.updateLastLogin(ctx, user); err != nil {
		return nil, nil, err
	}

	session, err := s.m.createSession(ctx, user.ID, user.Email, SessionTokenTime)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

// ValidateSession resolves the identity bound to an unexpired session token.
// Hits are cached briefly; the cache entry is dropped on logout.
func (s *UserService) ValidateSession(ctx context.Context, token string) (*SessionIdentity, error) {
	v := common.NewValidator()
	ValidateSessionToken(v, token)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	hash := hashToken(token)

	if cached, ok := s.c.Get(common.CacheKeySession(hash)); ok {
		identity := cached.(SessionIdentity)
		return &identity, nil
	}

	session, err := s.m.getSession(ctx, hash)
	if err != nil {
		return nil, err
	}

	identity := SessionIdentity{UserID: session.UserID, Email: session.Email}
	s.c.Set(common.CacheKeySession(hash), identity, sessionCacheTime)

	return &identity, nil
}

// Logout destroys the session. Destroying an absent session returns
// ErrNotFound so the caller can log it, but is otherwise harmless.
func (s *UserService) Logout(ctx context.Context, token string) error {
	v := common.NewValidator()
	ValidateSessionToken(v, token)
	if !v.Valid() {
		return v.ValidationError()
	}

	hash := hashToken(token)
	s.c.Delete(common.CacheKeySession(hash))

	return s.m.deleteSession(ctx, hash)
}

// CurrentUser resolves the full profile behind a session. Deactivation is
// detected lazily here, not at the middleware gate.
func (s *UserService) CurrentUser(ctx context.Context, token string) (*User, error) {
	identity, err := s.ValidateSession(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.m.getUserByID(ctx, identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrUserVanished
		default:
			return nil, err
		}
	}

	return user, nil
}

// ChangePassword re-hashes after verifying the current password.
func (s *UserService) ChangePassword(ctx context.Context, userID int, current, newPassword string) error {
	v := common.NewValidator()
	validatePassword(v, newPassword)
	if !v.Valid() {
		return v.ValidationError()
	}

	user, err := s.m.getUserByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := user.Password.compare(current)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAuthenticationFailure
	}

	if err := user.Password.set(newPassword); err != nil {
		return err
	}

	return s.m.updateUserPassword(ctx, user.Password, user.ID)
}

// EnsureAdmin idempotently creates the bootstrap admin account.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	v := common.NewValidator()
	validateEmail(v, email)
	validatePasswordProvided(v, password)
	if !v.Valid() {
		return v.ValidationError()
	}

	_, err := s.m.getUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	u := User{Email: email}
	if err := u.Password.set(password); err != nil {
		return err
	}

	err = s.m.insertUser(ctx, &u)
	if errors.Is(err, ErrDuplicateEmail) {
		return nil
	}
	return err
}

// DeleteExpiredSessions reaps expired session rows. Expiry is cooperative:
// queries already ignore expired rows, this just keeps the table small.
func (s *UserService) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	return s.m.deleteExpiredSessions(ctx)
}
