package userservice

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

var (
	ErrDuplicateEmail = errors.New("duplicate email")
	ErrNotFound       = errors.New("user not found")
)

func newUserModel(db *sql.DB) *DBModel {
	return &DBModel{db: db}
}

func (m *DBModel) insertUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (email, password)
		VALUES ($1, $2)
		RETURNING id, created_at, is_active`

	err := m.db.QueryRowContext(ctx, query, u.Email, u.Password.hash).Scan(&u.ID, &u.CreatedAt, &u.IsActive)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "users_email_key" {
			return ErrDuplicateEmail
		}
		return err
	}

	return nil
}

func (m *DBModel) getUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, password, created_at, last_login, is_active
		FROM users
		WHERE email = $1 AND is_active = true`

	var u User

	err := m.db.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.Email, &u.Password.hash, &u.CreatedAt, &u.LastLogin, &u.IsActive)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

func (m *DBModel) getUserByID(ctx context.Context, id int) (*User, error) {
	query := `
		SELECT id, email, password, created_at, last_login, is_active
		FROM users
		WHERE id = $1 AND is_active = true`

	var u User

	err := m.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.Password.hash, &u.CreatedAt, &u.LastLogin, &u.IsActive)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

func (m *DBModel) updateLastLogin(ctx context.Context, u *User) error {
	query := `
		UPDATE users
		SET last_login = now()
		WHERE id = $1
		RETURNING last_login`

	var lastLogin time.Time
	if err := m.db.QueryRowContext(ctx, query, u.ID).Scan(&lastLogin); err != nil {
		return err
	}

	u.LastLogin = &lastLogin
	return nil
}

func (m *DBModel) updateUserPassword(ctx context.Context, pwd Password, id int) error {
	query := `
		UPDATE users
		SET password = $1
		WHERE id = $2`

	_, err := m.db.ExecContext(ctx, query, pwd.hash, id)
	return err
}
