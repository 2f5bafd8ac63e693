package userservice

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base32"
	"errors"
	"time"
)

func hashToken(token string) []byte {
	hash := sha256.Sum256([]byte(token))
	return hash[:]
}

func newSession(userID int, email string, ttl time.Duration) (*Session, error) {
	randomBytes := make([]byte, 16)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return nil, err
	}

	session := &Session{
		Plain:  base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes),
		UserID: userID,
		Email:  email,
		Expiry: time.Now().Add(ttl),
	}

	session.Hash = hashToken(session.Plain)

	return session, nil
}

func (m *DBModel) createSession(ctx context.Context, userID int, email string, ttl time.Duration) (*Session, error) {
	session, err := newSession(userID, email, ttl)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO sessions (hash, user_id, email, expiry)
		VALUES ($1, $2, $3, $4)`

	_, err = m.db.ExecContext(ctx, query, session.Hash, session.UserID, session.Email, session.Expiry)
	if err != nil {
		return nil, err
	}

	return session, nil
}

func (m *DBModel) getSession(ctx context.Context, hash []byte) (*Session, error) {
	query := `
		SELECT hash, user_id, email, expiry
		FROM sessions
		WHERE hash = $1 AND expiry > $2`

	var s Session

	err := m.db.QueryRowContext(ctx, query, hash, time.Now()).Scan(&s.Hash, &s.UserID, &s.Email, &s.Expiry)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &s, nil
}

func (m *DBModel) deleteSession(ctx context.Context, hash []byte) error {
	query := `
		DELETE FROM sessions
		WHERE hash = $1`

	res, err := m.db.ExecContext(ctx, query, hash)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (m *DBModel) deleteExpiredSessions(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM sessions
		WHERE expiry <= $1`

	res, err := m.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
