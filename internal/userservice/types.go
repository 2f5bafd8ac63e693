package userservice

import (
	"database/sql"
	"time"

	"github.com/sushihentaime/pressbox/internal/common"
)

const (
	// SessionTokenTime is how long an issued session stays valid.
	SessionTokenTime time.Duration = 24 * time.Hour

	// sessionCacheTime bounds how long a validated session is served from
	// the in-process cache before hitting the sessions table again.
	sessionCacheTime time.Duration = time.Minute
)

var (
	AnonymousIdentity = SessionIdentity{}
)

type UserService struct {
	m *DBModel
	c *common.Cache
}

type DBModel struct {
	db *sql.DB
}

type User struct {
	ID        int        `json:"id"`
	Email     string     `json:"email"`
	Password  Password   `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
	IsActive  bool       `json:"-"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

// Session is a durable, cookie-delivered login session. Only the sha256 hash
// of the token is stored; Plain is populated solely on creation.
type Session struct {
	Plain  string    `json:"-"`
	Hash   []byte    `json:"-"`
	UserID int       `json:"user_id"`
	Email  string    `json:"email"`
	Expiry time.Time `json:"expiry"`
}

// SessionIdentity is the subset of a session bound into the request context.
type SessionIdentity struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
}
