package userservice

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is a valid bcrypt hash that matches no issued password. Comparing
// against it keeps login cost uniform when the email lookup misses.
var dummyHash = []byte("$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW")

func (p *Password) set(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), 12)
	if err != nil {
		return err
	}

	p.Plain = pwd
	p.hash = hash

	return nil
}

func (p *Password) compare(pwd string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(p.hash, []byte(pwd))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, err
		}
	}

	return true, nil
}

func compareDummy(pwd string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(pwd))
}
