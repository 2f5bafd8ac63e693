package main

import (
	"context"
	"net/http"

	"github.com/sushihentaime/pressbox/internal/userservice"
)

type contextKey string

const sessionContextKey = contextKey("session")

func (app *application) createSessionContext(r *http.Request, identity *userservice.SessionIdentity) *http.Request {
	ctx := context.WithValue(r.Context(), sessionContextKey, identity)
	return r.WithContext(ctx)
}

func (app *application) getSessionContext(r *http.Request) *userservice.SessionIdentity {
	identity, ok := r.Context().Value(sessionContextKey).(*userservice.SessionIdentity)
	if !ok {
		return nil
	}
	return identity
}
