package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sushihentaime/pressbox/internal/common"
	"github.com/sushihentaime/pressbox/internal/userservice"
)

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			ip     = r.RemoteAddr
			method = r.Method
			proto  = r.Proto
			uri    = r.URL.RequestURI()
		)

		app.logger.Info("request from", slog.String("method", method), slog.String("uri", uri), slog.String("remote_addr", ip), slog.String("proto", proto))

		next.ServeHTTP(w, r)
	})
}

// authenticate resolves the session cookie into an identity. A missing,
// malformed or expired cookie yields the anonymous identity; rejecting
// happens at requireAuth so public routes stay reachable with a stale cookie.
func (app *application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Cookie")

		token := app.readSessionCookie(r)
		if token == "" {
			r = app.createSessionContext(r, &userservice.AnonymousIdentity)
			next.ServeHTTP(w, r)
			return
		}

		identity, err := app.userService.ValidateSession(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, userservice.ErrNotFound):
				r = app.createSessionContext(r, &userservice.AnonymousIdentity)
			case errors.As(err, &common.ValidationError{}):
				r = app.createSessionContext(r, &userservice.AnonymousIdentity)
			default:
				app.serverErrorResponse(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		r = app.createSessionContext(r, identity)
		next.ServeHTTP(w, r)
	})
}

// requireAuth gates mutation endpoints: no valid session, no handler.
func (app *application) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := app.getSessionContext(r)
		if identity == nil || *identity == userservice.AnonymousIdentity {
			app.authenticationRequiredErrorResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}
