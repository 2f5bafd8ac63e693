package main

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	// Fixed sliding window per client: 5 login attempts per 15 minutes,
	// enforced before credentials are even looked at.
	loginLimiter := httprate.Limit(5, 15*time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(app.rateLimitErrorResponse),
	)

	// auth
	router.Handler(http.MethodPost, "/api/auth/login", loginLimiter(http.HandlerFunc(app.loginUserHandler)))
	router.HandlerFunc(http.MethodPost, "/api/auth/logout", app.logoutUserHandler)
	router.HandlerFunc(http.MethodGet, "/api/auth/me", app.currentUserHandler)
	router.HandlerFunc(http.MethodPut, "/api/auth/password", app.requireAuth(app.changePasswordHandler))

	// posts
	router.HandlerFunc(http.MethodGet, "/api/posts", app.listPostsHandler)
	router.HandlerFunc(http.MethodPost, "/api/posts", app.requireAuth(app.createPostHandler))
	router.HandlerFunc(http.MethodGet, "/api/posts/:id", app.getPostHandler)
	router.HandlerFunc(http.MethodPut, "/api/posts/:id", app.requireAuth(app.updatePostHandler))
	router.HandlerFunc(http.MethodPut, "/api/posts/:id/status", app.requireAuth(app.updatePostStatusHandler))
	router.HandlerFunc(http.MethodDelete, "/api/posts/:id", app.requireAuth(app.deletePostHandler))
	router.HandlerFunc(http.MethodGet, "/api/blog-stats", app.requireAuth(app.blogStatsHandler))

	router.HandlerFunc(http.MethodGet, "/api/health", app.healthCheckHandler)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   app.config.origins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	return app.recoverPanic(corsMiddleware.Handler(app.logRequest(app.authenticate(router))))
}
