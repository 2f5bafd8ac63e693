package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaleSessionCookie(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	// a garbage cookie demotes the request to anonymous instead of failing it
	get, err := http.NewRequest(http.MethodGet, ts.URL+"/api/posts", nil)
	assert.NoError(t, err)
	get.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "ABCDEFGHIJKLMNOPQRSTUVWXYZ"})

	status, data := ts.do(t, get)
	assert.Equal(t, http.StatusOK, status)
	assert.NotNil(t, data["posts"])

	// anonymous requests still cannot mutate
	body, contentType := multipartBody(t, map[string]string{"title": "Nope"}, nil)
	post, err := http.NewRequest(http.MethodPost, ts.URL+"/api/posts", body)
	assert.NoError(t, err)
	post.Header.Set("Content-Type", contentType)
	post.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "garbage"})

	status, _ = ts.do(t, post)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	status, _ := ts.get(t, "/api/nothing-here")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = ts.delete(t, "/api/health")
	assert.Equal(t, http.StatusMethodNotAllowed, status)
}

func TestVaryCookieHeader(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	res, err := ts.Client().Get(ts.URL + "/api/health")
	assert.NoError(t, err)
	defer res.Body.Close()

	assert.Contains(t, res.Header.Values("Vary"), "Cookie")
}
