package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/sushihentaime/pressbox/internal/common"
	"github.com/sushihentaime/pressbox/internal/imageservice"
	"github.com/sushihentaime/pressbox/internal/postservice"
	"github.com/sushihentaime/pressbox/internal/userservice"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "Test_1234!"
)

func newTestApplication(t *testing.T) (*application, *sql.DB) {
	t.Helper()

	db := common.TestDB("file://../migrations", t)

	cfg := &Config{
		Port:           "4000",
		Environment:    "test",
		Version:        "test",
		AllowedOrigins: "http://localhost:3000",
		ImageWorkers:   2,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	app := &application{
		config:       cfg,
		logger:       logger,
		userService:  userservice.NewUserService(db, cache),
		postService:  postservice.NewPostService(db),
		imageService: imageservice.NewImageService(cfg.ImageWorkers, logger),
	}

	return app, db
}

// testServer wraps httptest.Server with a cookie jar so session cookies
// survive across requests the way a browser would keep them.
type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	t.Helper()

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	ts.Client().Jar = jar

	return &testServer{ts}
}

func (ts *testServer) do(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var data envelope
	if len(body) > 0 {
		if err := json.Unmarshal(body, &data); err != nil {
			t.Fatalf("invalid JSON response %q: %v", body, err)
		}
	}

	return res.StatusCode, data
}

func (ts *testServer) get(t *testing.T, path string) (int, envelope) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}

	return ts.do(t, req)
}

func (ts *testServer) sendJSON(t *testing.T, method, path string, body any) (int, envelope) {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequest(method, ts.URL+path, bytes.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	return ts.do(t, req)
}

func (ts *testServer) postJSON(t *testing.T, path string, body any) (int, envelope) {
	return ts.sendJSON(t, http.MethodPost, path, body)
}

func (ts *testServer) putJSON(t *testing.T, path string, body any) (int, envelope) {
	return ts.sendJSON(t, http.MethodPut, path, body)
}

func (ts *testServer) delete(t *testing.T, path string) (int, envelope) {
	t.Helper()

	req, err := http.NewRequest(http.MethodDelete, ts.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}

	return ts.do(t, req)
}

type formFile struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string]string, file *formFile) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			t.Fatal(err)
		}
	}

	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.field, file.filename))
		header.Set("Content-Type", file.contentType)

		part, err := w.CreatePart(header)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(file.data); err != nil {
			t.Fatal(err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	return buf, w.FormDataContentType()
}

func (ts *testServer) sendForm(t *testing.T, method, path string, fields map[string]string, file *formFile) (int, envelope) {
	t.Helper()

	body, contentType := multipartBody(t, fields, file)

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", contentType)

	return ts.do(t, req)
}

// createTestAdmin provisions the admin account and returns its user id.
func createTestAdmin(t *testing.T, app *application, db *sql.DB) int {
	t.Helper()

	err := app.userService.EnsureAdmin(context.Background(), testAdminEmail, testAdminPassword)
	assert.NoError(t, err)

	var id int
	err = db.QueryRow("SELECT id FROM users WHERE email = $1", testAdminEmail).Scan(&id)
	assert.NoError(t, err)

	return id
}

// login authenticates through the HTTP surface so the jar picks up the
// session cookie. Counts against the login rate limit.
func (ts *testServer) login(t *testing.T, email, password string) {
	t.Helper()

	status, _ := ts.postJSON(t, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	assert.Equal(t, http.StatusOK, status)
}
