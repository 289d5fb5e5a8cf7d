package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/storelane/catalog-api/internal/config"
	"github.com/storelane/catalog-api/internal/repository"
	"github.com/storelane/catalog-api/internal/utils"
)

func testConfig() config.Config {
	return config.Config{
		Env:            "test",
		Port:           "0",
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     bcrypt.MinCost,
	}
}

func newAuthTest(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	h := NewAuthHandler(testConfig(), repository.NewUserRepo(db), repository.NewTokenRepo(db))
	return h, mock, func() { db.Close() }
}

func postJSON(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func fieldError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	errs, ok := decodeBody(t, rec)["errors"].(map[string]any)
	if !ok {
		t.Fatalf("response has no errors object: %s", rec.Body.String())
	}
	return errs
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing username", `{}`, "username"},
		{"missing email", `{"username":"bob"}`, "email"},
		{"password mismatch", `{"username":"bob","email":"b@x.io","first_name":"Bob","last_name":"B","password":"a proper pass","password_confirm":"other"}`, "password"},
		{"password all numeric", `{"username":"bob","email":"b@x.io","first_name":"Bob","last_name":"B","password":"123456789","password_confirm":"123456789"}`, "password"},
		{"password too short", `{"username":"bob","email":"b@x.io","first_name":"Bob","last_name":"B","password":"short","password_confirm":"short"}`, "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, _, done := newAuthTest(t)
			defer done()

			c, rec := postJSON(t, tc.body)
			if err := h.Register(c); err != nil {
				t.Fatal(err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if _, ok := fieldError(t, rec)[tc.wantField]; !ok {
				t.Errorf("error not keyed by %q: %s", tc.wantField, rec.Body.String())
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, mock, done := newAuthTest(t)
	defer done()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'b@x.io' for key 'users.email'"))

	c, rec := postJSON(t, `{"username":"bob","email":"B@x.io","first_name":"Bob","last_name":"B","password":"a proper pass","password_confirm":"a proper pass"}`)
	if err := h.Register(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if _, ok := fieldError(t, rec)["email"]; !ok {
		t.Errorf("error not keyed by email: %s", rec.Body.String())
	}
}

func userRow(passwordHash string, active bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "first_name", "last_name",
		"phone", "address", "is_active", "is_staff", "created_at", "updated_at",
	}).AddRow(7, "bob", "b@x.io", passwordHash, "Bob", "B", nil, nil, active, false, now, now)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	h, mock, done := newAuthTest(t)
	defer done()

	hash, _ := utils.HashPassword("a proper pass", bcrypt.MinCost)
	mock.ExpectQuery("SELECT .* FROM users WHERE username").
		WithArgs("bob").
		WillReturnRows(userRow(hash, false))

	c, rec := postJSON(t, `{"username":"bob","password":"a proper pass"}`)
	if err := h.Login(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	h, mock, done := newAuthTest(t)
	defer done()

	hash, _ := utils.HashPassword("a proper pass", bcrypt.MinCost)
	mock.ExpectQuery("SELECT .* FROM users WHERE username").
		WithArgs("bob").
		WillReturnRows(userRow(hash, true))

	c, rec := postJSON(t, `{"username":"bob","password":"not it"}`)
	if err := h.Login(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestLogoutUnknownToken(t *testing.T) {
	h, mock, done := newAuthTest(t)
	defer done()

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}))

	c, rec := postJSON(t, `{"refresh":"deadbeef"}`)
	if err := h.Logout(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestLogoutAlreadyBlacklisted(t *testing.T) {
	h, mock, done := newAuthTest(t)
	defer done()

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(7, time.Now().Add(time.Hour), time.Now()))

	c, rec := postJSON(t, `{"refresh":"deadbeef"}`)
	if err := h.Logout(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRefreshReturnsAccessOnly(t *testing.T) {
	h, mock, done := newAuthTest(t)
	defer done()

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(7, time.Now().Add(time.Hour), nil))
	mock.ExpectQuery("SELECT .* FROM users WHERE id").
		WithArgs(7).
		WillReturnRows(userRow("x", true))

	c, rec := postJSON(t, `{"refresh":"deadbeef"}`)
	if err := h.Refresh(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["access"] == "" || body["access"] == nil {
		t.Error("no access token in response")
	}
	if _, present := body["refresh"]; present {
		t.Error("refresh token must not be rotated on refresh")
	}
}
