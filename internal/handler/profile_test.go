package handler

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/storelane/catalog-api/internal/utils"
)

func TestChangePasswordWrongOldPassword(t *testing.T) {
	h, mock, done := newAuthTest(t)
	defer done()

	hash, _ := utils.HashPassword("current pass", bcrypt.MinCost)
	mock.ExpectQuery("SELECT .* FROM users WHERE id").
		WithArgs(7).
		WillReturnRows(userRow(hash, true))

	c, rec := postJSON(t, `{"old_password":"not it","new_password":"a proper pass","new_password_confirm":"a proper pass"}`)
	c.Set("user_id", uint64(7))
	if err := h.ChangePassword(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if _, ok := fieldError(t, rec)["old_password"]; !ok {
		t.Errorf("error not keyed by old_password: %s", rec.Body.String())
	}
}

func TestChangePasswordWeakNewPassword(t *testing.T) {
	h, mock, done := newAuthTest(t)
	defer done()

	hash, _ := utils.HashPassword("current pass", bcrypt.MinCost)
	mock.ExpectQuery("SELECT .* FROM users WHERE id").
		WithArgs(7).
		WillReturnRows(userRow(hash, true))

	c, rec := postJSON(t, `{"old_password":"current pass","new_password":"123456789","new_password_confirm":"123456789"}`)
	c.Set("user_id", uint64(7))
	if err := h.ChangePassword(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if _, ok := fieldError(t, rec)["new_password"]; !ok {
		t.Errorf("error not keyed by new_password: %s", rec.Body.String())
	}
}

func TestUpdateMeRejectsTakenEmail(t *testing.T) {
	h, mock, done := newAuthTest(t)
	defer done()

	mock.ExpectQuery("SELECT COUNT(.+) FROM users WHERE email").
		WithArgs("taken@example.com", 7).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	c, rec := postJSON(t, `{"email":"Taken@Example.com"}`)
	c.Set("user_id", uint64(7))
	if err := h.UpdateMe(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if _, ok := fieldError(t, rec)["email"]; !ok {
		t.Errorf("error not keyed by email: %s", rec.Body.String())
	}
}

func TestMeRequiresAuthentication(t *testing.T) {
	h, _, done := newAuthTest(t)
	defer done()

	c, rec := getRequest(t, "/api/auth/me")
	if err := h.Me(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
