package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/storelane/catalog-api/internal/utils"
)

const testSecret = "test-secret"

func runWith(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (echo.Context, *httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
	return c, rec, err
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	_, rec, err := runWith(t, JWTAuth(testSecret), "")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthRejectsGarbageToken(t *testing.T) {
	_, rec, err := runWith(t, JWTAuth(testSecret), "Bearer not.a.jwt")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 7, false, 15)
	if err != nil {
		t.Fatal(err)
	}
	_, rec, err := runWith(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthStoresIdentity(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 7, true, 15)
	if err != nil {
		t.Fatal(err)
	}
	c, rec, err := runWith(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if uid, _ := c.Get("user_id").(uint64); uid != 7 {
		t.Errorf("user_id = %v, want 7", c.Get("user_id"))
	}
	if staff, _ := c.Get("is_staff").(bool); !staff {
		t.Errorf("is_staff = %v, want true", c.Get("is_staff"))
	}
}

func TestOptionalJWTAuthPassesAnonymous(t *testing.T) {
	c, rec, err := runWith(t, OptionalJWTAuth(testSecret), "")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if c.Get("user_id") != nil {
		t.Errorf("anonymous request must not carry user_id, got %v", c.Get("user_id"))
	}
}

func TestOptionalJWTAuthTreatsMalformedAsAnonymous(t *testing.T) {
	c, rec, err := runWith(t, OptionalJWTAuth(testSecret), "Bearer broken")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if c.Get("user_id") != nil {
		t.Errorf("malformed token must not carry user_id, got %v", c.Get("user_id"))
	}
}

func TestRequireStaff(t *testing.T) {
	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	for _, tc := range []struct {
		name  string
		staff any
		want  int
	}{
		{"staff", true, http.StatusOK},
		{"non-staff", false, http.StatusForbidden},
		{"unset", nil, http.StatusForbidden},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tc.staff != nil {
				c.Set("is_staff", tc.staff)
			}
			if err := RequireStaff()(next)(c); err != nil {
				t.Fatal(err)
			}
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
