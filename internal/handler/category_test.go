package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/storelane/catalog-api/internal/repository"
)

func newCategoryTest(t *testing.T) (*CategoryHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	return NewCategoryHandler(repository.NewCategoryRepo(db)), mock, func() { db.Close() }
}

func categoryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "slug", "description", "product_count", "created_at", "updated_at",
	})
}

func TestCategoryListIncludesProductCount(t *testing.T) {
	h, mock, done := newCategoryTest(t)
	defer done()

	now := time.Now()
	mock.ExpectQuery("FROM categories c ORDER BY c.name").
		WillReturnRows(categoryRows().
			AddRow(1, "Books", "books", "", 12, now, now).
			AddRow(2, "Music", "music", "", 0, now, now))

	c, rec := getRequest(t, "/api/categories")
	if err := h.List(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	items := decodeBody(t, rec)["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	first := items[0].(map[string]any)
	if first["product_count"].(float64) != 12 {
		t.Errorf("product_count = %v, want 12", first["product_count"])
	}
}

func TestCategoryGetUnknownSlug(t *testing.T) {
	h, mock, done := newCategoryTest(t)
	defer done()

	mock.ExpectQuery("FROM categories c WHERE c.slug").
		WithArgs("ghost").
		WillReturnRows(categoryRows())

	c, rec := getRequest(t, "/api/categories/ghost")
	c.SetPath("/api/categories/:slug")
	c.SetParamNames("slug")
	c.SetParamValues("ghost")
	if err := h.Get(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCategoryCreateRequiresName(t *testing.T) {
	h, _, done := newCategoryTest(t)
	defer done()

	c, rec := postJSON(t, `{"description":"nameless"}`)
	if err := h.Create(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if _, ok := fieldError(t, rec)["name"]; !ok {
		t.Errorf("error not keyed by name: %s", rec.Body.String())
	}
}

func TestCategoryCreateDuplicateName(t *testing.T) {
	h, mock, done := newCategoryTest(t)
	defer done()

	mock.ExpectExec("INSERT INTO categories").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'books' for key 'categories.slug'"))

	c, rec := postJSON(t, `{"name":"Books"}`)
	if err := h.Create(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if _, ok := fieldError(t, rec)["name"]; !ok {
		t.Errorf("error not keyed by name: %s", rec.Body.String())
	}
}
