package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/storelane/catalog-api/internal/model"
)

func TestCategoryCreateDerivesSlug(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewCategoryRepo(db)

	now := time.Now()
	mock.ExpectExec("INSERT INTO categories").
		WithArgs("Home & Garden", "home-garden", "tools and plants").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery("SELECT created_at, updated_at FROM categories").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	cat := &model.Category{Name: "Home & Garden", Description: "tools and plants"}
	if err := repo.Create(context.Background(), cat); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if cat.ID != 3 || cat.Slug != "home-garden" {
		t.Errorf("got id=%d slug=%q", cat.ID, cat.Slug)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCategoryCreateDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewCategoryRepo(db)

	mock.ExpectExec("INSERT INTO categories").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'books' for key 'categories.slug'"))

	err = repo.Create(context.Background(), &model.Category{Name: "Books"})
	if err != ErrCategoryExists {
		t.Errorf("err = %v, want ErrCategoryExists", err)
	}
}

func TestCategoryDeleteDetachesProducts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewCategoryRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM categories").
		WithArgs("books").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectExec(`UPDATE products SET category_id = NULL WHERE category_id = \?`).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec("DELETE FROM categories").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.DeleteBySlug(context.Background(), "books"); err != nil {
		t.Fatalf("DeleteBySlug: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCategoryDeleteUnknownSlug(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewCategoryRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM categories").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	if err := repo.DeleteBySlug(context.Background(), "ghost"); err != ErrCategoryNotFound {
		t.Errorf("err = %v, want ErrCategoryNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
