package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"

	"github.com/storelane/catalog-api/internal/model"
)

func TestProductCreateRetriesSlugOnCollision(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewProductRepo(db)

	now := time.Now()
	dup := errors.New("Error 1062 (23000): Duplicate entry 'wireless-mouse' for key 'products.slug'")
	mock.ExpectExec("INSERT INTO products").
		WithArgs("Wireless Mouse", "wireless-mouse", "a mouse", "19.99", 5,
			sqlmock.AnyArg(), sqlmock.AnyArg(), true, sqlmock.AnyArg()).
		WillReturnError(dup)
	mock.ExpectExec("INSERT INTO products").
		WithArgs("Wireless Mouse", "wireless-mouse-2", "a mouse", "19.99", 5,
			sqlmock.AnyArg(), sqlmock.AnyArg(), true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery("SELECT created_at, updated_at FROM products").
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	p := &model.Product{
		Name:          "Wireless Mouse",
		Description:   "a mouse",
		Price:         decimal.RequireFromString("19.99"),
		StockQuantity: 5,
		IsActive:      true,
		CreatedBy:     sql.NullInt64{Int64: 7, Valid: true},
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID != 11 || p.Slug != "wireless-mouse-2" {
		t.Errorf("got id=%d slug=%q", p.ID, p.Slug)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestProductCreateOtherDuplicatePassesThrough(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewProductRepo(db)

	// a duplicate on some other index must not trigger the slug retry loop
	dup := errors.New("Error 1062 (23000): Duplicate entry '5' for key 'products.some_other_index'")
	mock.ExpectExec("INSERT INTO products").WillReturnError(dup)

	p := &model.Product{Name: "Mouse", Price: decimal.RequireFromString("1.00")}
	if err := repo.Create(context.Background(), p); err != dup {
		t.Errorf("err = %v, want the raw duplicate error", err)
	}
}

func TestProductGetBySlugNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewProductRepo(db)

	mock.ExpectQuery("SELECT .* FROM products WHERE slug").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetBySlug(context.Background(), "ghost"); err != ErrProductNotFound {
		t.Errorf("err = %v, want ErrProductNotFound", err)
	}
}

func TestProductDeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewProductRepo(db)

	mock.ExpectExec("DELETE FROM products").
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 99); err != ErrProductNotFound {
		t.Errorf("err = %v, want ErrProductNotFound", err)
	}
}

func TestProductUpdateKeepsSlug(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewProductRepo(db)

	name := "Renamed Mouse"
	price := decimal.RequireFromString("24.5")
	mock.ExpectExec(`UPDATE products SET name=\?, price=\?, updated_at=CURRENT_TIMESTAMP WHERE id=\?`).
		WithArgs("Renamed Mouse", "24.50", 11).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Update(context.Background(), 11, ProductUpdate{Name: &name, Price: &price})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
