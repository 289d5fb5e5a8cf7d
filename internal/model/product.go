package model

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Availability labels derived from stock_quantity. The low-stock band covers
// quantities 1..9; ten or more counts as fully in stock.
const (
	AvailabilityOutOfStock = "Out of Stock"
	AvailabilityLowStock   = "Low Stock"
	AvailabilityInStock    = "In Stock"
)

// LowStockThreshold is the stock quantity at which a product stops being
// reported as "Low Stock".
const LowStockThreshold = 10

// Product represents an item in the catalog as stored in the `products`
// table. Price uses a fixed-point decimal so that DECIMAL(10,2) values
// round-trip without floating point drift.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – display name.
//  Slug          – unique URL-safe identifier derived from Name; collisions
//                  get a numeric suffix.
//  Description   – free-form text.
//  Price         – unit price, always > 0.
//  StockQuantity – units on hand, never negative.
//  CategoryID    – owning category (nullable; set NULL when the category is
//                  deleted).
//  Image         – optional image path or URL (nullable).
//  IsActive      – soft visibility flag; inactive products are hidden from
//                  non-staff read paths.
//  CreatedBy     – user who created the product (nullable).
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Product struct {
	ID            uint64          // products.id
	Name          string          // products.name
	Slug          string          // products.slug
	Description   string          // products.description
	Price         decimal.Decimal // products.price
	StockQuantity int             // products.stock_quantity
	CategoryID    sql.NullInt64   // products.category_id (nullable)
	Image         sql.NullString  // products.image (nullable)
	IsActive      bool            // products.is_active
	CreatedBy     sql.NullInt64   // products.created_by (nullable)
	CreatedAt     time.Time       // products.created_at
	UpdatedAt     time.Time       // products.updated_at
}

// InStock reports whether at least one unit is on hand.
func (p Product) InStock() bool {
	return p.StockQuantity > 0
}

// AvailabilityStatus buckets the stock quantity into the three labels used
// by the storefront: zero is out of stock, below ten is low stock, anything
// else is in stock.
func (p Product) AvailabilityStatus() string {
	return AvailabilityFor(p.StockQuantity)
}

// AvailabilityFor maps a raw stock quantity to its availability label. Used
// where only the quantity is at hand, such as list rows.
func AvailabilityFor(stock int) string {
	switch {
	case stock == 0:
		return AvailabilityOutOfStock
	case stock < LowStockThreshold:
		return AvailabilityLowStock
	default:
		return AvailabilityInStock
	}
}
