// This file defines repository methods for the Product model: slug-addressed
// CRUD plus the detail lookup that joins category and creator data. The
// filter/sort/paginate listing lives in product_search.go.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/storelane/catalog-api/internal/model"
	"github.com/storelane/catalog-api/internal/utils"
)

// slugRetryLimit bounds how many numeric suffixes Create tries before giving
// up on a pathological name collision.
const slugRetryLimit = 50

// ProductRepo encapsulates all database queries related to products.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo constructs a ProductRepo with the provided DB handle.
func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

const productColumns = "id, name, slug, description, price, stock_quantity, category_id, image, is_active, created_by, created_at, updated_at"

// Create inserts a new product. The slug derives from the name; when the
// derived slug is already taken, a numeric suffix (-2, -3, ...) is appended
// until the insert succeeds, so two products named alike end up with
// distinct slugs instead of a rejected write.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	base := utils.Slugify(p.Name)
	slug := base
	for attempt := 2; ; attempt++ {
		res, err := r.db.ExecContext(ctx,
			"INSERT INTO products (name, slug, description, price, stock_quantity, category_id, image, is_active, created_by) VALUES (?,?,?,?,?,?,?,?,?)",
			p.Name, slug, p.Description, p.Price.StringFixed(2), p.StockQuantity,
			p.CategoryID, p.Image, p.IsActive, p.CreatedBy)
		if err != nil {
			if isDuplicate(err) && strings.Contains(strings.ToLower(err.Error()), "slug") && attempt <= slugRetryLimit {
				slug = fmt.Sprintf("%s-%d", base, attempt)
				continue
			}
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		p.ID = uint64(id)
		p.Slug = slug
		break
	}

	// Follow-up SELECT to populate default timestamp fields.
	return r.db.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM products WHERE id = ?", p.ID).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

// GetBySlug fetches a product by slug. Returns ErrProductNotFound when the
// slug is unknown.
func (r *ProductRepo) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	var p model.Product
	var price string
	err := r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE slug = ?", slug).
		Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &price, &p.StockQuantity,
			&p.CategoryID, &p.Image, &p.IsActive, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, err
	}
	return &p, nil
}

// ProductDetail is a product joined with the names a detail response embeds:
// the category (when set) and the creating user's username (when set).
type ProductDetail struct {
	Product  model.Product
	Category *model.Category // nil when the product has no category
	Creator  string          // empty when created_by is NULL
}

// GetDetailBySlug loads a product together with its category row and the
// creator's username in one query.
func (r *ProductRepo) GetDetailBySlug(ctx context.Context, slug string) (*ProductDetail, error) {
	const q = `SELECT p.id, p.name, p.slug, p.description, p.price, p.stock_quantity,
	       p.category_id, p.image, p.is_active, p.created_by, p.created_at, p.updated_at,
	       c.id, c.name, c.slug, c.description,
	       (SELECT COUNT(*) FROM products pc WHERE pc.category_id = c.id AND pc.is_active = 1),
	       c.created_at, c.updated_at,
	       u.username
	  FROM products p
	  LEFT JOIN categories c ON c.id = p.category_id
	  LEFT JOIN users u ON u.id = p.created_by
	 WHERE p.slug = ?`
	var (
		d        ProductDetail
		price    string
		catID    sql.NullInt64
		catName  sql.NullString
		catSlug  sql.NullString
		catDesc  sql.NullString
		catCount sql.NullInt64
		catCre   sql.NullTime
		catUpd   sql.NullTime
		username sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, slug).Scan(
		&d.Product.ID, &d.Product.Name, &d.Product.Slug, &d.Product.Description,
		&price, &d.Product.StockQuantity, &d.Product.CategoryID, &d.Product.Image,
		&d.Product.IsActive, &d.Product.CreatedBy, &d.Product.CreatedAt, &d.Product.UpdatedAt,
		&catID, &catName, &catSlug, &catDesc, &catCount, &catCre, &catUpd, &username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if d.Product.Price, err = decimal.NewFromString(price); err != nil {
		return nil, err
	}
	if catID.Valid {
		d.Category = &model.Category{
			ID:           uint64(catID.Int64),
			Name:         catName.String,
			Slug:         catSlug.String,
			Description:  catDesc.String,
			ProductCount: catCount.Int64,
			CreatedAt:    catCre.Time,
			UpdatedAt:    catUpd.Time,
		}
	}
	d.Creator = username.String
	return &d, nil
}

// ProductUpdate lists the mutable product fields for partial updates. Nil
// pointers mean "leave unchanged". Slug and created_by are immutable after
// creation and deliberately absent here.
type ProductUpdate struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	StockQuantity *int
	CategoryID    *sql.NullInt64
	Image         *string
	IsActive      *bool
}

// Update merges only the supplied fields into the product row addressed by
// id. Renaming a product does not re-derive its slug.
func (r *ProductRepo) Update(ctx context.Context, id uint64, upd ProductUpdate) error {
	set := []string{}
	args := []any{}
	if upd.Name != nil {
		set = append(set, "name=?")
		args = append(args, *upd.Name)
	}
	if upd.Description != nil {
		set = append(set, "description=?")
		args = append(args, *upd.Description)
	}
	if upd.Price != nil {
		set = append(set, "price=?")
		args = append(args, upd.Price.StringFixed(2))
	}
	if upd.StockQuantity != nil {
		set = append(set, "stock_quantity=?")
		args = append(args, *upd.StockQuantity)
	}
	if upd.CategoryID != nil {
		set = append(set, "category_id=?")
		args = append(args, *upd.CategoryID)
	}
	if upd.Image != nil {
		set = append(set, "image=?")
		args = append(args, nullable(*upd.Image))
	}
	if upd.IsActive != nil {
		set = append(set, "is_active=?")
		args = append(args, *upd.IsActive)
	}
	if len(set) == 0 {
		return nil
	}
	set = append(set, "updated_at=CURRENT_TIMESTAMP")
	args = append(args, id)
	_, err := r.db.ExecContext(ctx,
		"UPDATE products SET "+strings.Join(set, ", ")+" WHERE id=?", args...)
	return err
}

// Delete removes the product row. Returns ErrProductNotFound when nothing
// was deleted.
func (r *ProductRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}

// CategoryIDBySlug resolves a category slug (case-insensitive) to its id for
// write-path validation of the category reference.
func (r *ProductRepo) CategoryIDBySlug(ctx context.Context, slug string) (uint64, error) {
	var id uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM categories WHERE LOWER(slug)=LOWER(?) LIMIT 1", slug).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrCategoryNotFound
	}
	return id, err
}
