// This file defines repository methods for the Category model. Categories
// are looked up by slug everywhere in the API; the numeric ID stays an
// internal join key. The derived ProductCount field is populated through a
// correlated subquery so list and detail responses never need a second
// round-trip.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/storelane/catalog-api/internal/model"
	"github.com/storelane/catalog-api/internal/utils"
)

// CategoryRepo encapsulates all database queries related to categories.
type CategoryRepo struct {
	db *sql.DB
}

// NewCategoryRepo constructs a CategoryRepo with the provided DB handle.
func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

const categorySelect = `SELECT c.id, c.name, c.slug, c.description,
	       (SELECT COUNT(*) FROM products p WHERE p.category_id = c.id AND p.is_active = 1) AS product_count,
	       c.created_at, c.updated_at
	  FROM categories c`

// Create inserts a new category. The slug is derived from the name when the
// caller leaves it empty; derivation is deterministic so re-creating a
// deleted category yields the same slug. A duplicate name or slug returns
// ErrCategoryExists.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	if c.Slug == "" {
		c.Slug = utils.Slugify(c.Name)
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (name, slug, description) VALUES (?, ?, ?)",
		c.Name, c.Slug, c.Description)
	if err != nil {
		if isDuplicate(err) {
			return ErrCategoryExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)

	// Follow-up SELECT to populate default timestamp fields.
	return r.db.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM categories WHERE id = ?", c.ID).
		Scan(&c.CreatedAt, &c.UpdatedAt)
}

// GetBySlug fetches a category by its slug, including the active product
// count. Returns ErrCategoryNotFound when no row matches.
func (r *CategoryRepo) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var c model.Category
	err := r.db.QueryRowContext(ctx, categorySelect+" WHERE c.slug = ?", slug).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ProductCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListAll returns every category ordered by name, the catalog's default
// category ordering.
func (r *CategoryRepo) ListAll(ctx context.Context) ([]*model.Category, error) {
	rows, err := r.db.QueryContext(ctx, categorySelect+" ORDER BY c.name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Category{}
	for rows.Next() {
		c := new(model.Category)
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ProductCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes the name and/or description of a category addressed by
// slug. Nil pointers leave the field untouched. The slug itself is immutable
// after creation. Returns ErrCategoryNotFound when no row is affected and
// ErrCategoryExists on a duplicate name.
func (r *CategoryRepo) Update(ctx context.Context, slug string, name, description *string) error {
	set := []string{}
	args := []any{}
	if name != nil {
		set = append(set, "name=?")
		args = append(args, *name)
	}
	if description != nil {
		set = append(set, "description=?")
		args = append(args, *description)
	}
	if len(set) == 0 {
		return nil
	}
	q := "UPDATE categories SET " + strings.Join(set, ", ") + ", updated_at=CURRENT_TIMESTAMP WHERE slug=?"
	args = append(args, slug)
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		if isDuplicate(err) {
			return ErrCategoryExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is zero both for a missing row and for a no-op update;
		// distinguish with an existence probe.
		var id uint64
		if err := r.db.QueryRowContext(ctx, "SELECT id FROM categories WHERE slug=?", slug).Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCategoryNotFound
			}
			return err
		}
	}
	return nil
}

// DeleteBySlug removes a category. Products referencing it are detached
// (category_id set to NULL) in the same transaction rather than deleted, so
// a category removal never destroys catalog entries. Returns
// ErrCategoryNotFound when the slug is unknown.
func (r *CategoryRepo) DeleteBySlug(ctx context.Context, slug string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	var id uint64
	if err = tx.QueryRowContext(ctx, "SELECT id FROM categories WHERE slug = ?", slug).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrCategoryNotFound
		}
		return err
	}
	if _, err = tx.ExecContext(ctx, "UPDATE products SET category_id = NULL WHERE category_id = ?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
		return err
	}
	return nil
}
