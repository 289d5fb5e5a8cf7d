package repository

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxPageSize caps page_size on list endpoints.
const MaxPageSize = 100

// DefaultPageSize applies when the client sends no page_size.
const DefaultPageSize = 20

// DefaultOrdering is the newest-first ordering the catalog falls back to
// when the client sends no ordering or an unrecognized one.
const DefaultOrdering = "-created_at"

// ProductQuery defines filters & pagination for searching products. All
// filters compose with AND. Zero values (empty string, nil pointer) mean
// "not filtered".
type ProductQuery struct {
	CategorySlug    string           // exact case-insensitive slug match
	MinPrice        *decimal.Decimal // inclusive lower price bound
	MaxPrice        *decimal.Decimal // inclusive upper price bound
	InStock         *bool            // true: stock > 0; false: stock = 0 exactly
	Search          string           // case-insensitive substring on name OR description
	Ordering        string           // whitelisted column, optional "-" prefix
	Page            int              // 1-based page number
	PageSize        int              // rows per page, capped at MaxPageSize
	IncludeInactive bool             // staff view: inactive products visible
}

// ProductRow is the summary shape returned by list queries, carrying the
// joined category name so list responses need no extra lookups.
type ProductRow struct {
	ID            uint64
	Name          string
	Slug          string
	Price         decimal.Decimal
	CategoryID    *uint64
	CategoryName  string
	StockQuantity int
	Image         string
	IsActive      bool
	CreatedAt     string
}

// orderColumns whitelists the client-facing ordering keys and maps them to
// qualified SQL columns. Anything not listed here falls back to the default
// ordering instead of reaching the query text.
var orderColumns = map[string]string{
	"name":           "p.name",
	"price":          "p.price",
	"created_at":     "p.created_at",
	"stock_quantity": "p.stock_quantity",
}

// OrderClause translates an ordering parameter ("price", "-price", ...) into
// an ORDER BY expression. Unrecognized values yield the default newest-first
// ordering. The product id is always appended as a secondary key so equal
// primary values page deterministically.
func OrderClause(ordering string) string {
	key := strings.TrimSpace(ordering)
	desc := strings.HasPrefix(key, "-")
	if desc {
		key = key[1:]
	}
	col, ok := orderColumns[key]
	if !ok {
		return "p.created_at DESC, p.id DESC"
	}
	if desc {
		return col + " DESC, p.id DESC"
	}
	return col + " ASC, p.id ASC"
}

// Search runs the filter/sort/paginate pipeline and returns one page of
// product rows plus the total row count before pagination. An out-of-range
// page yields an empty slice, not an error.
func (r *ProductRepo) Search(ctx context.Context, q ProductQuery) ([]ProductRow, int64, error) {
	where := []string{}
	args := []any{}

	if !q.IncludeInactive {
		where = append(where, "p.is_active = 1")
	}
	if q.CategorySlug != "" {
		where = append(where, "LOWER(c.slug) = ?")
		args = append(args, strings.ToLower(q.CategorySlug))
	}
	if q.MinPrice != nil {
		where = append(where, "p.price >= ?")
		args = append(args, q.MinPrice.StringFixed(2))
	}
	if q.MaxPrice != nil {
		where = append(where, "p.price <= ?")
		args = append(args, q.MaxPrice.StringFixed(2))
	}
	if q.InStock != nil {
		if *q.InStock {
			where = append(where, "p.stock_quantity > 0")
		} else {
			// Exact zero, not "low stock or out".
			where = append(where, "p.stock_quantity = 0")
		}
	}
	if q.Search != "" {
		where = append(where, "(LOWER(p.name) LIKE ? OR LOWER(p.description) LIKE ?)")
		needle := "%" + strings.ToLower(q.Search) + "%"
		args = append(args, needle, needle)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	countSQL := `SELECT COUNT(*)
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	offset := (page - 1) * size

	dataSQL := `SELECT
			p.id,
			p.name,
			p.slug,
			p.price,
			p.category_id,
			COALESCE(c.name, '') AS category_name,
			p.stock_quantity,
			COALESCE(p.image, '') AS image,
			p.is_active,
			DATE_FORMAT(p.created_at, '%Y-%m-%dT%TZ') AS created_at
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE ` + cond + `
		ORDER BY ` + OrderClause(q.Ordering) + `
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), size, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]ProductRow, 0, size)
	for rows.Next() {
		var (
			d     ProductRow
			price string
			catID *uint64
		)
		if err := rows.Scan(
			&d.ID,
			&d.Name,
			&d.Slug,
			&price,
			&catID,
			&d.CategoryName,
			&d.StockQuantity,
			&d.Image,
			&d.IsActive,
			&d.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		d.CategoryID = catID
		if d.Price, err = decimal.NewFromString(price); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
