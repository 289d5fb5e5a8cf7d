package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/storelane/catalog-api/internal/model"
	"github.com/storelane/catalog-api/internal/queue"
	"github.com/storelane/catalog-api/internal/repository"
	queue_publisher "github.com/storelane/catalog-api/internal/service"
)

// ProductHandler bundles dependencies for the product endpoints.
type ProductHandler struct {
	Products *repository.ProductRepo
}

func NewProductHandler(p *repository.ProductRepo) *ProductHandler {
	return &ProductHandler{Products: p}
}

// ----- serializers -----
// Output shapes are explicit per action: productSummary for list rows,
// productDetail for retrieve and write responses.

type productSummary struct {
	ID                 uint64          `json:"id"`
	Name               string          `json:"name"`
	Slug               string          `json:"slug"`
	Price              decimal.Decimal `json:"price"`
	Category           *uint64         `json:"category"`
	CategoryName       string          `json:"category_name,omitempty"`
	StockQuantity      int             `json:"stock_quantity"`
	InStock            bool            `json:"in_stock"`
	AvailabilityStatus string          `json:"availability_status"`
	Image              string          `json:"image,omitempty"`
	IsActive           bool            `json:"is_active"`
	CreatedAt          string          `json:"created_at"`
}

func summaryOut(r repository.ProductRow) productSummary {
	return productSummary{
		ID:                 r.ID,
		Name:               r.Name,
		Slug:               r.Slug,
		Price:              r.Price,
		Category:           r.CategoryID,
		CategoryName:       r.CategoryName,
		StockQuantity:      r.StockQuantity,
		InStock:            r.StockQuantity > 0,
		AvailabilityStatus: model.AvailabilityFor(r.StockQuantity),
		Image:              r.Image,
		IsActive:           r.IsActive,
		CreatedAt:          r.CreatedAt,
	}
}

type productDetailOut struct {
	ID                 uint64          `json:"id"`
	Name               string          `json:"name"`
	Slug               string          `json:"slug"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	Category           *categoryPart   `json:"category"`
	StockQuantity      int             `json:"stock_quantity"`
	InStock            bool            `json:"in_stock"`
	AvailabilityStatus string          `json:"availability_status"`
	Image              string          `json:"image,omitempty"`
	IsActive           bool            `json:"is_active"`
	CreatedBy          *uint64         `json:"created_by"`
	CreatedByUsername  string          `json:"created_by_username,omitempty"`
	CreatedAt          string          `json:"created_at"`
	UpdatedAt          string          `json:"updated_at"`
}

func detailOut(d *repository.ProductDetail) productDetailOut {
	p := d.Product
	out := productDetailOut{
		ID:                 p.ID,
		Name:               p.Name,
		Slug:               p.Slug,
		Description:        p.Description,
		Price:              p.Price,
		StockQuantity:      p.StockQuantity,
		InStock:            p.InStock(),
		AvailabilityStatus: p.AvailabilityStatus(),
		Image:              p.Image.String,
		IsActive:           p.IsActive,
		CreatedByUsername:  d.Creator,
		CreatedAt:          p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if d.Category != nil {
		c := categoryOut(d.Category)
		out.Category = &c
	}
	if p.CreatedBy.Valid {
		uid := uint64(p.CreatedBy.Int64)
		out.CreatedBy = &uid
	}
	return out
}

// ----- query parsing -----

// parseProductQuery turns list query parameters into a repository query.
// Malformed numeric or boolean filters are rejected with the offending
// parameter name; page and page_size fall back to defaults instead, the
// lenient treatment pagination gets everywhere.
func parseProductQuery(c echo.Context) (repository.ProductQuery, string) {
	q := repository.ProductQuery{
		CategorySlug: strings.TrimSpace(c.QueryParam("category")),
		Search:       strings.TrimSpace(c.QueryParam("search")),
		Ordering:     strings.TrimSpace(c.QueryParam("ordering")),
	}

	if raw := strings.TrimSpace(c.QueryParam("min_price")); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return q, "min_price"
		}
		q.MinPrice = &d
	}
	if raw := strings.TrimSpace(c.QueryParam("max_price")); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return q, "max_price"
		}
		q.MaxPrice = &d
	}
	if raw := strings.TrimSpace(c.QueryParam("in_stock")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return q, "in_stock"
		}
		q.InStock = &b
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	if size < 1 {
		size = repository.DefaultPageSize
	}
	if size > repository.MaxPageSize {
		size = repository.MaxPageSize
	}
	q.Page = page
	q.PageSize = size
	return q, ""
}

// listPage runs the pipeline and writes the paginated response envelope.
func (h *ProductHandler) listPage(c echo.Context, q repository.ProductQuery) error {
	q.IncludeInactive = isStaff(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, total, err := h.Products.Search(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	results := make([]productSummary, 0, len(rows))
	for _, r := range rows {
		results = append(results, summaryOut(r))
	}

	var next, previous any
	if int64(q.Page)*int64(q.PageSize) < total {
		next = q.Page + 1
	}
	if q.Page > 1 {
		previous = q.Page - 1
	}
	return c.JSON(http.StatusOK, echo.Map{
		"count":     total,
		"page":      q.Page,
		"page_size": q.PageSize,
		"next":      next,
		"previous":  previous,
		"results":   results,
	})
}

// List handles GET /api/products: the filter/sort/paginate pipeline over
// the catalog. Non-staff callers only ever see active products.
func (h *ProductHandler) List(c echo.Context) error {
	q, bad := parseProductQuery(c)
	if bad != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid " + bad})
	}
	return h.listPage(c, q)
}

// ByCategory handles GET /api/products/by-category/:slug, the pipeline
// pre-scoped to one category. An unknown slug yields an empty page, the
// same as any other filter that matches nothing.
func (h *ProductHandler) ByCategory(c echo.Context) error {
	q, bad := parseProductQuery(c)
	if bad != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid " + bad})
	}
	q.CategorySlug = c.Param("slug")
	return h.listPage(c, q)
}

// Get handles GET /api/products/:slug. Inactive products exist only for
// staff; everyone else gets a 404 rather than a hint that the slug is taken.
func (h *ProductHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Products.GetDetailBySlug(ctx, c.Param("slug"))
	if err != nil {
		if err == repository.ErrProductNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !d.Product.IsActive && !isStaff(c) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}
	return c.JSON(http.StatusOK, detailOut(d))
}

// priceError validates a price value: strictly positive with at most two
// decimal places. The column is DECIMAL(10,2), so a finer-grained value
// would round on insert and could land a sub-cent price at 0.00.
func priceError(p decimal.Decimal) string {
	if !p.IsPositive() {
		return "price must be greater than zero"
	}
	if p.Exponent() < -2 {
		return "price cannot have more than two decimal places"
	}
	return ""
}

// ----- write DTOs -----

type productCreateReq struct {
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	Category      string           `json:"category"` // category slug
	StockQuantity *int             `json:"stock_quantity"`
	Image         string           `json:"image"`
	IsActive      *bool            `json:"is_active"`
}

type productUpdateReq struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	Category      *string          `json:"category"` // slug; "" detaches
	StockQuantity *int             `json:"stock_quantity"`
	Image         *string          `json:"image"`
	IsActive      *bool            `json:"is_active"`
}

// Create handles POST /api/products. Any authenticated user may create a
// product; created_by is always the acting user, never client-supplied.
func (h *ProductHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req productCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return validationError(c, "name", "product name cannot be empty")
	}
	if req.Price == nil {
		return validationError(c, "price", "this field is required")
	}
	if msg := priceError(*req.Price); msg != "" {
		return validationError(c, "price", msg)
	}
	stock := 0
	if req.StockQuantity != nil {
		stock = *req.StockQuantity
	}
	if stock < 0 {
		return validationError(c, "stock_quantity", "stock quantity cannot be negative")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var categoryID sql.NullInt64
	if slug := strings.TrimSpace(req.Category); slug != "" {
		id, err := h.Products.CategoryIDBySlug(ctx, slug)
		if err != nil {
			if err == repository.ErrCategoryNotFound {
				return validationError(c, "category", "unknown category")
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		categoryID = sql.NullInt64{Int64: int64(id), Valid: true}
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	p := &model.Product{
		Name:          name,
		Description:   req.Description,
		Price:         *req.Price,
		StockQuantity: stock,
		CategoryID:    categoryID,
		IsActive:      active,
		CreatedBy:     sql.NullInt64{Int64: int64(uid), Valid: true},
	}
	if img := strings.TrimSpace(req.Image); img != "" {
		p.Image = sql.NullString{String: img, Valid: true}
	}
	if err := h.Products.Create(ctx, p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create product"})
	}

	h.publishEvent(ctx, queue.ActionProductCreated, p, uid)

	d, err := h.Products.GetDetailBySlug(ctx, p.Slug)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, detailOut(d))
}

// Update handles PUT/PATCH /api/products/:slug. Both verbs merge only the
// supplied fields; slug and created_by never change. Allowed for staff or
// the creating user (staff checked first).
func (h *ProductHandler) Update(c echo.Context) error {
	p, errResp := h.loadOwned(c)
	if p == nil {
		return errResp
	}
	uid, _ := getUserID(c)

	var req productUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	upd := repository.ProductUpdate{
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		Image:         req.Image,
		IsActive:      req.IsActive,
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return validationError(c, "name", "product name cannot be empty")
		}
		upd.Name = &trimmed
	}
	if req.Price != nil {
		if msg := priceError(*req.Price); msg != "" {
			return validationError(c, "price", msg)
		}
	}
	if req.StockQuantity != nil && *req.StockQuantity < 0 {
		return validationError(c, "stock_quantity", "stock quantity cannot be negative")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if req.Category != nil {
		var categoryID sql.NullInt64
		if slug := strings.TrimSpace(*req.Category); slug != "" {
			id, err := h.Products.CategoryIDBySlug(ctx, slug)
			if err != nil {
				if err == repository.ErrCategoryNotFound {
					return validationError(c, "category", "unknown category")
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
			}
			categoryID = sql.NullInt64{Int64: int64(id), Valid: true}
		}
		upd.CategoryID = &categoryID
	}

	if err := h.Products.Update(ctx, p.ID, upd); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	d, err := h.Products.GetDetailBySlug(ctx, p.Slug)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	h.publishEvent(ctx, queue.ActionProductUpdated, &d.Product, uid)
	return c.JSON(http.StatusOK, detailOut(d))
}

// Delete handles DELETE /api/products/:slug: a hard row delete, allowed for
// staff or the creating user.
func (h *ProductHandler) Delete(c echo.Context) error {
	p, errResp := h.loadOwned(c)
	if p == nil {
		return errResp
	}
	uid, _ := getUserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Products.Delete(ctx, p.ID); err != nil {
		if err == repository.ErrProductNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	h.publishEvent(ctx, queue.ActionProductDeleted, p, uid)
	return c.NoContent(http.StatusNoContent)
}

// loadOwned fetches the product addressed by the slug parameter and applies
// the write permission rule: staff may act on anything, everyone else only
// on products they created. On failure the JSON error has already been
// written and the returned product is nil. Inactive products are invisible
// to non-staff here too, mirroring the read paths.
func (h *ProductHandler) loadOwned(c echo.Context) (*model.Product, error) {
	uid, err := getUserID(c)
	if err != nil {
		return nil, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		if err == repository.ErrProductNotFound {
			return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	staff := isStaff(c)
	if !p.IsActive && !staff {
		return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}
	// Staff first, then ownership.
	if !staff && (!p.CreatedBy.Valid || uint64(p.CreatedBy.Int64) != uid) {
		return nil, c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return p, nil
}

// publishEvent emits a catalog event for downstream consumers. Failures are
// logged by the publisher and never surfaced to the client.
func (h *ProductHandler) publishEvent(ctx context.Context, action string, p *model.Product, actorID uint64) {
	_ = queue_publisher.PublishProductEvent(ctx, queue.ProductEvent{
		Action:     action,
		ProductID:  p.ID,
		Slug:       p.Slug,
		Name:       p.Name,
		Price:      p.Price.StringFixed(2),
		ActorID:    actorID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}
