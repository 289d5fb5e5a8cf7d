package model

import "time"

// Category groups products under a unique name and URL-safe slug. The slug
// is derived from the name at creation time and never changes afterwards so
// that bookmarked category URLs stay valid.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – unique display name.
//  Slug         – unique URL-safe identifier derived from Name.
//  Description  – free-form text, may be empty.
//  ProductCount – number of active products in the category. Populated by
//                 list/detail queries, not a stored column.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Category struct {
	ID           uint64    // categories.id
	Name         string    // categories.name
	Slug         string    // categories.slug
	Description  string    // categories.description
	ProductCount int64     // derived, COUNT of active products
	CreatedAt    time.Time // categories.created_at
	UpdatedAt    time.Time // categories.updated_at
}
