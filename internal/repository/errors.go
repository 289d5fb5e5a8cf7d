// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between failure scenarios: not-found lookups map onto 404
// responses, while the uniqueness sentinels signal write-time conflicts that
// handlers surface as field-keyed validation errors.
package repository

import "errors"

// ErrEmailExists is returned when an insert or update would violate the
// unique constraint on users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrUsernameExists is returned when an insert would violate the unique
// constraint on users.username.
var ErrUsernameExists = errors.New("username already exists")

// ErrCategoryExists is returned when a category name or slug collides with
// an existing row.
var ErrCategoryExists = errors.New("category already exists")

// ErrCategoryNotFound is returned when a category cannot be found.
var ErrCategoryNotFound = errors.New("category not found")

// ErrProductNotFound is returned when a product cannot be found.
var ErrProductNotFound = errors.New("product not found")
