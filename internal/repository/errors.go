// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the acting admin does not own
// the sweet being edited, while ErrInsufficientStock signals that a
// purchase asked for more units than remain on the row.
package repository

import "errors"

// ErrUserExists is returned when registration collides with an
// existing username or email. Handlers should translate this into an
// HTTP 409 response.
var ErrUserExists = errors.New("username or email already exists")

// ErrSweetNotFound is returned when a referenced sweet does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrSweetNotFound = errors.New("sweet not found")

// ErrForbidden is returned when the caller attempts an operation on a
// sweet owned by a different admin. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrOutOfStock is returned when a purchase targets a sweet whose
// quantity is zero. It is reported separately from
// ErrInsufficientStock so the buyer sees the more specific message.
var ErrOutOfStock = errors.New("sweet is out of stock")

// ErrInsufficientStock is returned when a purchase asks for more units
// than the sweet currently has in stock.
var ErrInsufficientStock = errors.New("insufficient quantity available")
