// Package errors provides custom error types for product-related operations.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")
var ErrDuplicateProduct = errors.New("product already exists")
var ErrInvalidValue = errors.New("invalid value")

// Storage failures. ErrPermissionDenied and ErrStoreIO are always wrapped
// together with the underlying filesystem error.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrCorruptFile      = errors.New("corrupt data file")
	ErrStoreIO          = errors.New("store i/o failure")
)
