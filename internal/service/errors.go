package service

import (
	"errors"
	"fmt"

	"storefront-service/internal/models"
)

var (
	ErrEmptyCart       = errors.New("cart has no products")
	ErrInvalidQuantity = errors.New("quantity must be a non-negative integer")
	ErrProductNotFound = errors.New("product does not exist")
	ErrUserNotFound    = errors.New("user does not exist")

	ErrInvalidSizeName  = errors.New("size name must be 1-3 uppercase letters or digits")
	ErrInvalidSizeCount = errors.New("size count must be a non-negative integer")
	ErrDuplicateSize    = errors.New("product already contains a size with that name")
	ErrSizeNotFound     = errors.New("product does not contain a size with that name")
	ErrInvalidCategory  = errors.New("unknown category")
	ErrDuplicateCategory = errors.New("product already has that category")
	ErrCategoryNotFound  = errors.New("product does not have that category")
	ErrInvalidPrice      = errors.New("negative price is not allowed")
	ErrInvalidProduct    = errors.New("invalid product")
	ErrInvalidOperation  = errors.New("invalid patch operation")
)

// InsufficientInventoryError reports the cart lines that could not be
// fulfilled. The caller surfaces the list so the user can adjust quantities.
type InsufficientInventoryError struct {
	Unavailable []models.UnavailablePurchase
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for %d cart line(s)", len(e.Unavailable))
}
