package service

import (
	"context"
	"errors"
	"strconv"

	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CartService manages a user's pending selections. Cart edits never touch
// inventory; validation against live stock is deferred to checkout, where
// correctness has to hold.
type CartService struct {
	accounts AccountStore
	logger   *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(accounts AccountStore) *CartService {
	return &CartService{
		accounts: accounts,
		logger:   util.GetLogger(),
	}
}

// ReplaceCart overwrites the user's entire cart with the given lines.
// Zero-quantity lines are dropped, duplicate (product, size) pairs collapse
// to the last line, and a negative quantity rejects the whole request.
func (cs *CartService) ReplaceCart(ctx context.Context, userID primitive.ObjectID, lines []models.CartItem) error {
	cart := make([]models.CartItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 0 {
			return ErrInvalidQuantity
		}
		if line.Quantity == 0 {
			continue
		}

		if existing := findCartLine(cart, line.ProductID, line.SizeName); existing != nil {
			existing.Quantity = line.Quantity
			continue
		}
		cart = append(cart, line)
	}

	if err := cs.accounts.SetCart(ctx, userID, cart); err != nil {
		return mapUserErr(err)
	}

	cs.logger.Info("Cart replaced",
		zap.String("user_id", userID.Hex()),
		zap.Int("lines", len(cart)))
	return nil
}

// SetCartLine upserts a single (product, size) line. Quantity arrives as the
// raw request value: it must parse to a non-negative integer. Zero removes
// the line if present and is a no-op otherwise; a positive quantity updates
// the existing line or appends a new one.
func (cs *CartService) SetCartLine(ctx context.Context, userID, productID primitive.ObjectID, sizeName, quantity string) error {
	parsed, err := strconv.Atoi(quantity)
	if err != nil || parsed < 0 {
		return ErrInvalidQuantity
	}

	user, err := cs.accounts.GetUserByID(ctx, userID)
	if err != nil {
		return mapUserErr(err)
	}

	cart := user.Cart
	existing := findCartLine(cart, productID, sizeName)

	switch {
	case existing != nil && parsed == 0:
		cart = removeCartLine(cart, productID, sizeName)
	case existing != nil:
		existing.Quantity = parsed
	case parsed > 0:
		cart = append(cart, models.CartItem{
			ProductID: productID,
			SizeName:  sizeName,
			Quantity:  parsed,
		})
	default:
		// zero quantity on a line that does not exist
		return nil
	}

	return mapUserErr(cs.accounts.SetCart(ctx, userID, cart))
}

func findCartLine(cart []models.CartItem, productID primitive.ObjectID, sizeName string) *models.CartItem {
	for i := range cart {
		if cart[i].ProductID == productID && cart[i].SizeName == sizeName {
			return &cart[i]
		}
	}
	return nil
}

func removeCartLine(cart []models.CartItem, productID primitive.ObjectID, sizeName string) []models.CartItem {
	out := cart[:0]
	for _, line := range cart {
		if line.ProductID == productID && line.SizeName == sizeName {
			continue
		}
		out = append(out, line)
	}
	return out
}

func mapUserErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
