package service

import (
	"context"
	"fmt"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CheckoutService commits purchases. The backing store has no multi-document
// transaction, so the commit runs as a saga: re-validate against a fresh
// snapshot, apply conditional per-bucket decrements one document at a time,
// and compensate the applied decrements if any step fails. Either every line
// is decremented and the history appended, or nothing changes.
type CheckoutService struct {
	catalog   CatalogStore
	accounts  AccountStore
	publisher EventPublisher
	logger    *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(catalog CatalogStore, accounts AccountStore, publisher EventPublisher) *CheckoutService {
	return &CheckoutService{
		catalog:   catalog,
		accounts:  accounts,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// appliedDecrement tracks a successful conditional decrement for compensation
type appliedDecrement struct {
	productID primitive.ObjectID
	sizeName  string
	quantity  int
}

// Checkout validates the user's cart against live inventory, decrements the
// purchased size buckets, appends an immutable purchase-history entry and
// clears the cart. On insufficient stock it returns
// *InsufficientInventoryError listing the offending lines and leaves cart
// and inventory untouched.
func (cs *CheckoutService) Checkout(ctx context.Context, userID primitive.ObjectID) error {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	user, err := cs.accounts.GetUserByID(ctx, userID)
	if err != nil {
		util.CheckoutsFailedTotal.WithLabelValues("store_error").Inc()
		return mapUserErr(err)
	}

	if len(user.Cart) == 0 {
		util.CheckoutsFailedTotal.WithLabelValues("empty_cart").Inc()
		return ErrEmptyCart
	}

	grouped := GroupCartByProduct(user.Cart)
	ids := make([]primitive.ObjectID, 0, len(grouped))
	for id := range grouped {
		ids = append(ids, id)
	}

	products, err := cs.catalog.GetProductsByIDs(ctx, ids)
	if err != nil {
		util.CheckoutsFailedTotal.WithLabelValues("store_error").Inc()
		return fmt.Errorf("failed to load cart products: %w", err)
	}

	productsByID := make(map[primitive.ObjectID]*models.Product, len(products))
	for i := range products {
		productsByID[products[i].ID] = &products[i]
	}

	if unavailable := CheckAvailability(grouped, productsByID); len(unavailable) > 0 {
		util.CheckoutsFailedTotal.WithLabelValues("insufficient_inventory").Inc()
		return &InsufficientInventoryError{Unavailable: unavailable}
	}

	// The availability check and the decrements read different snapshots;
	// a concurrent purchase can still win a bucket in between. The $gte
	// guard on each decrement closes that window per bucket, and a lost
	// race rolls back whatever was already applied.
	applied := make([]appliedDecrement, 0, len(user.Cart))
	for _, line := range user.Cart {
		ok, err := cs.catalog.DecrementSizeCount(ctx, line.ProductID, line.SizeName, line.Quantity)
		if err != nil {
			cs.compensate(ctx, applied)
			util.CheckoutsFailedTotal.WithLabelValues("store_error").Inc()
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		if !ok {
			cs.compensate(ctx, applied)
			util.CheckoutsFailedTotal.WithLabelValues("insufficient_inventory").Inc()
			return &InsufficientInventoryError{
				Unavailable: []models.UnavailablePurchase{cs.unavailableLine(ctx, line)},
			}
		}
		applied = append(applied, appliedDecrement{
			productID: line.ProductID,
			sizeName:  line.SizeName,
			quantity:  line.Quantity,
		})
	}

	record := models.PurchaseRecord{
		DateAdded: time.Now(),
		Products:  make([]models.PurchaseItem, 0, len(user.Cart)),
	}
	for _, line := range user.Cart {
		record.Products = append(record.Products, models.PurchaseItem{
			ProductID:  line.ProductID,
			SizeName:   line.SizeName,
			Quantity:   line.Quantity,
			IsArchived: false,
		})
	}

	if err := cs.accounts.CommitPurchase(ctx, userID, record); err != nil {
		cs.compensate(ctx, applied)
		util.CheckoutsFailedTotal.WithLabelValues("store_error").Inc()
		return mapUserErr(err)
	}

	util.CheckoutsCompletedTotal.Inc()
	cs.logger.Info("Purchase committed",
		zap.String("user_id", userID.Hex()),
		zap.Int("lines", len(user.Cart)))

	cs.publishCompleted(ctx, userID, record)
	return nil
}

// compensate returns already-decremented stock after a failed commit
func (cs *CheckoutService) compensate(ctx context.Context, applied []appliedDecrement) {
	for _, dec := range applied {
		if err := cs.catalog.IncrementSizeCount(ctx, dec.productID, dec.sizeName, dec.quantity); err != nil {
			cs.logger.Error("Failed to compensate decrement",
				zap.String("product_id", dec.productID.Hex()),
				zap.String("size", dec.sizeName),
				zap.Error(err))
		}
	}
}

// unavailableLine rebuilds the unavailable entry for a line that lost the
// decrement race, re-reading the bucket for the current count.
func (cs *CheckoutService) unavailableLine(ctx context.Context, line models.CartItem) models.UnavailablePurchase {
	entry := models.UnavailablePurchase{
		ProductID: line.ProductID,
		SizeName:  line.SizeName,
		Requested: line.Quantity,
		Available: 0,
	}

	product, err := cs.catalog.GetProductByID(ctx, line.ProductID)
	if err != nil {
		return entry
	}
	if bucket := product.Size(line.SizeName); bucket != nil {
		entry.Available = bucket.Count
	}
	return entry
}

func (cs *CheckoutService) publishCompleted(ctx context.Context, userID primitive.ObjectID, record models.PurchaseRecord) {
	items := make([]models.PurchaseItemData, 0, len(record.Products))
	for _, p := range record.Products {
		items = append(items, models.PurchaseItemData{
			ProductID: p.ProductID.Hex(),
			SizeName:  p.SizeName,
			Quantity:  p.Quantity,
		})
	}

	event := &models.PurchaseCompletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePurchaseCompleted,
			Timestamp: time.Now(),
		},
		UserID: userID.Hex(),
		Items:  items,
	}

	if err := cs.publisher.PublishPurchaseCompleted(ctx, event); err != nil {
		cs.logger.Error("Failed to publish PurchaseCompleted event", zap.Error(err))
	}
}
