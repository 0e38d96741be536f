package service

import (
	"context"

	"storefront-service/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogStore is the catalog collaborator: product lookup, persistence and
// the per-document atomic size mutations the checkout relies on.
type CatalogStore interface {
	GetProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) (primitive.ObjectID, error)
	ReplaceProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)

	// DecrementSizeCount succeeds only when the bucket holds at least
	// quantity units; a false return means insufficient stock.
	DecrementSizeCount(ctx context.Context, productID primitive.ObjectID, sizeName string, quantity int) (bool, error)
	IncrementSizeCount(ctx context.Context, productID primitive.ObjectID, sizeName string, quantity int) error

	CreateArchivedProduct(ctx context.Context, archived *models.ArchivedProduct) (primitive.ObjectID, error)
	GetArchivedProductsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.ArchivedProduct, error)
}

// AccountStore is the account collaborator: user documents holding carts
// and purchase histories.
type AccountStore interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SetCart(ctx context.Context, userID primitive.ObjectID, cart []models.CartItem) error
	CommitPurchase(ctx context.Context, userID primitive.ObjectID, record models.PurchaseRecord) error
	RewriteArchivedReferences(ctx context.Context, productID, archivedID primitive.ObjectID) (int64, error)
}

// EventPublisher publishes domain events. Publishing is best-effort: a
// failed publish is logged, never surfaced to the caller.
type EventPublisher interface {
	PublishPurchaseCompleted(ctx context.Context, event *models.PurchaseCompletedEvent) error
	PublishProductArchived(ctx context.Context, event *models.ProductArchivedEvent) error
}
