package service

import (
	"context"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HistoryService renders a user's purchase history. History lines may
// reference live products or tombstones; isArchived tells which store to
// query. A live reference that no longer resolves (archival fan-out caught
// mid-flight) is treated as archived with no detail rather than an error.
type HistoryService struct {
	catalog  CatalogStore
	accounts AccountStore
	logger   *zap.Logger
}

// NewHistoryService creates a new history service
func NewHistoryService(catalog CatalogStore, accounts AccountStore) *HistoryService {
	return &HistoryService{
		catalog:  catalog,
		accounts: accounts,
		logger:   util.GetLogger(),
	}
}

// PurchaseHistoryView pairs the raw purchase records with the display
// detail still available for each referenced product.
type PurchaseHistoryView struct {
	ProductDetails map[string]models.ProductDetail `json:"productDetails"`
	Purchases      []models.PurchaseRecord         `json:"purchaseDetails"`
}

// PurchaseHistory loads the user's history and resolves product details
// from both the live catalog and the tombstone store.
func (hs *HistoryService) PurchaseHistory(ctx context.Context, userID primitive.ObjectID) (*PurchaseHistoryView, error) {
	user, err := hs.accounts.GetUserByID(ctx, userID)
	if err != nil {
		return nil, mapUserErr(err)
	}

	var liveIDs, archivedIDs []primitive.ObjectID
	seen := make(map[primitive.ObjectID]bool)
	for _, record := range user.PurchaseHistory {
		for _, item := range record.Products {
			if seen[item.ProductID] {
				continue
			}
			seen[item.ProductID] = true
			if item.IsArchived {
				archivedIDs = append(archivedIDs, item.ProductID)
			} else {
				liveIDs = append(liveIDs, item.ProductID)
			}
		}
	}

	details := make(map[string]models.ProductDetail)

	products, err := hs.catalog.GetProductsByIDs(ctx, liveIDs)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		details[p.ID.Hex()] = models.ProductDetail{
			ProductID:   p.ID,
			Brand:       p.Brand,
			Description: p.Description,
		}
	}

	archived, err := hs.catalog.GetArchivedProductsByIDs(ctx, archivedIDs)
	if err != nil {
		return nil, err
	}
	for _, a := range archived {
		details[a.ID.Hex()] = models.ProductDetail{
			ProductID:   a.ID,
			Brand:       a.Brand,
			Description: a.Description,
		}
	}

	// A live id with no detail means the product was deleted but this
	// user's lines were not rewritten yet. Present it as archived so the
	// caller renders "detail unavailable" instead of failing.
	purchases := make([]models.PurchaseRecord, len(user.PurchaseHistory))
	copy(purchases, user.PurchaseHistory)
	for ri := range purchases {
		items := make([]models.PurchaseItem, len(purchases[ri].Products))
		copy(items, purchases[ri].Products)
		for ii := range items {
			if _, ok := details[items[ii].ProductID.Hex()]; !ok && !items[ii].IsArchived {
				hs.logger.Warn("History references missing live product",
					zap.String("user_id", userID.Hex()),
					zap.String("product_id", items[ii].ProductID.Hex()))
				items[ii].IsArchived = true
			}
		}
		purchases[ri].Products = items
	}

	return &PurchaseHistoryView{
		ProductDetails: details,
		Purchases:      purchases,
	}, nil
}
