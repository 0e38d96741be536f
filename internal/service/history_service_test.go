package service

import (
	"context"
	"testing"
	"time"

	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPurchaseHistory(t *testing.T) {
	live := &models.Product{
		ID:          primitive.NewObjectID(),
		Brand:       "Nove",
		Description: "Runner",
		Sizes:       []models.SizeBucket{{SizeName: "42", Count: 1}},
	}

	catalog := newFakeCatalogStore(live)
	tombstoneID, err := catalog.CreateArchivedProduct(context.Background(), &models.ArchivedProduct{
		Brand:       "Gone",
		Description: "Discontinued",
	})
	require.NoError(t, err)

	user := &models.User{
		ID: primitive.NewObjectID(),
		PurchaseHistory: []models.PurchaseRecord{
			{
				DateAdded: time.Now().Add(-48 * time.Hour),
				Products: []models.PurchaseItem{
					{ProductID: live.ID, SizeName: "42", Quantity: 1},
				},
			},
			{
				DateAdded: time.Now().Add(-24 * time.Hour),
				Products: []models.PurchaseItem{
					{ProductID: tombstoneID, SizeName: "M", Quantity: 2, IsArchived: true},
				},
			},
		},
	}

	accounts := newFakeAccountStore(user)
	svc := NewHistoryService(catalog, accounts)

	view, err := svc.PurchaseHistory(context.Background(), user.ID)
	require.NoError(t, err)

	require.Len(t, view.Purchases, 2)
	require.Len(t, view.ProductDetails, 2)
	assert.Equal(t, "Nove", view.ProductDetails[live.ID.Hex()].Brand)
	assert.Equal(t, "Gone", view.ProductDetails[tombstoneID.Hex()].Brand)
}

func TestPurchaseHistoryUnknownUser(t *testing.T) {
	svc := NewHistoryService(newFakeCatalogStore(), newFakeAccountStore())

	_, err := svc.PurchaseHistory(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPurchaseHistoryMissingLiveProduct(t *testing.T) {
	// The referenced product was deleted but this user's history lines were
	// not rewritten yet. The line is presented as archived instead of
	// failing the whole read.
	missing := primitive.NewObjectID()
	user := &models.User{
		ID: primitive.NewObjectID(),
		PurchaseHistory: []models.PurchaseRecord{
			{
				DateAdded: time.Now(),
				Products: []models.PurchaseItem{
					{ProductID: missing, SizeName: "M", Quantity: 1},
				},
			},
		},
	}

	accounts := newFakeAccountStore(user)
	svc := NewHistoryService(newFakeCatalogStore(), accounts)

	view, err := svc.PurchaseHistory(context.Background(), user.ID)
	require.NoError(t, err)

	require.Len(t, view.Purchases, 1)
	assert.True(t, view.Purchases[0].Products[0].IsArchived)
	assert.Empty(t, view.ProductDetails)

	// The stored document is untouched; only the returned view is flipped.
	stored, _ := accounts.GetUserByID(context.Background(), user.ID)
	assert.False(t, stored.PurchaseHistory[0].Products[0].IsArchived)
}
