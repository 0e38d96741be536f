package service

import (
	"context"
	"testing"

	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestReplaceCart(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID()}
	accounts := newFakeAccountStore(user)
	svc := NewCartService(accounts)

	productA := primitive.NewObjectID()
	productB := primitive.NewObjectID()

	err := svc.ReplaceCart(context.Background(), user.ID, []models.CartItem{
		{ProductID: productA, SizeName: "M", Quantity: 2},
		{ProductID: productB, SizeName: "42", Quantity: 1},
	})
	require.NoError(t, err)

	updated, _ := accounts.GetUserByID(context.Background(), user.ID)
	assert.Len(t, updated.Cart, 2)
}

func TestReplaceCartDropsZeroAndCollapsesDuplicates(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID()}
	accounts := newFakeAccountStore(user)
	svc := NewCartService(accounts)

	product := primitive.NewObjectID()

	err := svc.ReplaceCart(context.Background(), user.ID, []models.CartItem{
		{ProductID: product, SizeName: "M", Quantity: 2},
		{ProductID: product, SizeName: "L", Quantity: 0},
		{ProductID: product, SizeName: "M", Quantity: 5},
	})
	require.NoError(t, err)

	updated, _ := accounts.GetUserByID(context.Background(), user.ID)
	require.Len(t, updated.Cart, 1)
	assert.Equal(t, "M", updated.Cart[0].SizeName)
	assert.Equal(t, 5, updated.Cart[0].Quantity)
}

func TestReplaceCartRejectsNegativeQuantity(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID()}
	accounts := newFakeAccountStore(user)
	svc := NewCartService(accounts)

	err := svc.ReplaceCart(context.Background(), user.ID, []models.CartItem{
		{ProductID: primitive.NewObjectID(), SizeName: "M", Quantity: -1},
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	updated, _ := accounts.GetUserByID(context.Background(), user.ID)
	assert.Empty(t, updated.Cart)
}

func TestSetCartLine(t *testing.T) {
	product := primitive.NewObjectID()
	user := &models.User{
		ID:   primitive.NewObjectID(),
		Cart: []models.CartItem{{ProductID: product, SizeName: "M", Quantity: 1}},
	}
	accounts := newFakeAccountStore(user)
	svc := NewCartService(accounts)

	ctx := context.Background()

	t.Run("updates existing line", func(t *testing.T) {
		require.NoError(t, svc.SetCartLine(ctx, user.ID, product, "M", "3"))
		updated, _ := accounts.GetUserByID(ctx, user.ID)
		require.Len(t, updated.Cart, 1)
		assert.Equal(t, 3, updated.Cart[0].Quantity)
	})

	t.Run("appends new line", func(t *testing.T) {
		require.NoError(t, svc.SetCartLine(ctx, user.ID, product, "L", "2"))
		updated, _ := accounts.GetUserByID(ctx, user.ID)
		assert.Len(t, updated.Cart, 2)
	})

	t.Run("zero removes existing line", func(t *testing.T) {
		require.NoError(t, svc.SetCartLine(ctx, user.ID, product, "L", "0"))
		updated, _ := accounts.GetUserByID(ctx, user.ID)
		require.Len(t, updated.Cart, 1)
		assert.Equal(t, "M", updated.Cart[0].SizeName)
	})

	t.Run("zero on absent line is a no-op", func(t *testing.T) {
		require.NoError(t, svc.SetCartLine(ctx, user.ID, product, "XL", "0"))
		updated, _ := accounts.GetUserByID(ctx, user.ID)
		assert.Len(t, updated.Cart, 1)
	})
}

func TestSetCartLineInvalidQuantity(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID()}
	accounts := newFakeAccountStore(user)
	svc := NewCartService(accounts)

	product := primitive.NewObjectID()

	for _, quantity := range []string{"-1", "abc", "1.5", ""} {
		err := svc.SetCartLine(context.Background(), user.ID, product, "M", quantity)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "quantity %q", quantity)
	}
}

func TestSetCartLineUnknownUser(t *testing.T) {
	accounts := newFakeAccountStore()
	svc := NewCartService(accounts)

	err := svc.SetCartLine(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), "M", "1")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
