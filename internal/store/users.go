package store

import (
	"context"
	"errors"
	"fmt"

	"storefront-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetUserByID retrieves a user by id
func (s *Store) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetCart replaces the user's cart in full
func (s *Store) SetCart(ctx context.Context, userID primitive.ObjectID, cart []models.CartItem) error {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"cart": cart}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", userID.Hex(), ErrNotFound)
	}
	return nil
}

// CommitPurchase appends a purchase record to the user's history and clears
// the cart in the same single-document write.
func (s *Store) CommitPurchase(ctx context.Context, userID primitive.ObjectID, record models.PurchaseRecord) error {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$push": bson.M{"purchaseHistory": record},
			"$set":  bson.M{"cart": []models.CartItem{}},
		})
	if err != nil {
		return fmt.Errorf("failed to commit purchase: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", userID.Hex(), ErrNotFound)
	}
	return nil
}

// RewriteArchivedReferences repoints every purchase-history line that still
// references productID at the tombstone archivedID and flags it archived.
// Quantity and date are untouched. The operation is idempotent: once a line
// points at the tombstone its productId no longer matches, so re-running
// matches nothing.
func (s *Store) RewriteArchivedReferences(ctx context.Context, productID, archivedID primitive.ObjectID) (int64, error) {
	filter := bson.M{"purchaseHistory": bson.M{"$exists": true, "$ne": []models.PurchaseRecord{}}}
	update := bson.M{"$set": bson.M{
		"purchaseHistory.$[].products.$[item].productId":  archivedID,
		"purchaseHistory.$[].products.$[item].isArchived": true,
	}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"item.productId": productID}},
	})

	res, err := s.users.UpdateMany(ctx, filter, update, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to rewrite archived references: %w", err)
	}
	return res.ModifiedCount, nil
}
