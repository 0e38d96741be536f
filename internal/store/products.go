package store

import (
	"context"
	"errors"
	"fmt"

	"storefront-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetProductByID retrieves a product by id
func (s *Store) GetProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("product %s: %w", id.Hex(), ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductsByIDs retrieves multiple products in one fetch
func (s *Store) GetProductsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	cursor, err := s.products.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListProducts retrieves the whole catalog
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	cursor, err := s.products.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct inserts a new product and returns its id
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) (primitive.ObjectID, error) {
	res, err := s.products.InsertOne(ctx, product)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// ReplaceProduct overwrites a product document in full
func (s *Store) ReplaceProduct(ctx context.Context, product *models.Product) error {
	res, err := s.products.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("product %s: %w", product.ID.Hex(), ErrNotFound)
	}
	return nil
}

// DeleteProduct removes a product and returns the deleted document
func (s *Store) DeleteProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var deleted models.Product
	err := s.products.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("product %s: %w", id.Hex(), ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// DecrementSizeCount atomically decrements a size bucket's count, but only
// if the bucket currently holds at least quantity units. Returns false when
// the guard fails, which callers treat as insufficient inventory. The count
// can never go negative through this path.
func (s *Store) DecrementSizeCount(ctx context.Context, productID primitive.ObjectID, sizeName string, quantity int) (bool, error) {
	filter := bson.M{
		"_id": productID,
		"sizes": bson.M{"$elemMatch": bson.M{
			"sizeName": sizeName,
			"count":    bson.M{"$gte": quantity},
		}},
	}
	update := bson.M{"$inc": bson.M{"sizes.$.count": -quantity}}

	res, err := s.products.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to decrement size count: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// IncrementSizeCount returns stock to a size bucket (compensation path)
func (s *Store) IncrementSizeCount(ctx context.Context, productID primitive.ObjectID, sizeName string, quantity int) error {
	filter := bson.M{
		"_id":            productID,
		"sizes.sizeName": sizeName,
	}
	update := bson.M{"$inc": bson.M{"sizes.$.count": quantity}}

	_, err := s.products.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to increment size count: %w", err)
	}
	return nil
}

// CreateArchivedProduct inserts a tombstone for a deleted product
func (s *Store) CreateArchivedProduct(ctx context.Context, archived *models.ArchivedProduct) (primitive.ObjectID, error) {
	res, err := s.archived.InsertOne(ctx, archived)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// GetArchivedProductsByIDs retrieves tombstones in one fetch
func (s *Store) GetArchivedProductsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.ArchivedProduct, error) {
	if len(ids) == 0 {
		return []models.ArchivedProduct{}, nil
	}

	cursor, err := s.archived.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var archived []models.ArchivedProduct
	if err := cursor.All(ctx, &archived); err != nil {
		return nil, err
	}
	return archived, nil
}
