package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ArchivalService keeps purchase history resolvable after catalog deletions.
// Deleting a product creates a minimal tombstone (brand and description
// only) and fans out over every user document, repointing history lines at
// the tombstone. The fan-out holds no lock across the user collection; a
// crash mid-way is healed by re-running the rewrite, which is idempotent.
type ArchivalService struct {
	catalog   CatalogStore
	accounts  AccountStore
	publisher EventPublisher
	logger    *zap.Logger
}

// NewArchivalService creates a new archival service
func NewArchivalService(catalog CatalogStore, accounts AccountStore, publisher EventPublisher) *ArchivalService {
	return &ArchivalService{
		catalog:   catalog,
		accounts:  accounts,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// ArchiveAndDelete removes a product, creates its tombstone and rewrites all
// history references. Returns the tombstone id. Deleting an unknown product
// returns ErrProductNotFound, so exactly one tombstone exists per deletion.
func (as *ArchivalService) ArchiveAndDelete(ctx context.Context, productID primitive.ObjectID) (primitive.ObjectID, error) {
	ctx, span := util.StartSpan(ctx, "ArchivalService.ArchiveAndDelete")
	defer span.End()

	deleted, err := as.catalog.DeleteProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return primitive.NilObjectID, ErrProductNotFound
		}
		return primitive.NilObjectID, fmt.Errorf("failed to delete product: %w", err)
	}

	archivedID, err := as.catalog.CreateArchivedProduct(ctx, &models.ArchivedProduct{
		Brand:       deleted.Brand,
		Description: deleted.Description,
	})
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to create archived product: %w", err)
	}

	util.ProductsArchivedTotal.Inc()
	as.logger.Info("Product archived",
		zap.String("product_id", productID.Hex()),
		zap.String("archived_id", archivedID.Hex()))

	// Publish before the fan-out so the worker can replay the rewrite if
	// this process dies mid-way.
	as.publishArchived(ctx, productID, archivedID)

	if _, err := as.ReconcileArchived(ctx, productID, archivedID); err != nil {
		// The tombstone exists and the event is out; the worker retries
		// the rewrite, so the deletion itself still succeeded.
		as.logger.Error("History rewrite failed, relying on worker replay",
			zap.String("product_id", productID.Hex()),
			zap.Error(err))
	}

	return archivedID, nil
}

// ReconcileArchived rewrites history lines still referencing productID to
// point at archivedID. Safe to run any number of times: already-rewritten
// lines no longer match.
func (as *ArchivalService) ReconcileArchived(ctx context.Context, productID, archivedID primitive.ObjectID) (int64, error) {
	start := time.Now()
	defer func() {
		util.ArchivalRewriteLatency.Observe(time.Since(start).Seconds())
	}()

	rewritten, err := as.accounts.RewriteArchivedReferences(ctx, productID, archivedID)
	if err != nil {
		return 0, err
	}

	util.HistoryRewritesTotal.Add(float64(rewritten))
	if rewritten > 0 {
		as.logger.Info("Rewrote archived history references",
			zap.String("product_id", productID.Hex()),
			zap.Int64("users", rewritten))
	}
	return rewritten, nil
}

func (as *ArchivalService) publishArchived(ctx context.Context, productID, archivedID primitive.ObjectID) {
	event := &models.ProductArchivedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeProductArchived,
			Timestamp: time.Now(),
		},
		ProductID:  productID.Hex(),
		ArchivedID: archivedID.Hex(),
	}

	if err := as.publisher.PublishProductArchived(ctx, event); err != nil {
		as.logger.Error("Failed to publish ProductArchived event", zap.Error(err))
	}
}
