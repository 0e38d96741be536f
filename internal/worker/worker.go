package worker

import (
	"context"
	"log"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ArchivalWorker replays archival fan-outs from ProductArchived events. If
// the process dies between the tombstone insert and the history rewrite,
// the event is still on the topic and the rewrite re-runs here; it matches
// nothing once all lines already point at the tombstone.
type ArchivalWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	archival     *service.ArchivalService
}

// NewArchivalWorker creates a new archival worker
func NewArchivalWorker(consumer *broker.Consumer, archival *service.ArchivalService) *ArchivalWorker {
	eventHandler := broker.NewEventHandler()

	w := &ArchivalWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		archival:     archival,
	}

	eventHandler.OnProductArchived(w.handleProductArchived)
	return w
}

func (w *ArchivalWorker) handleProductArchived(ctx context.Context, event *models.ProductArchivedEvent) error {
	productID, err := primitive.ObjectIDFromHex(event.ProductID)
	if err != nil {
		log.Printf("Skipping ProductArchived event with bad product id %q: %v", event.ProductID, err)
		return nil
	}
	archivedID, err := primitive.ObjectIDFromHex(event.ArchivedID)
	if err != nil {
		log.Printf("Skipping ProductArchived event with bad archived id %q: %v", event.ArchivedID, err)
		return nil
	}

	_, err = w.archival.ReconcileArchived(ctx, productID, archivedID)
	return err
}

// Start starts the worker
func (w *ArchivalWorker) Start(ctx context.Context) error {
	log.Println("Starting archival worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *ArchivalWorker) Stop() error {
	log.Println("Stopping archival worker...")
	return w.consumer.Close()
}
