package models

import "time"

// Event types
const (
	EventTypePurchaseCompleted = "PURCHASE_COMPLETED"
	EventTypeProductArchived   = "PRODUCT_ARCHIVED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// PurchaseItemData represents a purchased line in events
type PurchaseItemData struct {
	ProductID string `json:"product_id"`
	SizeName  string `json:"size_name"`
	Quantity  int    `json:"quantity"`
}

// PurchaseCompletedEvent published after a checkout fully commits
type PurchaseCompletedEvent struct {
	BaseEvent
	UserID string             `json:"user_id"`
	Items  []PurchaseItemData `json:"items"`
}

// ProductArchivedEvent published when a product is deleted and its
// tombstone created. Consumers re-run the history rewrite, which is
// idempotent, so a crash mid-fan-out heals on redelivery.
type ProductArchivedEvent struct {
	BaseEvent
	ProductID  string `json:"product_id"`
	ArchivedID string `json:"archived_id"`
}
