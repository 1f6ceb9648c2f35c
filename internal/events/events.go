package events

import (
	"context"

	"github.com/mfrancani/patrimonio/internal/model"
)

// Outbound event topics. Product mutations on the REST surface are announced
// on these subjects, best-effort.
const (
	TopicProductCreated = "patrimonio.product.created"
	TopicProductUpdated = "patrimonio.product.updated"
	TopicProductDeleted = "patrimonio.product.deleted"
)

// DefaultHRSubject is the inbound subject the HR reconciliation consumer
// subscribes to when none is configured.
const DefaultHRSubject = "hr.events"

// Outbound event payloads.

type ProductCreated struct {
	Product *model.Product `json:"product"`
}

type ProductUpdated struct {
	Product *model.Product `json:"product"`
	Changes map[string]any `json:"changes"` // field name -> new value
}

type ProductDeleted struct {
	ProductID    int64 `json:"product_id"`
	EnterpriseID int64 `json:"enterprise_id"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers raw event payloads on the returned channel.
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}
