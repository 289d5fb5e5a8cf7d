// Package queue defines message payloads exchanged over the message broker.
package queue

// Product event actions published to the catalog.events queue.
const (
	ActionProductCreated = "product.created"
	ActionProductUpdated = "product.updated"
	ActionProductDeleted = "product.deleted"
)

// ProductEvent is published after a product write commits. It carries enough
// information for downstream consumers to log, index, or trigger analytics
// without querying the primary database.
type ProductEvent struct {
	Action     string `json:"action"`
	ProductID  uint64 `json:"product_id"`
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	ActorID    uint64 `json:"actor_id"`
	OccurredAt string `json:"occurred_at"`
}
