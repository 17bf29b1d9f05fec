// Package ports defines the contracts between the marketplace core and its
// infrastructure: repositories, the unit of work and the side-effect sinks.
package ports

import (
	"context"

	"marketplace/internal/core/domain/model/delivery"
	"marketplace/internal/core/domain/model/kernel"
)

// DeliveryRepository is the persistence contract of delivery aggregates.
// Missing rows are reported as errs.ObjectNotFoundError.
type DeliveryRepository interface {
	// Add persists a new delivery.
	Add(ctx context.Context, aggregate *delivery.Delivery) error

	// Update persists the state of an existing delivery.
	Update(ctx context.Context, aggregate *delivery.Delivery) error

	// Get reads a delivery without locking it.
	Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error)

	// GetForUpdate reads a delivery and locks its row until the transaction ends.
	// Callers lock the posting row first.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error)

	// FindOpenByPosting returns the non-terminal delivery of a posting, or nil.
	FindOpenByPosting(ctx context.Context, postingID kernel.UUID) (*delivery.Delivery, error)

	// AddRefusal records a courier refusal and reports whether it is new.
	// Recording the same courier refusal twice is not an error and returns false.
	AddRefusal(ctx context.Context, refusal delivery.Refusal) (bool, error)

	// AddTransition appends a line to the delivery history.
	AddTransition(ctx context.Context, record delivery.TransitionRecord) error
}
