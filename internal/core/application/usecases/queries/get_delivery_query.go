// Package queries contains read-only projections of postings and deliveries.
// Handlers read straight from the database and never run transition logic.
package queries

import (
	"errors"
	"time"

	"marketplace/internal/core/domain/model/delivery"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

// ErrGetDeliveryQueryIsNotConstructed is returned for a zero GetDeliveryQuery.
var ErrGetDeliveryQueryIsNotConstructed = errors.New(
	"GetDeliveryQuery must be created via NewGetDeliveryQuery constructor",
)

// GetDeliveryQuery reads one delivery.
type GetDeliveryQuery struct {
	deliveryID kernel.UUID
	guard      guard.ConstructorGuard
}

// NewGetDeliveryQuery creates the query for deliveryID.
func NewGetDeliveryQuery(deliveryID kernel.UUID) (GetDeliveryQuery, error) {
	if err := deliveryID.Validate(); err != nil {
		return GetDeliveryQuery{}, err
	}
	return GetDeliveryQuery{deliveryID: deliveryID, guard: guard.NewConstructorGuard()}, nil
}

// Validate reports whether the query was built by NewGetDeliveryQuery.
func (q GetDeliveryQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryQueryIsNotConstructed)
}

// DeliveryID returns the requested delivery.
func (q GetDeliveryQuery) DeliveryID() kernel.UUID {
	return q.deliveryID
}

// GetDeliveryQueryResponse is the stored state of a delivery.
type GetDeliveryQueryResponse struct {
	ID         kernel.UUID
	PostingID  kernel.UUID
	CourierID  *kernel.UUID
	Status     delivery.Status
	AdminNotes string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
