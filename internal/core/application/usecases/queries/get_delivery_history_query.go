package queries

import (
	"errors"
	"time"

	"marketplace/internal/core/domain/model/delivery"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var ErrGetDeliveryHistoryQueryIsNotConstructed = errors.New(
	"GetDeliveryHistoryQuery must be created via NewGetDeliveryHistoryQuery constructor",
)

// GetDeliveryHistoryQuery lists the transitions of a delivery, oldest first.
type GetDeliveryHistoryQuery struct {
	deliveryID kernel.UUID
	guard      guard.ConstructorGuard
}

// NewGetDeliveryHistoryQuery creates the query for deliveryID.
func NewGetDeliveryHistoryQuery(deliveryID kernel.UUID) (GetDeliveryHistoryQuery, error) {
	if err := deliveryID.Validate(); err != nil {
		return GetDeliveryHistoryQuery{}, err
	}
	return GetDeliveryHistoryQuery{deliveryID: deliveryID, guard: guard.NewConstructorGuard()}, nil
}

// Validate reports whether the query was built by NewGetDeliveryHistoryQuery.
func (q GetDeliveryHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryHistoryQueryIsNotConstructed)
}

// DeliveryID returns the delivery whose history is read.
func (q GetDeliveryHistoryQuery) DeliveryID() kernel.UUID {
	return q.deliveryID
}

// GetDeliveryHistoryQueryResponse is one recorded transition.
type GetDeliveryHistoryQueryResponse struct {
	From       delivery.Status
	To         delivery.Status
	Event      delivery.Event
	ActorID    kernel.UUID
	ActorRole  kernel.Role
	Reason     string
	OccurredAt time.Time
}
