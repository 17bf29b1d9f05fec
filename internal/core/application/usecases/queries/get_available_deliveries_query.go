package queries

import (
	"encoding/json"
	"errors"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var ErrGetAvailableDeliveriesQueryIsNotConstructed = errors.New(
	"GetAvailableDeliveriesQuery must be created via NewGetAvailableDeliveriesQuery constructor",
)

// GetAvailableDeliveriesQuery lists the pending deliveries of active postings
// that the courier has not refused.
type GetAvailableDeliveriesQuery struct {
	courierID kernel.UUID
	guard     guard.ConstructorGuard
}

// NewGetAvailableDeliveriesQuery creates the query for courierID.
func NewGetAvailableDeliveriesQuery(courierID kernel.UUID) (GetAvailableDeliveriesQuery, error) {
	if err := courierID.Validate(); err != nil {
		return GetAvailableDeliveriesQuery{}, err
	}
	return GetAvailableDeliveriesQuery{courierID: courierID, guard: guard.NewConstructorGuard()}, nil
}

// Validate reports whether the query was built by NewGetAvailableDeliveriesQuery.
func (q GetAvailableDeliveriesQuery) Validate() error {
	return q.guard.Validate(ErrGetAvailableDeliveriesQueryIsNotConstructed)
}

// CourierID returns the courier the list is computed for.
func (q GetAvailableDeliveriesQuery) CourierID() kernel.UUID {
	return q.courierID
}

// GetAvailableDeliveriesQueryResponse is one delivery the courier may accept.
type GetAvailableDeliveriesQueryResponse struct {
	ID        kernel.UUID
	PostingID kernel.UUID
	Details   json.RawMessage
	CreatedAt time.Time
}
