package queries

import (
	"encoding/json"
	"errors"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var ErrGetActivePostingsQueryIsNotConstructed = errors.New(
	"GetActivePostingsQuery must be created via NewGetActivePostingsQuery constructor",
)

// GetActivePostingsQuery lists the postings waiting for a courier.
type GetActivePostingsQuery struct {
	guard guard.ConstructorGuard
}

// NewGetActivePostingsQuery creates the query.
func NewGetActivePostingsQuery() GetActivePostingsQuery {
	return GetActivePostingsQuery{guard: guard.NewConstructorGuard()}
}

// Validate reports whether the query was built by NewGetActivePostingsQuery.
func (q GetActivePostingsQuery) Validate() error {
	return q.guard.Validate(ErrGetActivePostingsQueryIsNotConstructed)
}

// GetActivePostingsQueryResponse is one active posting.
type GetActivePostingsQueryResponse struct {
	ID        kernel.UUID
	OwnerID   kernel.UUID
	Details   json.RawMessage
	CreatedAt time.Time
}
