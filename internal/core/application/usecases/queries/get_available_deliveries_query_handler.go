package queries

import (
	"context"

	"marketplace/internal/core/domain/model/delivery"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/posting"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAvailableDeliveriesQueryHandler reads the deliveries a courier may accept.
type GetAvailableDeliveriesQueryHandler struct {
	db *gorm.DB
}

// NewGetAvailableDeliveriesQueryHandler creates the handler.
func NewGetAvailableDeliveriesQueryHandler(db *gorm.DB) GetAvailableDeliveriesQueryHandler {
	return GetAvailableDeliveriesQueryHandler{db: db}
}

// Handle returns the unassigned pending deliveries of active postings that the
// courier has not refused.
func (h GetAvailableDeliveriesQueryHandler) Handle(
	ctx context.Context,
	query GetAvailableDeliveriesQuery,
) ([]GetAvailableDeliveriesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			d.id,
			d.posting_id,
			p.details,
			d.created_at
		FROM deliveries d
		JOIN postings p ON p.id = d.posting_id
		WHERE d.status = ?
			AND p.status = ?
			AND NOT EXISTS (
				SELECT 1 FROM delivery_refusals r
				WHERE r.delivery_id = d.id AND r.courier_id = ?
			)
		ORDER BY d.created_at, d.id
	`, int(delivery.Pending), int(posting.Active), query.CourierID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	available := make([]GetAvailableDeliveriesQueryResponse, 0)
	for rows.Next() {
		var (
			resp          GetAvailableDeliveriesQueryResponse
			id, postingID uuid.UUID
			details       []byte
		)
		if err = rows.Scan(&id, &postingID, &details, &resp.CreatedAt); err != nil {
			return nil, err
		}

		resp.ID = kernel.UUIDFromGoogle(id)
		resp.PostingID = kernel.UUIDFromGoogle(postingID)
		resp.Details = details
		available = append(available, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return available, nil
}
