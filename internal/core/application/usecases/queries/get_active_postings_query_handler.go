package queries

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/posting"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetActivePostingsQueryHandler reads active postings, newest first.
type GetActivePostingsQueryHandler struct {
	db *gorm.DB
}

// NewGetActivePostingsQueryHandler creates the handler.
func NewGetActivePostingsQueryHandler(db *gorm.DB) GetActivePostingsQueryHandler {
	return GetActivePostingsQueryHandler{db: db}
}

// Handle returns active postings, newest first.
func (h GetActivePostingsQueryHandler) Handle(
	ctx context.Context,
	query GetActivePostingsQuery,
) ([]GetActivePostingsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			owner_id,
			details,
			created_at
		FROM postings
		WHERE status = ?
		ORDER BY created_at DESC, id
	`, int(posting.Active)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	postings := make([]GetActivePostingsQueryResponse, 0)
	for rows.Next() {
		var (
			resp        GetActivePostingsQueryResponse
			id, ownerID uuid.UUID
			details     []byte
		)
		if err = rows.Scan(&id, &ownerID, &details, &resp.CreatedAt); err != nil {
			return nil, err
		}

		resp.ID = kernel.UUIDFromGoogle(id)
		resp.OwnerID = kernel.UUIDFromGoogle(ownerID)
		resp.Details = details
		postings = append(postings, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return postings, nil
}
