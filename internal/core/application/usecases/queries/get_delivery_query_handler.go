package queries

import (
	"context"
	"database/sql"
	"errors"

	"marketplace/internal/core/domain/model/delivery"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetDeliveryQueryHandler reads a delivery by ID.
type GetDeliveryQueryHandler struct {
	db *gorm.DB
}

// NewGetDeliveryQueryHandler creates the handler.
func NewGetDeliveryQueryHandler(db *gorm.DB) GetDeliveryQueryHandler {
	return GetDeliveryQueryHandler{db: db}
}

// Handle returns the delivery or errs.ObjectNotFoundError.
func (h GetDeliveryQueryHandler) Handle(ctx context.Context, query GetDeliveryQuery) (GetDeliveryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetDeliveryQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			posting_id,
			courier_id,
			status,
			admin_notes,
			created_at,
			updated_at
		FROM deliveries
		WHERE id = ?
	`, query.DeliveryID().Bytes()).Row()

	var (
		resp      GetDeliveryQueryResponse
		id        uuid.UUID
		postingID uuid.UUID
		courierID uuid.NullUUID
		status    int
	)
	err := row.Scan(&id, &postingID, &courierID, &status, &resp.AdminNotes, &resp.CreatedAt, &resp.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return GetDeliveryQueryResponse{}, errs.NewObjectNotFoundError("delivery", query.DeliveryID().String())
	}
	if err != nil {
		return GetDeliveryQueryResponse{}, err
	}

	resp.ID = kernel.UUIDFromGoogle(id)
	resp.PostingID = kernel.UUIDFromGoogle(postingID)
	resp.CourierID = nullableID(courierID)
	resp.Status = delivery.Status(status)
	return resp, nil
}

func nullableID(id uuid.NullUUID) *kernel.UUID {
	if !id.Valid {
		return nil
	}
	k := kernel.UUIDFromGoogle(id.UUID)
	return &k
}
