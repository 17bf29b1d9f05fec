package queries

import (
	"context"

	"marketplace/internal/core/domain/model/delivery"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetDeliveryHistoryQueryHandler reads the transition history of a delivery.
type GetDeliveryHistoryQueryHandler struct {
	db *gorm.DB
}

// NewGetDeliveryHistoryQueryHandler creates the handler.
func NewGetDeliveryHistoryQueryHandler(db *gorm.DB) GetDeliveryHistoryQueryHandler {
	return GetDeliveryHistoryQueryHandler{db: db}
}

// Handle returns errs.ObjectNotFoundError for an unknown delivery and an
// empty slice for a delivery that never moved.
func (h GetDeliveryHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetDeliveryHistoryQuery,
) ([]GetDeliveryHistoryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	db := h.db.WithContext(ctx)
	deliveryID := query.DeliveryID().Bytes()

	var exists int64
	if err := db.Raw(`SELECT COUNT(*) FROM deliveries WHERE id = ?`, deliveryID).Scan(&exists).Error; err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, errs.NewObjectNotFoundError("delivery", query.DeliveryID().String())
	}

	rows, err := db.Raw(`
		SELECT
			from_status,
			to_status,
			event,
			actor_id,
			actor_role,
			reason,
			occurred_at
		FROM delivery_transitions
		WHERE delivery_id = ?
		ORDER BY occurred_at, id
	`, deliveryID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]GetDeliveryHistoryQueryResponse, 0)
	for rows.Next() {
		var (
			line                  GetDeliveryHistoryQueryResponse
			from, to, event, role int
			actorID               uuid.UUID
		)
		if err = rows.Scan(&from, &to, &event, &actorID, &role, &line.Reason, &line.OccurredAt); err != nil {
			return nil, err
		}

		line.From = delivery.Status(from)
		line.To = delivery.Status(to)
		line.Event = delivery.Event(event)
		line.ActorID = kernel.UUIDFromGoogle(actorID)
		line.ActorRole = kernel.Role(role)
		history = append(history, line)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return history, nil
}
