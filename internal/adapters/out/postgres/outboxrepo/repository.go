package outboxrepo

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/outbox"
	"marketplace/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Channel is the Postgres NOTIFY channel announcing new outbox messages.
const Channel = "outbox_messages"

var _ ports.OutboxRepository = (*GormOutboxRepository)(nil)

// GormOutboxRepository implements ports.OutboxRepository using GORM.
type GormOutboxRepository struct {
	db *gorm.DB
}

// NewGormOutboxRepository creates an outbox repository bound to db.
func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// Add inserts the messages and issues a NOTIFY that Postgres delivers on commit.
func (r *GormOutboxRepository) Add(ctx context.Context, messages ...*outbox.Message) error {
	if len(messages) == 0 {
		return nil
	}

	dtos := make([]MessageDTO, 0, len(messages))
	for _, m := range messages {
		if err := m.Validate(); err != nil {
			return err
		}
		dtos = append(dtos, fromDomain(m))
	}

	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedupe_key"}},
		DoNothing: true,
	}).Create(&dtos).Error
	if err != nil {
		return fmt.Errorf("insert outbox messages: %w", err)
	}

	if err := db.Exec("SELECT pg_notify(?, ?)", Channel, messages[0].ID().String()).Error; err != nil {
		return fmt.Errorf("notify outbox channel: %w", err)
	}
	return nil
}

// ClaimDue leases up to limit pending messages whose next attempt is due.
// Rows leased by another dispatcher are skipped.
func (r *GormOutboxRepository) ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]*outbox.Message, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", string(outbox.StatusPending), now.UTC()).
		Order("next_attempt_at").
		Limit(limit)
	return r.claim(ctx, query, now, lease)
}

// ClaimByIDs leases the given messages if they are still pending.
func (r *GormOutboxRepository) ClaimByIDs(ctx context.Context, ids []kernel.UUID, now time.Time, lease time.Duration) ([]*outbox.Message, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	raw := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.Bytes())
	}

	query := r.db.WithContext(ctx).
		Where("id IN ? AND status = ?", raw, string(outbox.StatusPending)).
		Order("created_at")
	return r.claim(ctx, query, now, lease)
}

// claim locks the selected rows, skipping the ones another dispatcher holds,
// and moves their next attempt to the end of the lease.
func (r *GormOutboxRepository) claim(ctx context.Context, query *gorm.DB, now time.Time, lease time.Duration) ([]*outbox.Message, error) {
	var dtos []MessageDTO
	err := query.
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Find(&dtos).Error
	if err != nil {
		return nil, fmt.Errorf("select outbox messages: %w", err)
	}
	if len(dtos) == 0 {
		return nil, nil
	}

	leaseUntil := now.UTC().Add(lease)
	ids := make([]uuid.UUID, 0, len(dtos))
	for _, dto := range dtos {
		ids = append(ids, dto.ID)
	}

	err = r.db.WithContext(ctx).
		Model(&MessageDTO{}).
		Where("id IN ?", ids).
		Update("next_attempt_at", leaseUntil).Error
	if err != nil {
		return nil, fmt.Errorf("lease outbox messages: %w", err)
	}

	messages := make([]*outbox.Message, 0, len(dtos))
	for _, dto := range dtos {
		dto.NextAttemptAt = leaseUntil
		m, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// Save persists the dispatch state of a message.
func (r *GormOutboxRepository) Save(ctx context.Context, message *outbox.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}

	dto := fromDomain(message)
	err := r.db.WithContext(ctx).
		Model(&MessageDTO{}).
		Where("id = ?", dto.ID).
		Select("status", "attempts", "last_error", "next_attempt_at", "dispatched_at").
		Updates(&dto).Error
	if err != nil {
		return fmt.Errorf("update outbox message: %w", err)
	}
	return nil
}
