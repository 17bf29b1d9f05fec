// Package outboxrepo stores side-effect intents in the outbox_messages table
// and hands them out to dispatchers.
package outboxrepo

import (
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/outbox"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MessageDTO is the row of the outbox_messages table.
type MessageDTO struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Kind          string         `gorm:"type:varchar(32);not null"`
	Payload       datatypes.JSON `gorm:"type:jsonb;not null"`
	DedupeKey     string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	Status        string         `gorm:"type:varchar(16);not null;index:idx_outbox_messages_due,priority:1"`
	Attempts      int            `gorm:"not null;default:0"`
	LastError     string         `gorm:"type:text;not null;default:''"`
	NextAttemptAt time.Time      `gorm:"not null;index:idx_outbox_messages_due,priority:2"`
	CreatedAt     time.Time      `gorm:"not null"`
	DispatchedAt  *time.Time
}

// TableName returns the table name for GORM.
func (MessageDTO) TableName() string {
	return "outbox_messages"
}

func fromDomain(m *outbox.Message) MessageDTO {
	var dispatchedAt *time.Time
	if at := m.DispatchedAt(); at != nil {
		utc := at.UTC()
		dispatchedAt = &utc
	}

	return MessageDTO{
		ID:            m.ID().Bytes(),
		Kind:          string(m.Kind()),
		Payload:       datatypes.JSON(m.Payload()),
		DedupeKey:     m.DedupeKey(),
		Status:        string(m.Status()),
		Attempts:      m.Attempts(),
		LastError:     m.LastError(),
		NextAttemptAt: m.NextAttemptAt().UTC(),
		CreatedAt:     m.CreatedAt().UTC(),
		DispatchedAt:  dispatchedAt,
	}
}

func toDomain(dto MessageDTO) (*outbox.Message, error) {
	return outbox.RestoreMessage(
		kernel.UUIDFromGoogle(dto.ID),
		outbox.Kind(dto.Kind),
		[]byte(dto.Payload),
		dto.DedupeKey,
		outbox.Status(dto.Status),
		dto.Attempts,
		dto.LastError,
		dto.NextAttemptAt,
		dto.CreatedAt,
		dto.DispatchedAt,
	)
}
