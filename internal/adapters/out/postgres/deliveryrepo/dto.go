// Package deliveryrepo persists delivery aggregates, their transition history
// and courier refusals.
package deliveryrepo

import (
	"time"

	"marketplace/internal/core/domain/model/delivery"
	"marketplace/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// DeliveryDTO is the row of the deliveries table.
type DeliveryDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	PostingID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	CourierID   *uuid.UUID `gorm:"type:uuid;index"`
	Status      int        `gorm:"not null;index"`
	AdminNotes  string     `gorm:"type:text;not null;default:''"`
	LastEvent   int        `gorm:"not null;default:0"`
	LastActorID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (DeliveryDTO) TableName() string {
	return "deliveries"
}

// TransitionDTO is one row of the append-only delivery history.
type TransitionDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	DeliveryID uuid.UUID `gorm:"type:uuid;not null;index:idx_delivery_transitions_delivery_time,priority:1"`
	FromStatus int       `gorm:"not null"`
	ToStatus   int       `gorm:"not null"`
	Event      int       `gorm:"not null"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null"`
	ActorRole  int       `gorm:"not null"`
	Reason     string    `gorm:"type:text;not null;default:''"`
	OccurredAt time.Time `gorm:"not null;index:idx_delivery_transitions_delivery_time,priority:2"`
}

// TableName returns the table name for GORM.
func (TransitionDTO) TableName() string {
	return "delivery_transitions"
}

// RefusalDTO is keyed by delivery and courier so a courier refuses a delivery at most once.
type RefusalDTO struct {
	DeliveryID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CourierID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Reason     string    `gorm:"type:text;not null;default:''"`
	RefusedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (RefusalDTO) TableName() string {
	return "delivery_refusals"
}

func optionalID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func optionalKernelID(id *uuid.UUID) *kernel.UUID {
	if id == nil {
		return nil
	}
	k := kernel.UUIDFromGoogle(*id)
	return &k
}

func fromDomain(d *delivery.Delivery) DeliveryDTO {
	return DeliveryDTO{
		ID:          d.ID().Bytes(),
		PostingID:   d.PostingID().Bytes(),
		CourierID:   optionalID(d.CourierID()),
		Status:      int(d.Status()),
		AdminNotes:  d.AdminNotes(),
		LastEvent:   int(d.LastEvent()),
		LastActorID: optionalID(d.LastActorID()),
		CreatedAt:   d.CreatedAt().UTC(),
		UpdatedAt:   d.UpdatedAt().UTC(),
	}
}

func toDomain(dto DeliveryDTO) (*delivery.Delivery, error) {
	return delivery.RestoreDelivery(
		kernel.UUIDFromGoogle(dto.ID),
		kernel.UUIDFromGoogle(dto.PostingID),
		optionalKernelID(dto.CourierID),
		delivery.Status(dto.Status),
		dto.AdminNotes,
		delivery.Event(dto.LastEvent),
		optionalKernelID(dto.LastActorID),
		dto.CreatedAt,
		dto.UpdatedAt,
	)
}

func transitionFromDomain(r delivery.TransitionRecord) TransitionDTO {
	return TransitionDTO{
		ID:         r.ID.Bytes(),
		DeliveryID: r.DeliveryID.Bytes(),
		FromStatus: int(r.From),
		ToStatus:   int(r.To),
		Event:      int(r.Event),
		ActorID:    r.ActorID.Bytes(),
		ActorRole:  int(r.ActorRole),
		Reason:     r.Reason,
		OccurredAt: r.OccurredAt.UTC(),
	}
}

func refusalFromDomain(r delivery.Refusal) RefusalDTO {
	return RefusalDTO{
		DeliveryID: r.DeliveryID.Bytes(),
		CourierID:  r.CourierID.Bytes(),
		Reason:     r.Reason,
		RefusedAt:  r.RefusedAt.UTC(),
	}
}
