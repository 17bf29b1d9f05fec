package delivery

import (
	"time"

	"marketplace/internal/core/domain/model/kernel"
)

// StatusChanged is announced to the notification sink after a status moved.
type StatusChanged struct {
	DeliveryID kernel.UUID
	PostingID  kernel.UUID
	OldStatus  Status
	NewStatus  Status
	Event      Event
	ActorID    kernel.UUID
	OccurredAt time.Time
}

// TransitionRecord is one line of the delivery history.
type TransitionRecord struct {
	ID         kernel.UUID
	DeliveryID kernel.UUID
	From       Status
	To         Status
	Event      Event
	ActorID    kernel.UUID
	ActorRole  kernel.Role
	Reason     string
	OccurredAt time.Time
}

// Refusal hides a pending delivery from the courier who refused it.
type Refusal struct {
	DeliveryID kernel.UUID
	CourierID  kernel.UUID
	Reason     string
	RefusedAt  time.Time
}
