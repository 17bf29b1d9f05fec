package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var ErrOpenDeliveryCommandIsNotConstructed = errors.New(
	"OpenDeliveryCommand must be created via NewOpenDeliveryCommand constructor",
)

// OpenDeliveryCommand creates the pending delivery of an active posting.
type OpenDeliveryCommand struct {
	deliveryID kernel.UUID
	postingID  kernel.UUID
	actor      kernel.Actor

	guard guard.ConstructorGuard
}

// NewOpenDeliveryCommand creates a command opening deliveryID for postingID.
func NewOpenDeliveryCommand(deliveryID, postingID kernel.UUID, actor kernel.Actor) (OpenDeliveryCommand, error) {
	if err := errors.Join(deliveryID.Validate(), postingID.Validate(), actor.Validate()); err != nil {
		return OpenDeliveryCommand{}, err
	}

	return OpenDeliveryCommand{
		deliveryID: deliveryID,
		postingID:  postingID,
		actor:      actor,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate reports whether the command was built by NewOpenDeliveryCommand.
func (c OpenDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrOpenDeliveryCommandIsNotConstructed)
}

// DeliveryID returns the ID of the delivery to open.
func (c OpenDeliveryCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// PostingID returns the posting the delivery belongs to.
func (c OpenDeliveryCommand) PostingID() kernel.UUID {
	return c.postingID
}

// Actor returns the requesting actor.
func (c OpenDeliveryCommand) Actor() kernel.Actor {
	return c.actor
}
