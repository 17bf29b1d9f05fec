package commands

import (
	"encoding/json"
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var ErrCreatePostingCommandIsNotConstructed = errors.New(
	"CreatePostingCommand must be created via NewCreatePostingCommand constructor",
)

// CreatePostingCommand publishes a new active posting owned by the actor.
// With openDelivery a pending delivery is created in the same transaction so
// couriers can accept it through the transition endpoint.
type CreatePostingCommand struct {
	postingID    kernel.UUID
	deliveryID   kernel.UUID
	actor        kernel.Actor
	details      json.RawMessage
	openDelivery bool

	guard guard.ConstructorGuard
}

// NewCreatePostingCommand creates a posting command for a client actor.
func NewCreatePostingCommand(
	postingID kernel.UUID,
	actor kernel.Actor,
	details json.RawMessage,
	openDelivery bool,
) (CreatePostingCommand, error) {
	if err := errors.Join(postingID.Validate(), actor.Validate()); err != nil {
		return CreatePostingCommand{}, err
	}

	return CreatePostingCommand{
		postingID:    postingID,
		deliveryID:   kernel.NewUUID(),
		actor:        actor,
		details:      details,
		openDelivery: openDelivery,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate reports whether the command was built by NewCreatePostingCommand.
func (c CreatePostingCommand) Validate() error {
	return c.guard.Validate(ErrCreatePostingCommandIsNotConstructed)
}

// PostingID returns the ID of the posting to create.
func (c CreatePostingCommand) PostingID() kernel.UUID {
	return c.postingID
}

// DeliveryID is the identifier used for the pending delivery when OpenDelivery is set.
func (c CreatePostingCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// Actor returns the posting owner.
func (c CreatePostingCommand) Actor() kernel.Actor {
	return c.actor
}

// Details returns the free-form posting details as JSON.
func (c CreatePostingCommand) Details() json.RawMessage {
	return c.details
}

// OpenDelivery reports whether a pending delivery is opened with the posting.
func (c CreatePostingCommand) OpenDelivery() bool {
	return c.openDelivery
}
