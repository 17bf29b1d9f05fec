package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var ErrClaimPostingCommandIsNotConstructed = errors.New(
	"ClaimPostingCommand must be created via NewClaimPostingCommand constructor",
)

// ClaimPostingCommand is a courier accepting a posting directly. The pending
// delivery of the posting is reused, or created when there is none.
type ClaimPostingCommand struct {
	postingID  kernel.UUID
	deliveryID kernel.UUID
	courier    kernel.Actor

	guard guard.ConstructorGuard
}

// NewClaimPostingCommand creates a claim of postingID by courier.
func NewClaimPostingCommand(postingID kernel.UUID, courier kernel.Actor) (ClaimPostingCommand, error) {
	if err := errors.Join(postingID.Validate(), courier.Validate()); err != nil {
		return ClaimPostingCommand{}, err
	}

	return ClaimPostingCommand{
		postingID:  postingID,
		deliveryID: kernel.NewUUID(),
		courier:    courier,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate reports whether the command was built by NewClaimPostingCommand.
func (c ClaimPostingCommand) Validate() error {
	return c.guard.Validate(ErrClaimPostingCommandIsNotConstructed)
}

// PostingID returns the claimed posting.
func (c ClaimPostingCommand) PostingID() kernel.UUID {
	return c.postingID
}

// DeliveryID is used only when the posting has no open delivery yet.
func (c ClaimPostingCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// Courier returns the claiming courier.
func (c ClaimPostingCommand) Courier() kernel.Actor {
	return c.courier
}
