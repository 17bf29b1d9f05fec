package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/delivery"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var ErrRequestTransitionCommandIsNotConstructed = errors.New(
	"RequestTransitionCommand must be created via NewRequestTransitionCommand constructor",
)

// RequestTransitionCommand asks the lifecycle to apply an event to a delivery
// on behalf of an actor. The payload (reason, target status, courier) is only
// checked by the lifecycle, after the status and the actor.
//
//	cmd, err := NewRequestTransitionCommand(deliveryID, delivery.EventStart, courier, TransitionPayload{})
//	if err != nil {
//	    return err
//	}
//	result, err := handler.Handle(ctx, cmd)
type RequestTransitionCommand struct {
	deliveryID kernel.UUID
	request    delivery.Request

	guard guard.ConstructorGuard
}

// TransitionPayload is the optional part of a transition request.
type TransitionPayload struct {
	Reason       string
	TargetStatus delivery.Status
	CourierID    *kernel.UUID
}

// NewRequestTransitionCommand creates a transition request of event on
// deliveryID by actor.
func NewRequestTransitionCommand(
	deliveryID kernel.UUID,
	event delivery.Event,
	actor kernel.Actor,
	payload TransitionPayload,
) (RequestTransitionCommand, error) {
	if err := errors.Join(
		deliveryID.Validate(),
		event.Validate(),
		actor.Validate(),
	); err != nil {
		return RequestTransitionCommand{}, err
	}

	return RequestTransitionCommand{
		deliveryID: deliveryID,
		request: delivery.Request{
			Event:        event,
			Actor:        actor,
			Reason:       payload.Reason,
			TargetStatus: payload.TargetStatus,
			CourierID:    payload.CourierID,
		},
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate reports whether the command was built by NewRequestTransitionCommand.
func (c RequestTransitionCommand) Validate() error {
	return c.guard.Validate(ErrRequestTransitionCommandIsNotConstructed)
}

// DeliveryID returns the target delivery.
func (c RequestTransitionCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// Event returns the requested event.
func (c RequestTransitionCommand) Event() delivery.Event {
	return c.request.Event
}

// Actor returns the requesting actor.
func (c RequestTransitionCommand) Actor() kernel.Actor {
	return c.request.Actor
}

// Request converts the command into the domain transition request.
func (c RequestTransitionCommand) Request() delivery.Request {
	return c.request
}
