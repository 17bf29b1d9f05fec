package delivery

import (
	"errors"
	"fmt"

	"marketplace/internal/core/domain/model/kernel"
)

var (
	// ErrDeliveryIsNotConstructed is returned when a Delivery bypassed NewDelivery or RestoreDelivery.
	ErrDeliveryIsNotConstructed = errors.New("Delivery must be created via NewDelivery or RestoreDelivery")

	// ErrInvalidTransition means the current status does not permit the event.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrForbidden means the actor does not satisfy the guard of a permitted event.
	ErrForbidden = errors.New("forbidden")
)

// InvalidTransitionError reports an event the table has no edge for.
type InvalidTransitionError struct {
	DeliveryID kernel.UUID
	From       Status
	Event      Event
}

// NewInvalidTransitionError creates the error for event refused from status from.
func NewInvalidTransitionError(deliveryID kernel.UUID, from Status, event Event) *InvalidTransitionError {
	return &InvalidTransitionError{DeliveryID: deliveryID, From: from, Event: event}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: delivery %s cannot %s from %s", ErrInvalidTransition, e.DeliveryID, e.Event, e.From)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ForbiddenError reports an actor that may not perform an action, usually a
// transition whose guard it failed. Action is the event name for transitions.
type ForbiddenError struct {
	Action string
	Actor  kernel.Actor
	Reason string
}

// NewForbiddenError creates the error for actor failing action.
func NewForbiddenError(action string, actor kernel.Actor, reason string) *ForbiddenError {
	return &ForbiddenError{Action: action, Actor: actor, Reason: reason}
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: %s may not %s: %s", ErrForbidden, e.Actor, e.Action, e.Reason)
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}
