package delivery

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
)

// MinRefuseReasonLength is the minimal number of runes of a trimmed admin refusal reason.
const MinRefuseReasonLength = 5

// Request is a transition asked by an actor. Reason, TargetStatus and CourierID are
// the optional payload; which of them are read depends on the event.
type Request struct {
	Event        Event
	Actor        kernel.Actor
	Reason       string
	TargetStatus Status
	CourierID    *kernel.UUID
}

type (
	// guardFunc returns a ForbiddenError when the actor may not take the edge.
	guardFunc func(d *Delivery, req Request, ownerID kernel.UUID) error

	// validateFunc checks the request payload.
	validateFunc func(d *Delivery, req Request) error

	// effectFunc changes delivery fields other than the status.
	effectFunc func(d *Delivery, req Request, to Status)
)

// Transition is a single allowed edge of the lifecycle.
type Transition struct {
	From  Status
	Event Event

	// To is Unknown when the target comes from the request (admin override).
	To Status

	// NoEffect edges succeed without changing the delivery (courier refusal).
	NoEffect bool

	guard    guardFunc
	validate validateFunc
	effect   effectFunc
}

var transitionsTable = []Transition{
	{From: Pending, Event: EventAccept, To: Accepted, guard: requireUnassignedCourier, effect: assignActor},
	{From: Pending, Event: EventRefuse, NoEffect: true, guard: requireRole(kernel.RoleCourier)},

	{From: Accepted, Event: EventStart, To: InProgress, guard: requireAssignedCourier},
	{From: InProgress, Event: EventMarkDelivered, To: Delivered, guard: requireAssignedCourier},

	{From: Delivered, Event: EventValidate, To: Completed, guard: requireRole(kernel.RoleAdmin)},
	{From: Delivered, Event: EventRefuse, To: InProgress, guard: requireRole(kernel.RoleAdmin), validate: validateRefuseReason, effect: recordAdminNotes},

	{From: Pending, Event: EventCancel, To: Cancelled, guard: requireAssignedCourierOrOwner},
	{From: Accepted, Event: EventCancel, To: Cancelled, guard: requireAssignedCourierOrOwner},
	{From: InProgress, Event: EventCancel, To: Cancelled, guard: requireAssignedCourierOrOwner},

	{From: Pending, Event: EventOverride, guard: requireRole(kernel.RoleAdmin), validate: validateOverride, effect: applyOverride},
	{From: Accepted, Event: EventOverride, guard: requireRole(kernel.RoleAdmin), validate: validateOverride, effect: applyOverride},
	{From: InProgress, Event: EventOverride, guard: requireRole(kernel.RoleAdmin), validate: validateOverride, effect: applyOverride},
	{From: Delivered, Event: EventOverride, guard: requireRole(kernel.RoleAdmin), validate: validateOverride, effect: applyOverride},
}

// TransitionFor returns the edge for a status and event.
func TransitionFor(from Status, event Event) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Event == event {
			return tr, true
		}
	}
	return Transition{}, false
}

// Transitions returns a copy of the table.
func Transitions() []Transition {
	return append([]Transition(nil), transitionsTable...)
}

// Target resolves the status the edge leads to for a request.
func (t Transition) Target(req Request) Status {
	if t.NoEffect {
		return t.From
	}
	if t.To == Unknown {
		return req.TargetStatus
	}
	return t.To
}

func requireRole(role kernel.Role) guardFunc {
	return func(_ *Delivery, req Request, _ kernel.UUID) error {
		if req.Actor.Role() != role {
			return NewForbiddenError(req.Event.String(), req.Actor, fmt.Sprintf("%s role required", role))
		}
		return nil
	}
}

func requireUnassignedCourier(d *Delivery, req Request, ownerID kernel.UUID) error {
	if err := requireRole(kernel.RoleCourier)(d, req, ownerID); err != nil {
		return err
	}
	if d.courierID != nil {
		return NewForbiddenError(req.Event.String(), req.Actor, "delivery already has a courier")
	}
	return nil
}

func requireAssignedCourier(d *Delivery, req Request, _ kernel.UUID) error {
	if !d.isAssignedTo(req.Actor) {
		return NewForbiddenError(req.Event.String(), req.Actor, "actor is not the assigned courier")
	}
	return nil
}

func requireAssignedCourierOrOwner(d *Delivery, req Request, ownerID kernel.UUID) error {
	if d.isAssignedTo(req.Actor) || req.Actor.Is(ownerID) {
		return nil
	}
	return NewForbiddenError(req.Event.String(), req.Actor, "actor is neither the assigned courier nor the posting owner")
}

func validateRefuseReason(_ *Delivery, req Request) error {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return errs.NewValueIsRequiredError("reason")
	}
	if n := utf8.RuneCountInString(reason); n < MinRefuseReasonLength {
		return errs.NewValueIsInvalidErrorWithCause("reason",
			fmt.Errorf("%d characters given, at least %d required", n, MinRefuseReasonLength))
	}
	return nil
}

func validateOverride(d *Delivery, req Request) error {
	if req.TargetStatus == Unknown {
		return errs.NewValueIsRequiredError("target_status")
	}
	if err := req.TargetStatus.Validate(); err != nil {
		return err
	}
	if req.CourierID != nil {
		if err := req.CourierID.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("courier_id", err)
		}
	}
	if req.TargetStatus.RequiresCourier() && d.courierID == nil && req.CourierID == nil {
		return errs.NewValueIsRequiredErrorWithCause("courier_id",
			errors.New(req.TargetStatus.String()+" requires a courier"))
	}
	return nil
}

func assignActor(d *Delivery, req Request, _ Status) {
	id := req.Actor.ID()
	d.courierID = &id
}

func recordAdminNotes(d *Delivery, req Request, _ Status) {
	d.adminNotes = strings.TrimSpace(req.Reason)
}

func applyOverride(d *Delivery, req Request, to Status) {
	switch {
	case to == Pending:
		d.courierID = nil
	case req.CourierID != nil:
		id := *req.CourierID
		d.courierID = &id
	}
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		d.adminNotes = reason
	}
}
