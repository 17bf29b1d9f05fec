package delivery

import (
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

// Delivery is the aggregate root of the lifecycle: the physical fulfilment of a
// posting by a courier. Its status only moves along the transition table.
//
// Invariants:
//   - posting_id is set at creation and never changes
//   - courier_id is set for every status that RequiresCourier
//   - the last applied event and actor are remembered so a repeated request is a no-op
type Delivery struct {
	id          kernel.UUID
	postingID   kernel.UUID
	courierID   *kernel.UUID
	status      Status
	adminNotes  string
	lastEvent   Event
	lastActorID *kernel.UUID
	createdAt   time.Time
	updatedAt   time.Time
	guard       guard.ConstructorGuard
}

// Result describes what Apply did.
type Result struct {
	From Status
	To   Status

	// Applied is true when delivery fields changed and must be persisted.
	Applied bool

	// Replay is true when the request repeated the last applied transition.
	Replay bool

	// Refused is true for a courier refusal of a pending delivery.
	Refused bool
}

// Changed reports whether the status moved.
func (r Result) Changed() bool {
	return r.Applied && r.From != r.To
}

// NewDelivery creates a pending delivery for a posting.
func NewDelivery(id, postingID kernel.UUID, now time.Time) (*Delivery, error) {
	d := &Delivery{
		status:    Pending,
		createdAt: now,
		updatedAt: now,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setPostingID(postingID),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// RestoreDelivery rebuilds a delivery loaded from storage.
func RestoreDelivery(
	id kernel.UUID,
	postingID kernel.UUID,
	courierID *kernel.UUID,
	status Status,
	adminNotes string,
	lastEvent Event,
	lastActorID *kernel.UUID,
	createdAt time.Time,
	updatedAt time.Time,
) (*Delivery, error) {
	d := &Delivery{
		adminNotes:  adminNotes,
		lastEvent:   lastEvent,
		lastActorID: lastActorID,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setPostingID(postingID),
		d.setStatus(status),
		d.setCourierID(courierID, status),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// Validate returns ErrDeliveryIsNotConstructed for a nil or zero Delivery.
func (d *Delivery) Validate() error {
	if d == nil {
		return ErrDeliveryIsNotConstructed
	}
	return d.guard.Validate(ErrDeliveryIsNotConstructed)
}

// ID returns the delivery identifier.
func (d *Delivery) ID() kernel.UUID {
	return d.id
}

// PostingID returns the posting the delivery belongs to.
func (d *Delivery) PostingID() kernel.UUID {
	return d.postingID
}

// CourierID returns nil until a courier accepted the delivery.
func (d *Delivery) CourierID() *kernel.UUID {
	if d.courierID == nil {
		return nil
	}
	id := *d.courierID
	return &id
}

// Status returns the current lifecycle status.
func (d *Delivery) Status() Status {
	return d.status
}

// AdminNotes returns the reason of the last admin refusal, if any.
func (d *Delivery) AdminNotes() string {
	return d.adminNotes
}

// LastEvent is EventUnknown when no transition was ever applied.
func (d *Delivery) LastEvent() Event {
	return d.lastEvent
}

// LastActorID returns the actor of the last applied transition, or nil.
func (d *Delivery) LastActorID() *kernel.UUID {
	if d.lastActorID == nil {
		return nil
	}
	id := *d.lastActorID
	return &id
}

func (d *Delivery) CreatedAt() time.Time {
	return d.createdAt
}

func (d *Delivery) UpdatedAt() time.Time {
	return d.updatedAt
}

// IsOpen reports whether the delivery has not reached a terminal status.
func (d *Delivery) IsOpen() bool {
	return !d.status.IsTerminal()
}

// Apply runs a transition request against the table. ownerID is the owner of
// the delivery's posting. Checks run in a fixed order: the status must permit
// the event (InvalidTransitionError), the actor must satisfy the guard
// (ForbiddenError), the payload must be valid (errs.ValueIs*).
//
// Repeating the last applied transition with the same actor is a successful
// no-op, even from a terminal status.
func (d *Delivery) Apply(req Request, ownerID kernel.UUID, now time.Time) (Result, error) {
	if err := d.Validate(); err != nil {
		return Result{}, err
	}
	if err := errors.Join(req.Event.Validate(), req.Actor.Validate()); err != nil {
		return Result{}, err
	}

	if d.isReplay(req) {
		return Result{From: d.status, To: d.status, Replay: true}, nil
	}

	tr, ok := TransitionFor(d.status, req.Event)
	if !ok {
		return Result{}, NewInvalidTransitionError(d.id, d.status, req.Event)
	}
	if err := tr.guard(d, req, ownerID); err != nil {
		return Result{}, err
	}
	if tr.validate != nil {
		if err := tr.validate(d, req); err != nil {
			return Result{}, err
		}
	}

	if tr.NoEffect {
		return Result{From: d.status, To: d.status, Refused: req.Event == EventRefuse}, nil
	}

	from, to := d.status, tr.Target(req)
	if to == from {
		return Result{From: from, To: to}, nil
	}

	if tr.effect != nil {
		tr.effect(d, req, to)
	}

	actorID := req.Actor.ID()
	d.status = to
	d.lastEvent = req.Event
	d.lastActorID = &actorID
	d.updatedAt = now

	return Result{From: from, To: to, Applied: true}, nil
}

// AvailableTo reports whether a courier could accept the delivery now.
func (d *Delivery) AvailableTo(actor kernel.Actor) bool {
	return d.status == Pending && d.courierID == nil && actor.IsCourier()
}

func (d *Delivery) isReplay(req Request) bool {
	if req.Event == EventOverride || d.lastActorID == nil {
		return false
	}
	return d.lastEvent == req.Event && req.Actor.Is(*d.lastActorID)
}

func (d *Delivery) isAssignedTo(actor kernel.Actor) bool {
	return d.courierID != nil && actor.IsCourier() && actor.Is(*d.courierID)
}

func (d *Delivery) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Delivery) setPostingID(postingID kernel.UUID) error {
	if postingID.IsZero() {
		return errs.NewValueIsRequiredError("posting_id")
	}
	d.postingID = postingID
	return nil
}

func (d *Delivery) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	d.status = status
	return nil
}

func (d *Delivery) setCourierID(courierID *kernel.UUID, status Status) error {
	if courierID == nil {
		if status.RequiresCourier() {
			return errs.NewValueIsRequiredErrorWithCause("courier_id",
				fmt.Errorf("%s delivery must have a courier", status))
		}
		return nil
	}
	if err := courierID.Validate(); err != nil {
		return err
	}
	id := *courierID
	d.courierID = &id
	return nil
}
