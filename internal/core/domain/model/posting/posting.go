package posting

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

// ErrPostingIsNotConstructed is returned when a Posting bypassed NewPosting or RestorePosting.
var ErrPostingIsNotConstructed = errors.New("Posting must be created via NewPosting or RestorePosting")

// Posting is a request for a delivery published by a client or provider.
// Its descriptive payload (addresses, price, dates) is opaque to the
// lifecycle and kept as a JSON object.
//
// Only the lifecycle engine changes the status of a posting, as a consequence
// of a delivery transition:
//   - accept reserves it (Active -> Assigned)
//   - cancel releases it (-> Active)
//   - validate completes it (Assigned -> Completed)
type Posting struct {
	id        kernel.UUID
	ownerID   kernel.UUID
	status    Status
	details   json.RawMessage
	createdAt time.Time
	updatedAt time.Time
	guard     guard.ConstructorGuard
}

// Change describes a compare-and-set of the posting status.
type Change struct {
	PostingID kernel.UUID
	Expected  Status
	Next      Status
}

// NewPosting creates an Active posting owned by ownerID.
func NewPosting(id, ownerID kernel.UUID, details json.RawMessage, now time.Time) (*Posting, error) {
	p := &Posting{
		status:    Active,
		createdAt: now,
		updatedAt: now,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		p.setID(id),
		p.setOwnerID(ownerID),
		p.setDetails(details),
	); err != nil {
		return nil, err
	}

	return p, nil
}

// RestorePosting rebuilds a posting loaded from storage.
func RestorePosting(
	id, ownerID kernel.UUID,
	status Status,
	details json.RawMessage,
	createdAt, updatedAt time.Time,
) (*Posting, error) {
	p := &Posting{
		createdAt: createdAt,
		updatedAt: updatedAt,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		p.setID(id),
		p.setOwnerID(ownerID),
		p.setStatus(status),
		p.setDetails(details),
	); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate returns ErrPostingIsNotConstructed for a nil or zero Posting.
func (p *Posting) Validate() error {
	if p == nil {
		return ErrPostingIsNotConstructed
	}
	return p.guard.Validate(ErrPostingIsNotConstructed)
}

// ID returns the posting identifier.
func (p *Posting) ID() kernel.UUID {
	return p.id
}

// OwnerID returns the client who created the posting.
func (p *Posting) OwnerID() kernel.UUID {
	return p.ownerID
}

// Status returns the current posting status.
func (p *Posting) Status() Status {
	return p.status
}

// Details returns a copy of the JSON payload.
func (p *Posting) Details() json.RawMessage {
	return append(json.RawMessage(nil), p.details...)
}

func (p *Posting) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Posting) UpdatedAt() time.Time {
	return p.updatedAt
}

// IsOwnedBy reports whether actorID is the posting owner.
func (p *Posting) IsOwnedBy(actorID kernel.UUID) bool {
	return p.ownerID.IsEqual(actorID)
}

// IsActive reports whether the posting is waiting for a courier.
func (p *Posting) IsActive() bool {
	return p.status == Active
}

// Reserve marks the posting as taken by a courier.
func (p *Posting) Reserve(now time.Time) (*Change, error) {
	return p.move(p.status.Reserve, now)
}

// Release makes the posting available again. Nil is returned when nothing changed.
func (p *Posting) Release(now time.Time) (*Change, error) {
	return p.move(p.status.Release, now)
}

// Complete marks the posting as fulfilled.
func (p *Posting) Complete(now time.Time) (*Change, error) {
	return p.move(p.status.Complete, now)
}

// AlignTo forces the posting into next. It backs the admin override edge, where the
// delivery is moved outside the regular table and the posting has to follow.
func (p *Posting) AlignTo(next Status, now time.Time) (*Change, error) {
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return p.move(func() (Status, error) { return next, nil }, now)
}

func (p *Posting) move(transition func() (Status, error), now time.Time) (*Change, error) {
	next, err := transition()
	if err != nil {
		return nil, errs.NewObjectConflictErrorWithCause("posting", p.id, err)
	}
	if next == p.status {
		return nil, nil
	}

	change := &Change{PostingID: p.id, Expected: p.status, Next: next}
	p.status = next
	p.updatedAt = now
	return change, nil
}

func (p *Posting) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	p.id = id
	return nil
}

func (p *Posting) setOwnerID(ownerID kernel.UUID) error {
	if ownerID.IsZero() {
		return errs.NewValueIsRequiredError("owner_id")
	}
	p.ownerID = ownerID
	return nil
}

func (p *Posting) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	p.status = status
	return nil
}

func (p *Posting) setDetails(details json.RawMessage) error {
	trimmed := bytes.TrimSpace(details)
	if len(trimmed) == 0 {
		p.details = json.RawMessage("{}")
		return nil
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &object); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("details", errors.New("details must be a JSON object"))
	}
	p.details = append(json.RawMessage(nil), trimmed...)
	return nil
}
