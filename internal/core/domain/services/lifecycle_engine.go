package services

import (
	"fmt"
	"strings"
	"time"

	"marketplace/internal/core/domain/model/delivery"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/outbox"
	"marketplace/internal/core/domain/model/posting"
	"marketplace/internal/pkg/errs"
)

// Outcome is everything a transition produced. The caller persists all of it in
// one transaction: the delivery, the posting change, the history record, the
// refusal and the outbox intents.
type Outcome struct {
	Result        delivery.Result
	PostingChange *posting.Change
	Record        *delivery.TransitionRecord
	Refusal       *delivery.Refusal
	Intents       []*outbox.Message
}

// LifecycleEngine applies delivery transitions and derives their consequences
// on the posting and the side effects to dispatch.
//
// Posting effects:
//   - accept reserves the posting
//   - cancel releases it
//   - validate completes it
//   - override aligns it with the target status
//
// A status change emits one notification intent, plus one invoice intent when
// the delivery reaches completed. Replays and no-ops emit nothing.
type LifecycleEngine struct{}

// NewLifecycleEngine creates the engine. It holds no state.
func NewLifecycleEngine() LifecycleEngine {
	return LifecycleEngine{}
}

// Transition runs req against d. p must be the posting of d, loaded in the
// same transaction. On error d and p may be partially modified and must be
// discarded with the transaction.
func (LifecycleEngine) Transition(d *delivery.Delivery, p *posting.Posting, req delivery.Request, now time.Time) (Outcome, error) {
	if err := d.Validate(); err != nil {
		return Outcome{}, err
	}
	if err := p.Validate(); err != nil {
		return Outcome{}, err
	}
	if !p.ID().IsEqual(d.PostingID()) {
		return Outcome{}, errs.NewObjectConflictErrorWithCause("posting", p.ID(),
			fmt.Errorf("delivery %s belongs to posting %s", d.ID(), d.PostingID()))
	}

	res, err := d.Apply(req, p.OwnerID(), now)
	if err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{Result: res}

	if res.Refused {
		outcome.Refusal = &delivery.Refusal{
			DeliveryID: d.ID(),
			CourierID:  req.Actor.ID(),
			Reason:     strings.TrimSpace(req.Reason),
			RefusedAt:  now,
		}
		outcome.Record = newRecord(d, req, res, now)
		return outcome, nil
	}

	if !res.Changed() {
		return outcome, nil
	}

	change, err := postingEffect(p, req.Event, res.To, now)
	if err != nil {
		return Outcome{}, err
	}
	outcome.PostingChange = change
	outcome.Record = newRecord(d, req, res, now)

	notification, err := outbox.NewNotification(delivery.StatusChanged{
		DeliveryID: d.ID(),
		PostingID:  d.PostingID(),
		OldStatus:  res.From,
		NewStatus:  res.To,
		Event:      req.Event,
		ActorID:    req.Actor.ID(),
		OccurredAt: now,
	})
	if err != nil {
		return Outcome{}, err
	}
	outcome.Intents = append(outcome.Intents, notification)

	if res.To == delivery.Completed {
		invoice, err := outbox.NewInvoiceRequest(d.ID(), now)
		if err != nil {
			return Outcome{}, err
		}
		outcome.Intents = append(outcome.Intents, invoice)
	}

	return outcome, nil
}

// PostingStatusFor is the posting status matching a delivery status.
func PostingStatusFor(status delivery.Status) posting.Status {
	switch status {
	case delivery.Accepted, delivery.InProgress, delivery.Delivered:
		return posting.Assigned
	case delivery.Completed:
		return posting.Completed
	default:
		return posting.Active
	}
}

func postingEffect(p *posting.Posting, event delivery.Event, to delivery.Status, now time.Time) (*posting.Change, error) {
	switch event {
	case delivery.EventAccept:
		return p.Reserve(now)
	case delivery.EventCancel:
		return p.Release(now)
	case delivery.EventValidate:
		return p.Complete(now)
	case delivery.EventOverride:
		return p.AlignTo(PostingStatusFor(to), now)
	default:
		return nil, nil
	}
}

func newRecord(d *delivery.Delivery, req delivery.Request, res delivery.Result, now time.Time) *delivery.TransitionRecord {
	return &delivery.TransitionRecord{
		ID:         kernel.NewUUID(),
		DeliveryID: d.ID(),
		From:       res.From,
		To:         res.To,
		Event:      req.Event,
		ActorID:    req.Actor.ID(),
		ActorRole:  req.Actor.Role(),
		Reason:     strings.TrimSpace(req.Reason),
		OccurredAt: now,
	}
}
