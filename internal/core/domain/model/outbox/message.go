package outbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/delivery"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

// ErrMessageIsNotConstructed is returned when a Message bypassed its constructors.
var ErrMessageIsNotConstructed = errors.New("Message must be created via NewNotification, NewInvoiceRequest or RestoreMessage")

// Kind selects the sink a message is delivered to.
type Kind string

const (
	KindNotification Kind = "notification"
	KindInvoice      Kind = "invoice"
)

// Validate rejects kinds without a sink.
func (k Kind) Validate() error {
	switch k {
	case KindNotification, KindInvoice:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("kind", fmt.Errorf("%q is not an outbox kind", string(k)))
	}
}

// Status is the dispatch state of a message.
type Status string

const (
	StatusPending    Status = "pending"
	StatusDispatched Status = "dispatched"
	StatusFailed     Status = "failed"
)

// Validate rejects unknown dispatch states.
func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusDispatched, StatusFailed:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("outbox status", fmt.Errorf("%q is not an outbox status", string(s)))
	}
}

// Backoff bounds for failed dispatch attempts.
const (
	BaseBackoff = 5 * time.Second
	MaxBackoff  = 10 * time.Minute
)

// NotificationPayload is the JSON body of a notification message, and the
// value published by notification sinks.
type NotificationPayload struct {
	DeliveryID string    `json:"delivery_id"`
	PostingID  string    `json:"posting_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	Event      string    `json:"event"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// InvoicePayload is the JSON body of an invoice message.
type InvoicePayload struct {
	DeliveryID string `json:"delivery_id"`
}

// Message is a side-effect intent stored in the same transaction as the
// transition that produced it and dispatched after commit.
type Message struct {
	id            kernel.UUID
	kind          Kind
	payload       json.RawMessage
	dedupeKey     string
	status        Status
	attempts      int
	lastError     string
	nextAttemptAt time.Time
	createdAt     time.Time
	dispatchedAt  *time.Time
	guard         guard.ConstructorGuard
}

// NewNotification builds the intent announcing a status change. Its dedupe key
// is unique per transition so a replay can never store it twice.
func NewNotification(event delivery.StatusChanged) (*Message, error) {
	payload, err := json.Marshal(NotificationPayload{
		DeliveryID: event.DeliveryID.String(),
		PostingID:  event.PostingID.String(),
		OldStatus:  event.OldStatus.String(),
		NewStatus:  event.NewStatus.String(),
		Event:      event.Event.String(),
		ActorID:    event.ActorID.String(),
		OccurredAt: event.OccurredAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal notification payload: %w", err)
	}

	key := fmt.Sprintf("notification:%s:%s:%d", event.DeliveryID, event.NewStatus, event.OccurredAt.UnixNano())
	return newMessage(KindNotification, payload, key, event.OccurredAt), nil
}

// InvoiceDedupeKey is the dedupe key of the invoice intent of a delivery.
func InvoiceDedupeKey(deliveryID kernel.UUID) string {
	return "invoice:" + deliveryID.String()
}

// NewInvoiceRequest builds the intent asking for the invoice of a completed delivery.
func NewInvoiceRequest(deliveryID kernel.UUID, now time.Time) (*Message, error) {
	if err := deliveryID.Validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(InvoicePayload{DeliveryID: deliveryID.String()})
	if err != nil {
		return nil, fmt.Errorf("marshal invoice payload: %w", err)
	}
	return newMessage(KindInvoice, payload, InvoiceDedupeKey(deliveryID), now), nil
}

func newMessage(kind Kind, payload json.RawMessage, dedupeKey string, now time.Time) *Message {
	return &Message{
		id:            kernel.NewUUID(),
		kind:          kind,
		payload:       payload,
		dedupeKey:     dedupeKey,
		status:        StatusPending,
		nextAttemptAt: now,
		createdAt:     now,
		guard:         guard.NewConstructorGuard(),
	}
}

// RestoreMessage rebuilds a message loaded from storage.
func RestoreMessage(
	id kernel.UUID,
	kind Kind,
	payload json.RawMessage,
	dedupeKey string,
	status Status,
	attempts int,
	lastError string,
	nextAttemptAt time.Time,
	createdAt time.Time,
	dispatchedAt *time.Time,
) (*Message, error) {
	var dedupeErr error
	if dedupeKey == "" {
		dedupeErr = errs.NewValueIsRequiredError("dedupe_key")
	}
	var attemptsErr error
	if attempts < 0 {
		attemptsErr = errs.NewValueIsOutOfRangeError("attempts", attempts, 0, nil)
	}
	if err := errors.Join(id.Validate(), kind.Validate(), status.Validate(), dedupeErr, attemptsErr); err != nil {
		return nil, err
	}

	return &Message{
		id:            id,
		kind:          kind,
		payload:       payload,
		dedupeKey:     dedupeKey,
		status:        status,
		attempts:      attempts,
		lastError:     lastError,
		nextAttemptAt: nextAttemptAt,
		createdAt:     createdAt,
		dispatchedAt:  dispatchedAt,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

// Validate returns ErrMessageIsNotConstructed for a nil or zero Message.
func (m *Message) Validate() error {
	if m == nil {
		return ErrMessageIsNotConstructed
	}
	return m.guard.Validate(ErrMessageIsNotConstructed)
}

// ID returns the message identifier.
func (m *Message) ID() kernel.UUID { return m.id }
func (m *Message) Kind() Kind { return m.kind }
func (m *Message) Payload() json.RawMessage { return m.payload }
func (m *Message) DedupeKey() string { return m.dedupeKey }
func (m *Message) Status() Status { return m.status }
func (m *Message) Attempts() int { return m.attempts }
func (m *Message) LastError() string { return m.lastError }
func (m *Message) NextAttemptAt() time.Time { return m.nextAttemptAt }
func (m *Message) CreatedAt() time.Time { return m.createdAt }
func (m *Message) DispatchedAt() *time.Time { return m.dispatchedAt }

// Notification decodes the payload of a notification message.
func (m *Message) Notification() (NotificationPayload, error) {
	var p NotificationPayload
	if m.kind != KindNotification {
		return p, errs.NewValueIsInvalidErrorWithCause("kind", fmt.Errorf("%s message has no notification payload", m.kind))
	}
	if err := json.Unmarshal(m.payload, &p); err != nil {
		return p, errs.NewValueIsInvalidErrorWithCause("payload", err)
	}
	return p, nil
}

// Invoice decodes the payload of an invoice message.
func (m *Message) Invoice() (kernel.UUID, error) {
	if m.kind != KindInvoice {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("kind", fmt.Errorf("%s message has no invoice payload", m.kind))
	}
	var p InvoicePayload
	if err := json.Unmarshal(m.payload, &p); err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("payload", err)
	}
	return kernel.UUIDFromString(p.DeliveryID)
}

// MarkDispatched records a successful delivery to the sink.
func (m *Message) MarkDispatched(now time.Time) {
	m.attempts++
	m.status = StatusDispatched
	m.lastError = ""
	m.dispatchedAt = &now
}

// MarkFailed records a failed attempt and schedules the next one. The message
// becomes StatusFailed once maxAttempts is reached.
func (m *Message) MarkFailed(cause error, now time.Time, maxAttempts int) {
	m.attempts++
	if cause != nil {
		m.lastError = cause.Error()
	}
	if maxAttempts > 0 && m.attempts >= maxAttempts {
		m.status = StatusFailed
		return
	}
	m.status = StatusPending
	m.nextAttemptAt = now.Add(Backoff(m.attempts))
}

// Backoff returns the delay after the given number of failed attempts.
func Backoff(attempts int) time.Duration {
	if attempts < 1 {
		return BaseBackoff
	}
	d := BaseBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= MaxBackoff {
			return MaxBackoff
		}
	}
	return d
}
