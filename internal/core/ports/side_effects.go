package ports

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/outbox"
)

// NotificationSink announces delivery status changes to the parties involved.
type NotificationSink interface {
	Notify(ctx context.Context, notification outbox.NotificationPayload) error
}

// InvoiceTrigger asks the billing side to invoice a completed delivery.
// Implementations are idempotent on deliveryID.
type InvoiceTrigger interface {
	RequestInvoice(ctx context.Context, deliveryID kernel.UUID) error
}

// DispatchReport is the result of one best-effort dispatch pass. It is logged
// and counted, never turned into an error for the caller.
type DispatchReport struct {
	Claimed    int
	Dispatched int
	Retried    int
	Failed     int
}

// SideEffectDispatcher delivers stored intents to the notification sink and
// the invoice trigger.
type SideEffectDispatcher interface {
	// DispatchMessages dispatches the given messages right after the
	// transaction that stored them committed.
	DispatchMessages(ctx context.Context, ids []kernel.UUID) DispatchReport

	// DispatchDue dispatches every message whose next attempt is due.
	DispatchDue(ctx context.Context) DispatchReport
}
