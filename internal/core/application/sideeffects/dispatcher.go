// Package sideeffects delivers the outbox intents written by lifecycle
// transitions to the notification sink and the invoice trigger.
//
// Messages are claimed in a short transaction that moves their next attempt
// past a lease, so concurrent dispatchers (inline, cron, listener, other
// replicas) never hold the same message. The sink is called outside any
// transaction and each result is saved on its own.
package sideeffects

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/outbox"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"
)

type (
	// OutboxUoW is the part of the unit of work the dispatcher needs.
	OutboxUoW interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
		OutboxRepository() ports.OutboxRepository
	}

	OutboxUoWFactory interface {
		Create() OutboxUoW
	}
)

// Settings bound a dispatch pass.
type Settings struct {
	// MaxAttempts after which a message is marked failed for good.
	MaxAttempts int
	// BatchSize is the number of due messages claimed per pass.
	BatchSize int
	// Lease is how long a claimed message stays invisible to other dispatchers.
	Lease time.Duration
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	return Settings{MaxAttempts: 8, BatchSize: 50, Lease: time.Minute}
}

var errPermanent = errors.New("message cannot be dispatched")

var _ ports.SideEffectDispatcher = (*Dispatcher)(nil)

// Dispatcher delivers outbox messages to the notification sink and the invoice
// trigger. Each message is claimed under a lease, delivered, and saved as
// dispatched or rescheduled with backoff in its own unit of work.
type Dispatcher struct {
	uowFactory    OutboxUoWFactory
	notifications ports.NotificationSink
	invoices      ports.InvoiceTrigger
	observer      ports.DispatchObserver
	logger        *slog.Logger
	settings      Settings
	now           func() time.Time
}

// NewDispatcher creates a dispatcher. observer and logger are optional.
//
// Example:
//
// 	dispatcher, err := sideeffects.NewDispatcher(uowFactory, sink, invoices, metrics, logger, sideeffects.DefaultSettings())
// 	if err != nil {
// 		return err
// 	}
// 	report := dispatcher.DispatchDue(ctx)
func NewDispatcher(
	uowFactory OutboxUoWFactory,
	notifications ports.NotificationSink,
	invoices ports.InvoiceTrigger,
	observer ports.DispatchObserver,
	logger *slog.Logger,
	settings Settings,
) (*Dispatcher, error) {
	if uowFactory == nil {
		return nil, errs.NewValueIsRequiredError("uowFactory")
	}
	if notifications == nil {
		return nil, errs.NewValueIsRequiredError("notifications")
	}
	if invoices == nil {
		return nil, errs.NewValueIsRequiredError("invoices")
	}
	if settings.MaxAttempts < 1 {
		return nil, errs.NewValueIsOutOfRangeError("maxAttempts", settings.MaxAttempts, 1, 1000)
	}
	if settings.BatchSize < 1 {
		return nil, errs.NewValueIsOutOfRangeError("batchSize", settings.BatchSize, 1, 10000)
	}
	if settings.Lease <= 0 {
		return nil, errs.NewValueIsRequiredError("lease")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Dispatcher{
		uowFactory:    uowFactory,
		notifications: notifications,
		invoices:      invoices,
		observer:      observer,
		logger:        logger.With("component", "side-effect-dispatcher"),
		settings:      settings,
		now:           time.Now,
	}, nil
}

// DispatchMessages delivers the given messages right after the transaction
// that wrote them committed. Messages already claimed elsewhere are skipped.
func (d *Dispatcher) DispatchMessages(ctx context.Context, ids []kernel.UUID) ports.DispatchReport {
	if len(ids) == 0 {
		return ports.DispatchReport{}
	}
	return d.run(ctx, func(repo ports.OutboxRepository, now time.Time) ([]*outbox.Message, error) {
		return repo.ClaimByIDs(ctx, ids, now, d.settings.Lease)
	})
}

// DispatchDue delivers one batch of pending messages whose next attempt is due.
func (d *Dispatcher) DispatchDue(ctx context.Context) ports.DispatchReport {
	return d.run(ctx, func(repo ports.OutboxRepository, now time.Time) ([]*outbox.Message, error) {
		return repo.ClaimDue(ctx, now, d.settings.Lease, d.settings.BatchSize)
	})
}

type claimFunc func(repo ports.OutboxRepository, now time.Time) ([]*outbox.Message, error)

func (d *Dispatcher) run(ctx context.Context, claim claimFunc) ports.DispatchReport {
	var report ports.DispatchReport

	messages, err := d.claim(ctx, claim)
	if err != nil {
		d.logger.WarnContext(ctx, "failed to claim outbox messages", slog.String("error", err.Error()))
		return report
	}
	report.Claimed = len(messages)

	for _, msg := range messages {
		if ctx.Err() != nil {
			// Unprocessed messages come back once their lease expires.
			break
		}

		cause := d.deliver(ctx, msg)
		now := d.now().UTC()
		result := "dispatched"
		switch {
		case cause == nil:
			msg.MarkDispatched(now)
			report.Dispatched++
		case errors.Is(cause, errPermanent):
			msg.MarkFailed(cause, now, msg.Attempts()+1)
			report.Failed++
			result = "failed"
		default:
			msg.MarkFailed(cause, now, d.settings.MaxAttempts)
			if msg.Status() == outbox.StatusFailed {
				report.Failed++
				result = "failed"
			} else {
				report.Retried++
				result = "retry"
			}
		}

		if cause != nil {
			d.logger.WarnContext(ctx, "side effect dispatch failed",
				slog.String("message_id", msg.ID().String()),
				slog.String("kind", string(msg.Kind())),
				slog.Int("attempts", msg.Attempts()),
				slog.String("status", string(msg.Status())),
				slog.String("error", cause.Error()),
			)
		}
		if d.observer != nil {
			d.observer.ObserveDispatch(string(msg.Kind()), result)
		}

		if err := d.save(ctx, msg); err != nil {
			d.logger.WarnContext(ctx, "failed to save outbox message",
				slog.String("message_id", msg.ID().String()),
				slog.String("error", err.Error()),
			)
		}
	}

	return report
}

func (d *Dispatcher) claim(ctx context.Context, claim claimFunc) ([]*outbox.Message, error) {
	uow := d.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	messages, err := claim(uow.OutboxRepository(), d.now().UTC())
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}
	return messages, nil
}

func (d *Dispatcher) deliver(ctx context.Context, msg *outbox.Message) error {
	switch msg.Kind() {
	case outbox.KindNotification:
		payload, err := msg.Notification()
		if err != nil {
			return fmt.Errorf("%w: %w", errPermanent, err)
		}
		return d.notifications.Notify(ctx, payload)
	case outbox.KindInvoice:
		deliveryID, err := msg.Invoice()
		if err != nil {
			return fmt.Errorf("%w: %w", errPermanent, err)
		}
		return d.invoices.RequestInvoice(ctx, deliveryID)
	default:
		return fmt.Errorf("%w: unknown kind %q", errPermanent, msg.Kind())
	}
}

func (d *Dispatcher) save(ctx context.Context, msg *outbox.Message) error {
	uow := d.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.OutboxRepository().Save(ctx, msg); err != nil {
		return err
	}
	return uow.Commit(ctx)
}
