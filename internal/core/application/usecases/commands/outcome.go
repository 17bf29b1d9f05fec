package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"marketplace/internal/core/domain/model/delivery"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"
)

// TransitionResult is returned by the handlers that run a lifecycle transition.
type TransitionResult struct {
	Delivery    *delivery.Delivery
	Result      delivery.Result
	SideEffects ports.DispatchReport
}

// persistOutcome writes everything the engine produced inside the open unit of work.
func persistOutcome(ctx context.Context, uow UoW, d *delivery.Delivery, outcome services.Outcome) error {
	if outcome.Result.Applied {
		if err := uow.DeliveryRepository().Update(ctx, d); err != nil {
			return err
		}
	}

	if change := outcome.PostingChange; change != nil {
		if err := uow.PostingRepository().SetStatus(ctx, change.PostingID, change.Expected, change.Next); err != nil {
			return err
		}
	}

	record := outcome.Record
	if outcome.Refusal != nil {
		recorded, err := uow.DeliveryRepository().AddRefusal(ctx, *outcome.Refusal)
		if err != nil {
			return err
		}
		// A repeated refusal by the same courier is already in the history.
		if !recorded {
			record = nil
		}
	}

	if record != nil {
		if err := uow.DeliveryRepository().AddTransition(ctx, *record); err != nil {
			return err
		}
	}

	if len(outcome.Intents) > 0 {
		if err := uow.OutboxRepository().Add(ctx, outcome.Intents...); err != nil {
			return err
		}
	}

	return nil
}

// dispatchAfterCommit hands the committed intents to the dispatcher. A nil
// dispatcher leaves them to the retry job.
func dispatchAfterCommit(ctx context.Context, dispatcher ports.SideEffectDispatcher, outcome services.Outcome) ports.DispatchReport {
	if dispatcher == nil || len(outcome.Intents) == 0 {
		return ports.DispatchReport{}
	}

	ids := make([]kernel.UUID, 0, len(outcome.Intents))
	for _, intent := range outcome.Intents {
		ids = append(ids, intent.ID())
	}
	return dispatcher.DispatchMessages(ctx, ids)
}

// transitionOutcome is the metric label describing how a request ended.
func transitionOutcome(res delivery.Result, err error) string {
	switch {
	case err == nil && res.Replay:
		return "replay"
	case err == nil && res.Refused:
		return "refused"
	case err == nil && res.Applied:
		return "applied"
	case err == nil:
		return "noop"
	case errors.Is(err, errs.ErrObjectNotFound):
		return "not_found"
	case errors.Is(err, delivery.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, delivery.ErrForbidden):
		return "forbidden"
	case errs.IsValidationError(err):
		return "validation_failed"
	case errors.Is(err, errs.ErrObjectConflict):
		return "conflict"
	default:
		return "error"
	}
}

type transitionTelemetry struct {
	logger   *slog.Logger
	observer ports.TransitionObserver
}

func (t transitionTelemetry) record(ctx context.Context, event delivery.Event, deliveryID kernel.UUID, started time.Time, res delivery.Result, err error) {
	outcome := transitionOutcome(res, err)
	if t.observer != nil {
		t.observer.ObserveTransition(event.String(), outcome, time.Since(started))
	}
	if t.logger == nil {
		return
	}

	attrs := []any{
		slog.String("delivery_id", deliveryID.String()),
		slog.String("event", event.String()),
		slog.String("outcome", outcome),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	if err != nil && outcome == "error" {
		t.logger.ErrorContext(ctx, "transition failed", attrs...)
		return
	}
	if err == nil && res.Changed() {
		attrs = append(attrs, slog.String("from", res.From.String()), slog.String("to", res.To.String()))
	}
	t.logger.InfoContext(ctx, "transition handled", attrs...)
}
