package commands

import (
	"context"
	"log/slog"
	"time"

	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"
)

// RequestTransitionCommandHandler runs a lifecycle transition.
//
// The delivery is first read without a lock to learn its posting, then the
// posting row and the delivery row are locked in that order. Everything the
// engine produced is written in the same transaction; the side-effect intents
// are dispatched after commit and their failures never reach the caller.
//
//	result, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrObjectNotFound):
//	case errors.Is(err, delivery.ErrInvalidTransition):
//	case errors.Is(err, delivery.ErrForbidden):
//	case errs.IsValidationError(err):
//	}
type RequestTransitionCommandHandler struct {
	uowFactory UoWFactory
	engine     services.LifecycleEngine
	dispatcher ports.SideEffectDispatcher
	telemetry  transitionTelemetry
	now        func() time.Time
}

// NewRequestTransitionCommandHandler creates the handler. dispatcher, observer
// and logger may be nil.
//
// Example:
//
// 	handler := commands.NewRequestTransitionCommandHandler(uowFactory, dispatcher, metrics, logger)
// 	result, err := handler.Handle(ctx, cmd)
func NewRequestTransitionCommandHandler(
	uowFactory UoWFactory,
	dispatcher ports.SideEffectDispatcher,
	observer ports.TransitionObserver,
	logger *slog.Logger,
) RequestTransitionCommandHandler {
	return RequestTransitionCommandHandler{
		uowFactory: uowFactory,
		engine:     services.NewLifecycleEngine(),
		dispatcher: dispatcher,
		telemetry:  transitionTelemetry{logger: componentLogger(logger, "request-transition"), observer: observer},
		now:        time.Now,
	}
}

// Handle locks the posting and then the delivery, runs the lifecycle engine and
// persists the outcome in one transaction. Side effects are dispatched after
// the commit; failures there are left to the outbox retry job.
func (h RequestTransitionCommandHandler) Handle(ctx context.Context, command RequestTransitionCommand) (TransitionResult, error) {
	if err := command.Validate(); err != nil {
		return TransitionResult{}, err
	}

	started := time.Now()
	result, outcome, err := h.apply(ctx, command)
	h.telemetry.record(ctx, command.Event(), command.DeliveryID(), started, result.Result, err)
	if err != nil {
		return TransitionResult{}, err
	}

	result.SideEffects = dispatchAfterCommit(ctx, h.dispatcher, outcome)
	return result, nil
}

func (h RequestTransitionCommandHandler) apply(ctx context.Context, command RequestTransitionCommand) (TransitionResult, services.Outcome, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return TransitionResult{}, services.Outcome{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	deliveryRepo := uow.DeliveryRepository()
	postingRepo := uow.PostingRepository()

	current, err := deliveryRepo.Get(ctx, command.DeliveryID())
	if err != nil {
		return TransitionResult{}, services.Outcome{}, err
	}

	p, err := postingRepo.GetForUpdate(ctx, current.PostingID())
	if err != nil {
		return TransitionResult{}, services.Outcome{}, err
	}

	d, err := deliveryRepo.GetForUpdate(ctx, command.DeliveryID())
	if err != nil {
		return TransitionResult{}, services.Outcome{}, err
	}

	outcome, err := h.engine.Transition(d, p, command.Request(), h.now().UTC())
	if err != nil {
		return TransitionResult{}, services.Outcome{}, err
	}

	if err = persistOutcome(ctx, uow, d, outcome); err != nil {
		return TransitionResult{}, services.Outcome{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return TransitionResult{}, services.Outcome{}, err
	}

	return TransitionResult{Delivery: d, Result: outcome.Result}, outcome, nil
}
