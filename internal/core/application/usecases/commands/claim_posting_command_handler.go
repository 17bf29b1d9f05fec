package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"marketplace/internal/core/domain/model/delivery"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"
)

// ClaimPostingCommandHandler runs the accept transition for a posting instead
// of a delivery. Creating the delivery and accepting it happen in one
// transaction, under the posting row lock, so two couriers claiming the same
// posting cannot both win.
type ClaimPostingCommandHandler struct {
	uowFactory UoWFactory
	engine     services.LifecycleEngine
	dispatcher ports.SideEffectDispatcher
	telemetry  transitionTelemetry
	now        func() time.Time
}

// NewClaimPostingCommandHandler creates the handler. dispatcher, observer and
// logger may be nil.
func NewClaimPostingCommandHandler(
	uowFactory UoWFactory,
	dispatcher ports.SideEffectDispatcher,
	observer ports.TransitionObserver,
	logger *slog.Logger,
) ClaimPostingCommandHandler {
	return ClaimPostingCommandHandler{
		uowFactory: uowFactory,
		engine:     services.NewLifecycleEngine(),
		dispatcher: dispatcher,
		telemetry:  transitionTelemetry{logger: componentLogger(logger, "claim-posting"), observer: observer},
		now:        time.Now,
	}
}

// Handle opens a delivery for the posting when it has none and accepts it for
// the courier. Claiming a posting that is no longer active and has no open
// delivery is an errs.ObjectConflictError.
func (h ClaimPostingCommandHandler) Handle(ctx context.Context, command ClaimPostingCommand) (TransitionResult, error) {
	if err := command.Validate(); err != nil {
		return TransitionResult{}, err
	}

	started := time.Now()
	result, outcome, err := h.apply(ctx, command)
	deliveryID := command.DeliveryID()
	if result.Delivery != nil {
		deliveryID = result.Delivery.ID()
	}
	h.telemetry.record(ctx, delivery.EventAccept, deliveryID, started, result.Result, err)
	if err != nil {
		return TransitionResult{}, err
	}

	result.SideEffects = dispatchAfterCommit(ctx, h.dispatcher, outcome)
	return result, nil
}

func (h ClaimPostingCommandHandler) apply(ctx context.Context, command ClaimPostingCommand) (TransitionResult, services.Outcome, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return TransitionResult{}, services.Outcome{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	deliveryRepo := uow.DeliveryRepository()
	now := h.now().UTC()

	p, err := uow.PostingRepository().GetForUpdate(ctx, command.PostingID())
	if err != nil {
		return TransitionResult{}, services.Outcome{}, err
	}

	d, err := deliveryRepo.FindOpenByPosting(ctx, p.ID())
	if err != nil {
		return TransitionResult{}, services.Outcome{}, err
	}

	if d == nil {
		if !p.IsActive() {
			return TransitionResult{}, services.Outcome{}, errs.NewObjectConflictErrorWithCause("posting", p.ID(),
				fmt.Errorf("%s posting cannot be claimed", p.Status()))
		}
		if d, err = delivery.NewDelivery(command.DeliveryID(), p.ID(), now); err != nil {
			return TransitionResult{}, services.Outcome{}, err
		}
		if err = deliveryRepo.Add(ctx, d); err != nil {
			return TransitionResult{}, services.Outcome{}, err
		}
	} else if d, err = deliveryRepo.GetForUpdate(ctx, d.ID()); err != nil {
		return TransitionResult{}, services.Outcome{}, err
	}

	request := delivery.Request{Event: delivery.EventAccept, Actor: command.Courier()}
	outcome, err := h.engine.Transition(d, p, request, now)
	if err != nil {
		return TransitionResult{Delivery: d}, services.Outcome{}, err
	}

	if err = persistOutcome(ctx, uow, d, outcome); err != nil {
		return TransitionResult{}, services.Outcome{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return TransitionResult{}, services.Outcome{}, err
	}

	return TransitionResult{Delivery: d, Result: outcome.Result}, outcome, nil
}
