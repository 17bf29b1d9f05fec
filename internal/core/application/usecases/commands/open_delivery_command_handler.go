package commands

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/delivery"
	"marketplace/internal/pkg/errs"
)

// OpenDeliveryCommandHandler creates a pending delivery for a posting. Only the
// posting owner or an admin may do so, and a posting has at most one open delivery.
type OpenDeliveryCommandHandler struct {
	uowFactory UoWFactory
	now        func() time.Time
}

// NewOpenDeliveryCommandHandler creates the handler.
func NewOpenDeliveryCommandHandler(uowFactory UoWFactory) OpenDeliveryCommandHandler {
	return OpenDeliveryCommandHandler{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// Handle opens a pending delivery for an active posting. Only the posting
// owner or an admin may open one, and a posting has at most one open delivery.
func (h OpenDeliveryCommandHandler) Handle(ctx context.Context, command OpenDeliveryCommand) (*delivery.Delivery, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	deliveryRepo := uow.DeliveryRepository()

	p, err := uow.PostingRepository().GetForUpdate(ctx, command.PostingID())
	if err != nil {
		return nil, err
	}

	actor := command.Actor()
	if !actor.IsAdmin() && !p.IsOwnedBy(actor.ID()) {
		return nil, delivery.NewForbiddenError("open delivery", actor, "only the posting owner or an admin can open a delivery")
	}

	if !p.IsActive() {
		return nil, errs.NewObjectConflictErrorWithCause("posting", p.ID(),
			fmt.Errorf("%s posting cannot get a new delivery", p.Status()))
	}

	open, err := deliveryRepo.FindOpenByPosting(ctx, p.ID())
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, errs.NewObjectConflictErrorWithCause("posting", p.ID(),
			fmt.Errorf("delivery %s is still open", open.ID()))
	}

	d, err := delivery.NewDelivery(command.DeliveryID(), p.ID(), h.now().UTC())
	if err != nil {
		return nil, err
	}

	if err = deliveryRepo.Add(ctx, d); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return d, nil
}
