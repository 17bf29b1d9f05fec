package commands

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/delivery"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/posting"
)

// CreatePostingResult carries the new posting and, when requested, its pending delivery.
type CreatePostingResult struct {
	Posting  *posting.Posting
	Delivery *delivery.Delivery
}

// CreatePostingCommandHandler lets clients, providers and admins publish postings.
type CreatePostingCommandHandler struct {
	uowFactory UoWFactory
	now        func() time.Time
}

// NewCreatePostingCommandHandler creates the handler.
func NewCreatePostingCommandHandler(uowFactory UoWFactory) CreatePostingCommandHandler {
	return CreatePostingCommandHandler{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// Handle stores the posting and, when requested, its first delivery in one
// transaction.
func (h CreatePostingCommandHandler) Handle(ctx context.Context, command CreatePostingCommand) (CreatePostingResult, error) {
	if err := command.Validate(); err != nil {
		return CreatePostingResult{}, err
	}

	actor := command.Actor()
	if actor.Role() == kernel.RoleCourier {
		return CreatePostingResult{}, delivery.NewForbiddenError("create posting", actor, "couriers cannot publish postings")
	}

	now := h.now().UTC()
	p, err := posting.NewPosting(command.PostingID(), actor.ID(), command.Details(), now)
	if err != nil {
		return CreatePostingResult{}, err
	}

	var d *delivery.Delivery
	if command.OpenDelivery() {
		d, err = delivery.NewDelivery(command.DeliveryID(), p.ID(), now)
		if err != nil {
			return CreatePostingResult{}, err
		}
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return CreatePostingResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.PostingRepository().Add(ctx, p); err != nil {
		return CreatePostingResult{}, err
	}

	if d != nil {
		if err = uow.DeliveryRepository().Add(ctx, d); err != nil {
			return CreatePostingResult{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return CreatePostingResult{}, err
	}

	return CreatePostingResult{Posting: p, Delivery: d}, nil
}
