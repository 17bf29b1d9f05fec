// Package commands contains the operations that modify marketplace state.
// Every handler follows the same shape: validate the command, open a unit of
// work, lock what it changes (posting row, then delivery row), persist, commit,
// and only then dispatch side effects best-effort.
package commands

import (
	"context"

	"marketplace/internal/core/ports"
)

type (
	// TxManager handles the database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	DeliveryRepoFactory interface {
		DeliveryRepository() ports.DeliveryRepository
	}

	PostingRepoFactory interface {
		PostingRepository() ports.PostingRepository
	}

	OutboxRepoFactory interface {
		OutboxRepository() ports.OutboxRepository
	}

	// UoW spans postings, deliveries and the outbox so a transition, its
	// posting effect and its intents commit or roll back together.
	//
	//   uow := factory.Create()
	//   if err := uow.Begin(ctx); err != nil { ... }
	//   defer func() { _ = uow.Rollback(ctx) }()
	//   posting, _ := uow.PostingRepository().GetForUpdate(ctx, postingID)
	//   delivery, _ := uow.DeliveryRepository().GetForUpdate(ctx, deliveryID)
	//   // ... apply and persist
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		DeliveryRepoFactory
		PostingRepoFactory
		OutboxRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}
)
