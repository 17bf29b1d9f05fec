package ports

import (
	"context"
)

// UnitOfWorkFactory creates a UnitOfWork per command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a business transaction boundary. Repositories returned by it
// use the transaction started by Begin.
type UnitOfWork interface {
	// Begin starts the transaction. Calling it again keeps the open one.
	Begin(ctx context.Context) error
	// Commit commits the open transaction.
	Commit(ctx context.Context) error
	// Rollback discards the open transaction. Handlers defer it after Begin
	// and ignore the error it returns once Commit has run.
	Rollback(ctx context.Context) error

	DeliveryRepository() DeliveryRepository
	PostingRepository() PostingRepository
	OutboxRepository() OutboxRepository
}
