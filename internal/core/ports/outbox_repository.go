package ports

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/outbox"
)

// OutboxRepository stores side-effect intents next to the state change that produced them.
type OutboxRepository interface {
	// Add stores messages. A message whose dedupe key already exists is skipped.
	Add(ctx context.Context, messages ...*outbox.Message) error

	// ClaimDue locks up to limit pending messages due at now, skipping rows
	// locked by other dispatchers, and pushes their next attempt to now+lease
	// so a crashed dispatcher does not hold them forever.
	ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]*outbox.Message, error)

	// ClaimByIDs is ClaimDue restricted to the given messages.
	ClaimByIDs(ctx context.Context, ids []kernel.UUID, now time.Time, lease time.Duration) ([]*outbox.Message, error)

	// Save persists the dispatch state of a message.
	Save(ctx context.Context, message *outbox.Message) error
}
