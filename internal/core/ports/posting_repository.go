package ports

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/posting"
)

// PostingRepository is the Posting Store. Only it writes posting rows.
type PostingRepository interface {
	// Add persists a new posting.
	Add(ctx context.Context, aggregate *posting.Posting) error

	// Get returns errs.ObjectNotFoundError for an unknown posting.
	Get(ctx context.Context, id kernel.UUID) (*posting.Posting, error)

	// GetForUpdate reads a posting and locks its row until the transaction ends.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*posting.Posting, error)

	// SetStatus moves the posting from expected to next and fails with
	// errs.ObjectConflictError when the stored status is not expected.
	SetStatus(ctx context.Context, id kernel.UUID, expected, next posting.Status) error
}
