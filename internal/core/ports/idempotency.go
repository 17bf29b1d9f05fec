package ports

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrIdempotencyKeyInFlight is returned while the first request with a key is still running.
	ErrIdempotencyKeyInFlight = errors.New("idempotency key is in flight")
	// ErrIdempotencyKeyReused is returned when a key is replayed with another request body.
	ErrIdempotencyKeyReused = errors.New("idempotency key was used with a different request")
)

// StoredResponse is a completed response kept for replays of the same request.
type StoredResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// IdempotencyStore remembers responses by Idempotency-Key.
type IdempotencyStore interface {
	// Reserve claims key for a request with the given fingerprint. It returns
	// the stored response when the same request already completed, nil when
	// the caller now owns the key, ErrIdempotencyKeyInFlight or ErrIdempotencyKeyReused.
	Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (*StoredResponse, error)

	// Complete stores the response of the request that reserved key.
	Complete(ctx context.Context, key, fingerprint string, response StoredResponse, ttl time.Duration) error

	// Release forgets a reservation so the request can be retried.
	Release(ctx context.Context, key string) error
}
