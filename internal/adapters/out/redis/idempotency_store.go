package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "marketplace:idempotency:"

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

type entry struct {
	State       string `json:"state"`
	Fingerprint string `json:"fingerprint"`
	StatusCode  int    `json:"status_code,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

const (
	statePending = "pending"
	stateDone    = "done"
)

// IdempotencyStore implements ports.IdempotencyStore on Redis.
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates a store using client.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Reserve claims key for a request with fingerprint. It returns the stored
// response when the key was already completed by an identical request.
func (s *IdempotencyStore) Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (*ports.StoredResponse, error) {
	pending, err := json.Marshal(entry{State: statePending, Fingerprint: fingerprint})
	if err != nil {
		return nil, err
	}

	reserved, err := s.client.SetNX(ctx, keyPrefix+key, pending, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if reserved {
		return nil, nil
	}

	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET.
		return s.Reserve(ctx, key, fingerprint, ttl)
	}
	if err != nil {
		return nil, fmt.Errorf("read idempotency key: %w", err)
	}

	var existing entry
	if err := json.Unmarshal(raw, &existing); err != nil {
		return nil, fmt.Errorf("decode idempotency key: %w", err)
	}

	switch {
	case existing.Fingerprint != fingerprint:
		return nil, ports.ErrIdempotencyKeyReused
	case existing.State != stateDone:
		return nil, ports.ErrIdempotencyKeyInFlight
	default:
		return &ports.StoredResponse{
			StatusCode:  existing.StatusCode,
			ContentType: existing.ContentType,
			Body:        existing.Body,
		}, nil
	}
}

// Complete stores the response of a reserved key for ttl.
func (s *IdempotencyStore) Complete(ctx context.Context, key, fingerprint string, response ports.StoredResponse, ttl time.Duration) error {
	done, err := json.Marshal(entry{
		State:       stateDone,
		Fingerprint: fingerprint,
		StatusCode:  response.StatusCode,
		ContentType: response.ContentType,
		Body:        response.Body,
	})
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, keyPrefix+key, done, ttl).Err(); err != nil {
		return fmt.Errorf("store idempotent response: %w", err)
	}
	return nil
}

// Release drops a reservation so the key can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}
