package http_test

import (
	"context"
	"time"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/model/delivery"
	"marketplace/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockTransitionRequester struct{ mock.Mock }

func (m *MockTransitionRequester) Handle(ctx context.Context, command commands.RequestTransitionCommand) (commands.TransitionResult, error) {
	args := m.Called(ctx, command)
	return args.Get(0).(commands.TransitionResult), args.Error(1)
}

type MockPostingClaimer struct{ mock.Mock }

func (m *MockPostingClaimer) Handle(ctx context.Context, command commands.ClaimPostingCommand) (commands.TransitionResult, error) {
	args := m.Called(ctx, command)
	return args.Get(0).(commands.TransitionResult), args.Error(1)
}

type MockDeliveryOpener struct{ mock.Mock }

func (m *MockDeliveryOpener) Handle(ctx context.Context, command commands.OpenDeliveryCommand) (*delivery.Delivery, error) {
	args := m.Called(ctx, command)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Delivery), args.Error(1)
}

type MockPostingCreator struct{ mock.Mock }

func (m *MockPostingCreator) Handle(ctx context.Context, command commands.CreatePostingCommand) (commands.CreatePostingResult, error) {
	args := m.Called(ctx, command)
	return args.Get(0).(commands.CreatePostingResult), args.Error(1)
}

type MockDeliveryReader struct{ mock.Mock }

func (m *MockDeliveryReader) Handle(ctx context.Context, query queries.GetDeliveryQuery) (queries.GetDeliveryQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.GetDeliveryQueryResponse), args.Error(1)
}

type MockHistoryReader struct{ mock.Mock }

func (m *MockHistoryReader) Handle(ctx context.Context, query queries.GetDeliveryHistoryQuery) ([]queries.GetDeliveryHistoryQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]queries.GetDeliveryHistoryQueryResponse), args.Error(1)
}

type MockAvailableDeliveriesReader struct{ mock.Mock }

func (m *MockAvailableDeliveriesReader) Handle(ctx context.Context, query queries.GetAvailableDeliveriesQuery) ([]queries.GetAvailableDeliveriesQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]queries.GetAvailableDeliveriesQueryResponse), args.Error(1)
}

type MockActivePostingsReader struct{ mock.Mock }

func (m *MockActivePostingsReader) Handle(ctx context.Context, query queries.GetActivePostingsQuery) ([]queries.GetActivePostingsQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]queries.GetActivePostingsQueryResponse), args.Error(1)
}

type MockIdempotencyStore struct{ mock.Mock }

func (m *MockIdempotencyStore) Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (*ports.StoredResponse, error) {
	args := m.Called(ctx, key, fingerprint, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.StoredResponse), args.Error(1)
}

func (m *MockIdempotencyStore) Complete(ctx context.Context, key, fingerprint string, response ports.StoredResponse, ttl time.Duration) error {
	args := m.Called(ctx, key, fingerprint, response, ttl)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockRequestObserver struct{ mock.Mock }

func (m *MockRequestObserver) ObserveHTTPRequest(handler, method string, status int) {
	m.Called(handler, method, status)
}
