package commands_test

import (
	"context"
	"time"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/domain/model/delivery"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/outbox"
	"marketplace/internal/core/domain/model/posting"
	"marketplace/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockDeliveryRepository struct{ mock.Mock }

func (m *MockDeliveryRepository) Add(ctx context.Context, d *delivery.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliveryRepository) Update(ctx context.Context, d *delivery.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) FindOpenByPosting(ctx context.Context, postingID kernel.UUID) (*delivery.Delivery, error) {
	args := m.Called(ctx, postingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) AddRefusal(ctx context.Context, refusal delivery.Refusal) (bool, error) {
	args := m.Called(ctx, refusal)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeliveryRepository) AddTransition(ctx context.Context, record delivery.TransitionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

type MockPostingRepository struct{ mock.Mock }

func (m *MockPostingRepository) Add(ctx context.Context, p *posting.Posting) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPostingRepository) Get(ctx context.Context, id kernel.UUID) (*posting.Posting, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*posting.Posting), args.Error(1)
}

func (m *MockPostingRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*posting.Posting, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*posting.Posting), args.Error(1)
}

func (m *MockPostingRepository) SetStatus(ctx context.Context, id kernel.UUID, expected, next posting.Status) error {
	args := m.Called(ctx, id, expected, next)
	return args.Error(0)
}

type MockOutboxRepository struct{ mock.Mock }

func (m *MockOutboxRepository) Add(ctx context.Context, messages ...*outbox.Message) error {
	args := m.Called(ctx, messages)
	return args.Error(0)
}

func (m *MockOutboxRepository) ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, now, lease, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) ClaimByIDs(ctx context.Context, ids []kernel.UUID, now time.Time, lease time.Duration) ([]*outbox.Message, error) {
	args := m.Called(ctx, ids, now, lease)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) Save(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) DeliveryRepository() ports.DeliveryRepository {
	args := m.Called()
	return args.Get(0).(ports.DeliveryRepository)
}

func (m *MockUoW) PostingRepository() ports.PostingRepository {
	args := m.Called()
	return args.Get(0).(ports.PostingRepository)
}

func (m *MockUoW) OutboxRepository() ports.OutboxRepository {
	args := m.Called()
	return args.Get(0).(ports.OutboxRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockDispatcher struct{ mock.Mock }

func (m *MockDispatcher) DispatchMessages(ctx context.Context, ids []kernel.UUID) ports.DispatchReport {
	args := m.Called(ctx, ids)
	return args.Get(0).(ports.DispatchReport)
}

func (m *MockDispatcher) DispatchDue(ctx context.Context) ports.DispatchReport {
	args := m.Called(ctx)
	return args.Get(0).(ports.DispatchReport)
}

type MockTransitionObserver struct{ mock.Mock }

func (m *MockTransitionObserver) ObserveTransition(event, outcome string, elapsed time.Duration) {
	m.Called(event, outcome, elapsed)
}

// env bundles the mocks every transition test needs. The repositories are
// returned by the unit of work as many times as the handler asks.
type env struct {
	deliveries *MockDeliveryRepository
	postings   *MockPostingRepository
	outbox     *MockOutboxRepository
	uow        *MockUoW
	factory    *MockUoWFactory
	dispatcher *MockDispatcher
	observer   *MockTransitionObserver
}

func newEnv() env {
	e := env{
		deliveries: new(MockDeliveryRepository),
		postings:   new(MockPostingRepository),
		outbox:     new(MockOutboxRepository),
		uow:        new(MockUoW),
		factory:    new(MockUoWFactory),
		dispatcher: new(MockDispatcher),
		observer:   new(MockTransitionObserver),
	}
	e.factory.On("Create").Return(e.uow).Once()
	e.uow.On("DeliveryRepository").Return(e.deliveries).Maybe()
	e.uow.On("PostingRepository").Return(e.postings).Maybe()
	e.uow.On("OutboxRepository").Return(e.outbox).Maybe()
	return e
}

func (e env) assertExpectations(t interface {
	mock.TestingT
	Helper()
}) {
	t.Helper()
	e.deliveries.AssertExpectations(t)
	e.postings.AssertExpectations(t)
	e.outbox.AssertExpectations(t)
	e.uow.AssertExpectations(t)
	e.factory.AssertExpectations(t)
	e.dispatcher.AssertExpectations(t)
	e.observer.AssertExpectations(t)
}
