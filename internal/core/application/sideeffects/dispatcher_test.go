package sideeffects_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace/internal/core/application/sideeffects"
	"marketplace/internal/core/domain/model/delivery"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/outbox"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

func (m *MockUoW) Begin(ctx context.Context) error    { return m.Called(ctx).Error(0) }
func (m *MockUoW) Commit(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *MockUoW) Rollback(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockUoW) OutboxRepository() ports.OutboxRepository {
	return m.Called().Get(0).(ports.OutboxRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() sideeffects.OutboxUoW {
	return m.Called().Get(0).(sideeffects.OutboxUoW)
}

type MockNotificationSink struct{ mock.Mock }

func (m *MockNotificationSink) Notify(ctx context.Context, n outbox.NotificationPayload) error {
	return m.Called(ctx, n).Error(0)
}

type MockInvoiceTrigger struct{ mock.Mock }

func (m *MockInvoiceTrigger) RequestInvoice(ctx context.Context, deliveryID kernel.UUID) error {
	return m.Called(ctx, deliveryID).Error(0)
}

type MockDispatchObserver struct{ mock.Mock }

func (m *MockDispatchObserver) ObserveDispatch(kind, result string) {
	m.Called(kind, result)
}

type fixture struct {
	repo     *MockOutboxRepository
	uow      *MockUoW
	factory  *MockUoWFactory
	sink     *MockNotificationSink
	invoices *MockInvoiceTrigger
	observer *MockDispatchObserver
}

func newFixture() fixture {
	f := fixture{
		repo:     new(MockOutboxRepository),
		uow:      new(MockUoW),
		factory:  new(MockUoWFactory),
		sink:     new(MockNotificationSink),
		invoices: new(MockInvoiceTrigger),
		observer: new(MockDispatchObserver),
	}
	f.factory.On("Create").Return(f.uow)
	f.uow.On("OutboxRepository").Return(f.repo)
	f.uow.On("Begin", mock.Anything).Return(nil)
	f.uow.On("Commit", mock.Anything).Return(nil)
	f.uow.On("Rollback", mock.Anything).Return(nil)
	return f
}

func (f fixture) dispatcher(t *testing.T, settings sideeffects.Settings) *sideeffects.Dispatcher {
	t.Helper()
	d, err := sideeffects.NewDispatcher(f.factory, f.sink, f.invoices, f.observer, nil, settings)
	require.NoError(t, err)
	return d
}

func (f fixture) assertExpectations(t *testing.T) {
	f.repo.AssertExpectations(t)
	f.sink.AssertExpectations(t)
	f.invoices.AssertExpectations(t)
	f.observer.AssertExpectations(t)
}

func notification(t *testing.T) *outbox.Message {
	t.Helper()
	msg, err := outbox.NewNotification(delivery.StatusChanged{
		DeliveryID: kernel.NewUUID(),
		PostingID:  kernel.NewUUID(),
		OldStatus:  delivery.Pending,
		NewStatus:  delivery.Accepted,
		Event:      delivery.EventAccept,
		ActorID:    kernel.NewUUID(),
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	return msg
}

func invoice(t *testing.T, deliveryID kernel.UUID) *outbox.Message {
	t.Helper()
	msg, err := outbox.NewInvoiceRequest(deliveryID, time.Now())
	require.NoError(t, err)
	return msg
}

func TestNewDispatcher_Validation(t *testing.T) {
	f := newFixture()

	_, err := sideeffects.NewDispatcher(nil, f.sink, f.invoices, nil, nil, sideeffects.DefaultSettings())
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	bad := sideeffects.DefaultSettings()
	bad.MaxAttempts = 0
	_, err = sideeffects.NewDispatcher(f.factory, f.sink, f.invoices, nil, nil, bad)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	bad = sideeffects.DefaultSettings()
	bad.Lease = 0
	_, err = sideeffects.NewDispatcher(f.factory, f.sink, f.invoices, nil, nil, bad)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestDispatcher_DispatchMessages_Success(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	settings := sideeffects.DefaultSettings()
	deliveryID := kernel.NewUUID()
	n := notification(t)
	inv := invoice(t, deliveryID)
	ids := []kernel.UUID{n.ID(), inv.ID()}

	f.repo.On("ClaimByIDs", ctx, ids, mock.Anything, settings.Lease).Return([]*outbox.Message{n, inv}, nil).Once()
	f.sink.On("Notify", ctx, mock.MatchedBy(func(p outbox.NotificationPayload) bool {
		return p.NewStatus == "accepted" && p.Event == "accept"
	})).Return(nil).Once()
	f.invoices.On("RequestInvoice", ctx, deliveryID).Return(nil).Once()
	f.observer.On("ObserveDispatch", "notification", "dispatched").Once()
	f.observer.On("ObserveDispatch", "invoice", "dispatched").Once()
	f.repo.On("Save", ctx, n).Return(nil).Once()
	f.repo.On("Save", ctx, inv).Return(nil).Once()

	report := f.dispatcher(t, settings).DispatchMessages(ctx, ids)

	assert.Equal(t, ports.DispatchReport{Claimed: 2, Dispatched: 2}, report)
	assert.Equal(t, outbox.StatusDispatched, n.Status())
	assert.Equal(t, outbox.StatusDispatched, inv.Status())
	assert.Equal(t, 1, n.Attempts())
	assert.NotNil(t, inv.DispatchedAt())
	f.assertExpectations(t)
}

func TestDispatcher_DispatchMessages_NoIDs(t *testing.T) {
	f := newFixture()

	report := f.dispatcher(t, sideeffects.DefaultSettings()).DispatchMessages(t.Context(), nil)

	assert.Equal(t, ports.DispatchReport{}, report)
	f.factory.AssertNotCalled(t, "Create")
}

func TestDispatcher_DispatchDue_SinkFailureIsRetried(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	settings := sideeffects.DefaultSettings()
	n := notification(t)

	f.repo.On("ClaimDue", ctx, mock.Anything, settings.Lease, settings.BatchSize).Return([]*outbox.Message{n}, nil).Once()
	f.sink.On("Notify", ctx, mock.Anything).Return(errors.New("broker unavailable")).Once()
	f.observer.On("ObserveDispatch", "notification", "retry").Once()
	f.repo.On("Save", ctx, n).Return(nil).Once()

	before := time.Now()
	report := f.dispatcher(t, settings).DispatchDue(ctx)

	assert.Equal(t, ports.DispatchReport{Claimed: 1, Retried: 1}, report)
	assert.Equal(t, outbox.StatusPending, n.Status())
	assert.Equal(t, "broker unavailable", n.LastError())
	assert.True(t, n.NextAttemptAt().After(before))
	f.assertExpectations(t)
}

func TestDispatcher_DispatchDue_LastAttemptFails(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	settings := sideeffects.Settings{MaxAttempts: 1, BatchSize: 10, Lease: time.Second}
	inv := invoice(t, kernel.NewUUID())

	f.repo.On("ClaimDue", ctx, mock.Anything, settings.Lease, settings.BatchSize).Return([]*outbox.Message{inv}, nil).Once()
	f.invoices.On("RequestInvoice", ctx, mock.Anything).Return(errors.New("billing down")).Once()
	f.observer.On("ObserveDispatch", "invoice", "failed").Once()
	f.repo.On("Save", ctx, inv).Return(nil).Once()

	report := f.dispatcher(t, settings).DispatchDue(ctx)

	assert.Equal(t, ports.DispatchReport{Claimed: 1, Failed: 1}, report)
	assert.Equal(t, outbox.StatusFailed, inv.Status())
	f.assertExpectations(t)
}

func TestDispatcher_DispatchDue_UndecodablePayloadFailsImmediately(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	settings := sideeffects.DefaultSettings()
	broken, err := outbox.RestoreMessage(kernel.NewUUID(), outbox.KindInvoice, []byte(`{"delivery_id":"nope"}`),
		"invoice:nope", outbox.StatusPending, 0, "", time.Now(), time.Now(), nil)
	require.NoError(t, err)

	f.repo.On("ClaimDue", ctx, mock.Anything, settings.Lease, settings.BatchSize).Return([]*outbox.Message{broken}, nil).Once()
	f.observer.On("ObserveDispatch", "invoice", "failed").Once()
	f.repo.On("Save", ctx, broken).Return(nil).Once()

	report := f.dispatcher(t, settings).DispatchDue(ctx)

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, outbox.StatusFailed, broken.Status())
	f.invoices.AssertNotCalled(t, "RequestInvoice", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestDispatcher_DispatchDue_ClaimError(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	settings := sideeffects.DefaultSettings()

	f.repo.On("ClaimDue", ctx, mock.Anything, settings.Lease, settings.BatchSize).Return(nil, errors.New("db down")).Once()

	report := f.dispatcher(t, settings).DispatchDue(ctx)

	assert.Equal(t, ports.DispatchReport{}, report)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
	f.assertExpectations(t)
}

func TestDispatcher_DispatchDue_SaveErrorKeepsGoing(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	settings := sideeffects.DefaultSettings()
	first, second := notification(t), notification(t)

	f.repo.On("ClaimDue", ctx, mock.Anything, settings.Lease, settings.BatchSize).Return([]*outbox.Message{first, second}, nil).Once()
	f.sink.On("Notify", ctx, mock.Anything).Return(nil).Twice()
	f.observer.On("ObserveDispatch", "notification", "dispatched").Twice()
	f.repo.On("Save", ctx, first).Return(errors.New("write failed")).Once()
	f.repo.On("Save", ctx, second).Return(nil).Once()

	report := f.dispatcher(t, settings).DispatchDue(ctx)

	assert.Equal(t, ports.DispatchReport{Claimed: 2, Dispatched: 2}, report)
	f.assertExpectations(t)
}
