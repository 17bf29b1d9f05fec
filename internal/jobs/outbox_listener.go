package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"marketplace/internal/adapters/out/postgres/outboxrepo"
	"marketplace/internal/core/application/usecases/commands"

	"github.com/lib/pq"
)

const listenerPingInterval = 90 * time.Second

// NotificationSource is the part of *pq.Listener the outbox listener reads.
type NotificationSource interface {
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

// OutboxListener wakes the dispatcher when any replica commits outbox
// messages, so side effects do not wait for the next retry pass.
type OutboxListener struct {
	source  NotificationSource
	handler OutboxDispatchHandler
	logger  *slog.Logger

	cancel context.CancelFunc
	done   sync.WaitGroup
}

// NewPostgresOutboxListener subscribes to the outbox channel on dsn.
func NewPostgresOutboxListener(dsn string, handler OutboxDispatchHandler, logger *slog.Logger) (*OutboxListener, error) {
	logger = logger.With("component", "outbox_listener")
	listener := pq.NewListener(dsn, time.Second, time.Minute, func(event pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("Outbox listener connection event", "event", int(event), "error", err)
		}
	})
	if err := listener.Listen(outboxrepo.Channel); err != nil {
		_ = listener.Close()
		return nil, err
	}
	return NewOutboxListener(listener, handler, logger), nil
}

// NewOutboxListener creates a listener on an arbitrary notification source.
func NewOutboxListener(source NotificationSource, handler OutboxDispatchHandler, logger *slog.Logger) *OutboxListener {
	return &OutboxListener{
		source:  source,
		handler: handler,
		logger:  logger.With("component", "outbox_listener"),
	}
}

// Start runs the listen loop until Stop is called.
func (l *OutboxListener) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done.Add(1)
	go func() {
		defer l.done.Done()
		l.run(ctx)
	}()
	l.logger.InfoContext(ctx, "Outbox listener started", "channel", outboxrepo.Channel)
	return nil
}

func (l *OutboxListener) run(ctx context.Context) {
	notifications := l.source.NotificationChannel()
	ticker := time.NewTicker(listenerPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-notifications:
			if !ok {
				return
			}
			// A nil notification means the connection was re-established and
			// notifications may have been missed; dispatching due work covers both.
			drain(notifications)
			l.dispatch(ctx)
		case <-ticker.C:
			if err := l.source.Ping(); err != nil {
				l.logger.WarnContext(ctx, "Outbox listener ping failed", "error", err)
			}
		}
	}
}

func (l *OutboxListener) dispatch(ctx context.Context) {
	report, err := l.handler.Handle(ctx, commands.NewDispatchOutboxCommand())
	if err != nil {
		if ctx.Err() == nil {
			l.logger.ErrorContext(ctx, "Outbox dispatch after notification failed", "error", err)
		}
		return
	}
	l.logger.DebugContext(ctx, "Outbox dispatched after notification", "claimed", report.Claimed, "dispatched", report.Dispatched)
}

// drain coalesces notifications that arrived while the previous pass ran.
func drain(notifications <-chan *pq.Notification) {
	for {
		select {
		case <-notifications:
		default:
			return
		}
	}
}

// Stop ends the listen loop and closes the connection.
func (l *OutboxListener) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
	l.done.Wait()
	if err := l.source.Close(); err != nil {
		l.logger.Warn("Outbox listener close failed", "error", err)
	}
	l.logger.Info("Outbox listener stopped")
}
