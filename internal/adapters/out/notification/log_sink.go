package notification

import (
	"context"
	"log/slog"

	"marketplace/internal/core/domain/model/outbox"
	"marketplace/internal/core/ports"
)

var _ ports.NotificationSink = (*LogSink)(nil)

// LogSink writes notifications to the log. It is used when no broker is configured.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink writing to logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger.With("component", "notification-sink")}
}

// Notify logs n at INFO.
func (s *LogSink) Notify(ctx context.Context, n outbox.NotificationPayload) error {
	s.logger.InfoContext(ctx, "delivery status changed",
		slog.String("delivery_id", n.DeliveryID),
		slog.String("posting_id", n.PostingID),
		slog.String("old_status", n.OldStatus),
		slog.String("new_status", n.NewStatus),
		slog.String("event", n.Event),
		slog.String("actor_id", n.ActorID),
		slog.Time("occurred_at", n.OccurredAt),
	)
	return nil
}
