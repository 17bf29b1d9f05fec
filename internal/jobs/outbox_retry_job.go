package jobs

import (
	"context"
	"log/slog"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// DefaultRetrySchedule runs the retry pass every ten seconds.
const DefaultRetrySchedule = "*/10 * * * * *"

// OutboxDispatchHandler dispatches every outbox message that is due.
type OutboxDispatchHandler interface {
	Handle(ctx context.Context, command commands.DispatchOutboxCommand) (ports.DispatchReport, error)
}

// OutboxRetryJob periodically dispatches side effects whose inline dispatch
// failed or never ran. Overlapping runs are skipped.
type OutboxRetryJob struct {
	handler  OutboxDispatchHandler
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewOutboxRetryJob creates the retry job. An empty schedule falls back to
// DefaultRetrySchedule; schedules use the six-field format with seconds.
func NewOutboxRetryJob(handler OutboxDispatchHandler, schedule string, logger *slog.Logger) *OutboxRetryJob {
	if schedule == "" {
		schedule = DefaultRetrySchedule
	}
	return &OutboxRetryJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "outbox_retry_job"),
	}
}

// Start schedules the job.
func (j *OutboxRetryJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.RunOnce(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Outbox retry job started", "schedule", j.schedule)
	return nil
}

// RunOnce performs a single retry pass.
func (j *OutboxRetryJob) RunOnce(ctx context.Context) ports.DispatchReport {
	report, err := j.handler.Handle(ctx, commands.NewDispatchOutboxCommand())
	if err != nil {
		j.logger.ErrorContext(ctx, "Outbox retry job failed", "error", err)
		return ports.DispatchReport{}
	}
	if report.Claimed > 0 {
		j.logger.InfoContext(ctx, "Outbox retry pass finished",
			"claimed", report.Claimed,
			"dispatched", report.Dispatched,
			"retried", report.Retried,
			"failed", report.Failed,
		)
	}
	return report
}

// Stop stops the job and waits for a running pass to finish.
func (j *OutboxRetryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Outbox retry job stopped")
}
