// Package jobs provides the background tasks that drive the transactional outbox.
//
// # Available Jobs
//
// 1. OutboxRetryJob - cron job (github.com/robfig/cron/v3, six-field schedule with
// seconds) that dispatches every due outbox message. Overlapping runs are skipped.
// 2. OutboxListener - LISTEN on the outbox_messages Postgres channel
// (github.com/lib/pq); each NOTIFY issued by a committing transition wakes the
// dispatcher without waiting for the next retry pass.
//
// # Usage
//
//	retry := jobs.NewOutboxRetryJob(dispatchHandler, cfg.OutboxRetrySchedule, logger)
//	listener, err := jobs.NewPostgresOutboxListener(dsn, dispatchHandler, logger)
//	if err != nil {
//		return err
//	}
//
//	jobManager := jobs.NewJobManager(retry, listener)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Dispatch failures are recorded on the outbox rows by the dispatcher; the jobs
// only log handler errors. Failed job starts stop any already running jobs.
package jobs
