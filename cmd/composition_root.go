package cmd

import (
	"log/slog"

	httpin "marketplace/internal/adapters/in/http"
	"marketplace/internal/adapters/out/postgres"
	"marketplace/internal/adapters/out/postgres/invoicerepo"
	"marketplace/internal/core/application/sideeffects"
	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/ports"
	"marketplace/internal/jobs"
	"marketplace/internal/metrics"

	"gorm.io/gorm"
)

// CompositionRoot builds the handlers, the HTTP server and the jobs from
// shared infrastructure.
type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	metrics    *metrics.Metrics
	dispatcher *sideeffects.Dispatcher
	logger     *slog.Logger
}

// NewCompositionRoot wires the use cases to Postgres, the notification sink
// and the metrics registry.
func NewCompositionRoot(config Config, gormDB *gorm.DB, notifications ports.NotificationSink, logger *slog.Logger) (CompositionRoot, error) {
	c := CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		metrics:    metrics.New(),
		logger:     logger,
	}

	settings := sideeffects.DefaultSettings()
	settings.MaxAttempts = config.OutboxMaxAttempts
	settings.BatchSize = config.OutboxBatchSize

	var f sideeffects.OutboxUoWFactory = FuncOutboxUoWFactory(func() sideeffects.OutboxUoW {
		return c.uowFactory.Create()
	})
	dispatcher, err := sideeffects.NewDispatcher(
		f,
		notifications,
		invoicerepo.NewGormInvoiceTrigger(gormDB),
		c.metrics,
		logger,
		settings,
	)
	if err != nil {
		return CompositionRoot{}, err
	}
	c.dispatcher = dispatcher

	return c, nil
}

// Metrics returns the registry shared by the handlers and the router.
func (c *CompositionRoot) Metrics() *metrics.Metrics {
	return c.metrics
}

func (c *CompositionRoot) commandUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

// CreateRequestTransitionCommandHandler creates the transition handler.
func (c *CompositionRoot) CreateRequestTransitionCommandHandler() commands.RequestTransitionCommandHandler {
	return commands.NewRequestTransitionCommandHandler(c.commandUoWFactory(), c.dispatcher, c.metrics, c.logger)
}

// CreateClaimPostingCommandHandler creates the claim handler.
func (c *CompositionRoot) CreateClaimPostingCommandHandler() commands.ClaimPostingCommandHandler {
	return commands.NewClaimPostingCommandHandler(c.commandUoWFactory(), c.dispatcher, c.metrics, c.logger)
}

// CreateOpenDeliveryCommandHandler creates the open delivery handler.
func (c *CompositionRoot) CreateOpenDeliveryCommandHandler() commands.OpenDeliveryCommandHandler {
	return commands.NewOpenDeliveryCommandHandler(c.commandUoWFactory())
}

// CreateCreatePostingCommandHandler creates the create posting handler.
func (c *CompositionRoot) CreateCreatePostingCommandHandler() commands.CreatePostingCommandHandler {
	return commands.NewCreatePostingCommandHandler(c.commandUoWFactory())
}

// CreateDispatchOutboxCommandHandler creates the handler run by the outbox jobs.
func (c *CompositionRoot) CreateDispatchOutboxCommandHandler() commands.DispatchOutboxCommandHandler {
	return commands.NewDispatchOutboxCommandHandler(c.dispatcher)
}

// CreateGetDeliveryQueryHandler creates the delivery query handler.
func (c *CompositionRoot) CreateGetDeliveryQueryHandler() queries.GetDeliveryQueryHandler {
	return queries.NewGetDeliveryQueryHandler(c.gormDB)
}

// CreateGetDeliveryHistoryQueryHandler creates the history query handler.
func (c *CompositionRoot) CreateGetDeliveryHistoryQueryHandler() queries.GetDeliveryHistoryQueryHandler {
	return queries.NewGetDeliveryHistoryQueryHandler(c.gormDB)
}

// CreateGetAvailableDeliveriesQueryHandler creates the available deliveries query handler.
func (c *CompositionRoot) CreateGetAvailableDeliveriesQueryHandler() queries.GetAvailableDeliveriesQueryHandler {
	return queries.NewGetAvailableDeliveriesQueryHandler(c.gormDB)
}

// CreateGetActivePostingsQueryHandler creates the active postings query handler.
func (c *CompositionRoot) CreateGetActivePostingsQueryHandler() queries.GetActivePostingsQueryHandler {
	return queries.NewGetActivePostingsQueryHandler(c.gormDB)
}

// CreateHTTPServer creates the server implementing the OpenAPI interface.
func (c *CompositionRoot) CreateHTTPServer() (*httpin.Server, error) {
	return httpin.NewServer(httpin.Handlers{
		RequestTransition:  c.CreateRequestTransitionCommandHandler(),
		ClaimPosting:       c.CreateClaimPostingCommandHandler(),
		OpenDelivery:       c.CreateOpenDeliveryCommandHandler(),
		CreatePosting:      c.CreateCreatePostingCommandHandler(),
		GetDelivery:        c.CreateGetDeliveryQueryHandler(),
		GetDeliveryHistory: c.CreateGetDeliveryHistoryQueryHandler(),
		GetAvailable:       c.CreateGetAvailableDeliveriesQueryHandler(),
		GetActivePostings:  c.CreateGetActivePostingsQueryHandler(),
	}, c.logger)
}

// CreateJobManager builds the outbox retry job and, when enabled, the
// LISTEN/NOTIFY listener.
func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	handler := c.CreateDispatchOutboxCommandHandler()
	background := []jobs.Job{
		jobs.NewOutboxRetryJob(handler, c.config.OutboxRetrySchedule, c.logger),
	}

	if c.config.OutboxListen {
		listener, err := jobs.NewPostgresOutboxListener(c.config.DSN(), handler, c.logger)
		if err != nil {
			return nil, err
		}
		background = append(background, listener)
	}

	return jobs.NewJobManager(background...), nil
}

// FuncUoWFactory adapts a function to commands.UoWFactory.
type FuncUoWFactory func() commands.UoW

// Create calls f.
func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

// FuncOutboxUoWFactory adapts a function to sideeffects.OutboxUoWFactory.
type FuncOutboxUoWFactory func() sideeffects.OutboxUoW

// Create calls f.
func (f FuncOutboxUoWFactory) Create() sideeffects.OutboxUoW {
	return f()
}
