package commands

import (
	"context"

	"marketplace/internal/core/ports"
)

// DispatchOutboxCommandHandler is driven by the retry job and the outbox listener.
type DispatchOutboxCommandHandler struct {
	dispatcher ports.SideEffectDispatcher
}

// NewDispatchOutboxCommandHandler creates the handler.
func NewDispatchOutboxCommandHandler(dispatcher ports.SideEffectDispatcher) DispatchOutboxCommandHandler {
	return DispatchOutboxCommandHandler{
		dispatcher: dispatcher,
	}
}

// Handle runs one dispatch pass over the due outbox messages.
func (h DispatchOutboxCommandHandler) Handle(ctx context.Context, command DispatchOutboxCommand) (ports.DispatchReport, error) {
	if err := command.Validate(); err != nil {
		return ports.DispatchReport{}, err
	}
	if err := ctx.Err(); err != nil {
		return ports.DispatchReport{}, err
	}

	return h.dispatcher.DispatchDue(ctx), nil
}
