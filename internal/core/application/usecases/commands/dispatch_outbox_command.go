package commands

import (
	"errors"

	"marketplace/internal/pkg/guard"
)

var ErrDispatchOutboxCommandIsNotConstructed = errors.New(
	"DispatchOutboxCommand must be created via NewDispatchOutboxCommand constructor",
)

// DispatchOutboxCommand retries every side-effect intent whose next attempt is due.
type DispatchOutboxCommand struct {
	guard guard.ConstructorGuard
}

// NewDispatchOutboxCommand creates the command run by the retry job and the listener.
func NewDispatchOutboxCommand() DispatchOutboxCommand {
	return DispatchOutboxCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate reports whether the command was built by NewDispatchOutboxCommand.
func (c DispatchOutboxCommand) Validate() error {
	return c.guard.Validate(ErrDispatchOutboxCommandIsNotConstructed)
}
