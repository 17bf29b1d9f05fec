// Package guard provides the constructor guard embedded by commands, queries
// and value objects to detect zero-value construction.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard ensures a struct was initialized through its designated
// constructor. Embed it in a struct, set it with NewConstructorGuard inside the
// constructor and check it from the struct's Validate method:
//
//	var ErrTransitionCommandIsNotConstructed = errors.New("RequestTransitionCommand must be created via NewRequestTransitionCommand")
//
//	type RequestTransitionCommand struct {
//	    deliveryID kernel.UUID
//	    guard      guard.ConstructorGuard
//	}
//
//	func (c RequestTransitionCommand) Validate() error {
//	    return c.guard.Validate(ErrTransitionCommandIsNotConstructed)
//	}
//
// The zero value is "not constructed". The guard is immutable and safe to copy
// and to use from multiple goroutines.
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil when the guard was created by NewConstructorGuard and
// validationError otherwise. A nil validationError falls back to
// ErrDefaultConstructorGuard.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
