package kernel

import (
	"errors"
	"fmt"
	"strings"

	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

// ErrActorIsNotConstructed is returned when an Actor literal bypassed NewActor.
var ErrActorIsNotConstructed = errors.New("Actor must be created via NewActor")

// Role is the marketplace role an actor acts under. Roles are asserted by the
// caller; the domain only checks them against transition guards.
type Role int

const (
	// RoleUnknown catches uninitialized roles.
	RoleUnknown Role = iota
	RoleClient
	RoleCourier
	RoleProvider
	RoleAdmin
)

func getRoleStrings() map[Role]string {
	return map[Role]string{
		RoleUnknown:  "unknown",
		RoleClient:   "client",
		RoleCourier:  "courier",
		RoleProvider: "provider",
		RoleAdmin:    "admin",
	}
}

// ParseRole converts the wire representation ("client", "courier", "provider",
// "admin") into a Role. Matching is case-insensitive.
func ParseRole(s string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for role, str := range getRoleStrings() {
		if role != RoleUnknown && str == normalized {
			return role, nil
		}
	}
	return RoleUnknown, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", s))
}

// String returns the wire name of the role.
func (r Role) String() string {
	if str, ok := getRoleStrings()[r]; ok {
		return str
	}
	return "unknown"
}

// Validate rejects RoleUnknown and out-of-range values.
func (r Role) Validate() error {
	if r <= RoleUnknown || r > RoleAdmin {
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%d is not a valid role", r))
	}
	return nil
}

// Actor is the identity a command is issued on behalf of. It is passed
// explicitly into every operation and never read from ambient state.
type Actor struct {
	id    UUID
	role  Role
	guard guard.ConstructorGuard
}

// NewActor validates the identifier and role.
func NewActor(id UUID, role Role) (Actor, error) {
	if err := errors.Join(id.Validate(), role.Validate()); err != nil {
		return Actor{}, err
	}
	return Actor{id: id, role: role, guard: guard.NewConstructorGuard()}, nil
}

// MustNewActor is NewActor for fixtures and tests.
func MustNewActor(id UUID, role Role) Actor {
	actor, err := NewActor(id, role)
	if err != nil {
		panic(err)
	}
	return actor
}

// ID returns the actor identifier.
func (a Actor) ID() UUID {
	return a.id
}

// Role returns the role the actor acts in.
func (a Actor) Role() Role {
	return a.role
}

// IsAdmin reports whether the actor is an admin.
func (a Actor) IsAdmin() bool {
	return a.role == RoleAdmin
}

// IsCourier reports whether the actor is a courier.
func (a Actor) IsCourier() bool {
	return a.role == RoleCourier
}

// Is reports whether the actor carries the given identifier.
func (a Actor) Is(id UUID) bool {
	return a.id.IsEqual(id)
}

// Validate returns ErrActorIsNotConstructed for a zero Actor.
func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}

// String formats the actor as role:id for logs and errors.
func (a Actor) String() string {
	return a.role.String() + ":" + a.id.String()
}
