package delivery

import (
	"fmt"
	"strings"

	"marketplace/internal/pkg/errs"
)

// Status is the lifecycle state of a delivery. The regular path is
//
//	pending -> accepted -> in_progress -> delivered -> completed
//
// with two detours: an admin refusal sends a delivered delivery back to
// in_progress, and any status before delivered can be cancelled.
// Completed and Cancelled are terminal.
type Status int

const (
	// Unknown helps catch uninitialized Status values.
	Unknown Status = iota
	Pending
	Accepted
	InProgress
	Delivered
	Completed
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "unknown",
		Pending:    "pending",
		Accepted:   "accepted",
		InProgress: "in_progress",
		Delivered:  "delivered",
		Completed:  "completed",
		Cancelled:  "cancelled",
	}
}

// ParseStatus converts the persisted or wire representation into a Status.
func ParseStatus(s string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for status, str := range getStatusStrings() {
		if status != Unknown && str == normalized {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid delivery status", s))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid delivery status", s))
	}
	return nil
}

// String returns the wire name of the status.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the status accepts no further event.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled
}

// RequiresCourier reports whether a delivery in this status must have a courier.
func (s Status) RequiresCourier() bool {
	switch s {
	case Accepted, InProgress, Delivered, Completed:
		return true
	default:
		return false
	}
}

// Statuses lists every valid status in lifecycle order.
func Statuses() []Status {
	return []Status{Pending, Accepted, InProgress, Delivered, Completed, Cancelled}
}
