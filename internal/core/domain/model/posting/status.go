package posting

import (
	"fmt"
	"strings"

	"marketplace/internal/pkg/errs"
)

// Status is the lifecycle state of a posting.
//
//	Active ──Reserve──> Assigned ──Complete──> Completed
//	   ^                   │
//	   └──────Release──────┘
//
// Canceled is reachable only through an explicit alignment and is final.
type Status int

const (
	// Unknown helps catch uninitialized Status values.
	Unknown Status = iota

	// Active postings are visible to couriers and can be claimed.
	Active

	// Assigned postings have a delivery in accepted, in_progress or delivered.
	Assigned

	// Completed postings had their delivery validated by an admin.
	Completed

	// Canceled postings were withdrawn.
	Canceled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Active:    "active",
		Assigned:  "assigned",
		Completed: "completed",
		Canceled:  "canceled",
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
	return Unknown, errs.NewValueIsInvalidErrorWithCause("posting status", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if s <= Unknown || s > Canceled {
		return errs.NewValueIsInvalidErrorWithCause("posting status", fmt.Errorf("%d is not a valid status", s))
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

// IsFinal reports whether no further status change is allowed.
func (s Status) IsFinal() bool {
	return s == Completed || s == Canceled
}

// Reserve moves an active posting to Assigned.
func (s Status) Reserve() (Status, error) {
	if s != Active {
		return Unknown, fmt.Errorf("%s posting cannot be reserved", s)
	}
	return Assigned, nil
}

// Release reverts a reservation. Releasing an active posting changes nothing.
func (s Status) Release() (Status, error) {
	if s != Active && s != Assigned {
		return Unknown, fmt.Errorf("%s posting cannot be released", s)
	}
	return Active, nil
}

// Complete finishes an assigned posting.
func (s Status) Complete() (Status, error) {
	if s != Assigned {
		return Unknown, fmt.Errorf("%s posting cannot be completed", s)
	}
	return Completed, nil
}
