package delivery

import (
	"fmt"
	"strings"

	"marketplace/internal/pkg/errs"
)

// Event is what an actor asks the lifecycle to do with a delivery.
type Event int

const (
	EventUnknown Event = iota
	EventAccept
	EventRefuse
	EventStart
	EventMarkDelivered
	EventValidate
	EventCancel
	EventOverride
)

func getEventStrings() map[Event]string {
	return map[Event]string{
		EventUnknown:       "unknown",
		EventAccept:        "accept",
		EventRefuse:        "refuse",
		EventStart:         "start",
		EventMarkDelivered: "mark_delivered",
		EventValidate:      "validate",
		EventCancel:        "cancel",
		EventOverride:      "override",
	}
}

// ParseEvent parses the wire name of an event, ignoring case and surrounding
// spaces. Unknown names are an errs.ValueIsInvalidError.
func ParseEvent(s string) (Event, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for event, str := range getEventStrings() {
		if event != EventUnknown && str == normalized {
			return event, nil
		}
	}
	return EventUnknown, errs.NewValueIsInvalidErrorWithCause("event", fmt.Errorf("%q is not a known event", s))
}

// Validate rejects EventUnknown and out-of-range values.
func (e Event) Validate() error {
	if e <= EventUnknown || e > EventOverride {
		return errs.NewValueIsInvalidErrorWithCause("event", fmt.Errorf("%d is not a known event", e))
	}
	return nil
}

// String returns the wire name of the event.
func (e Event) String() string {
	if str, ok := getEventStrings()[e]; ok {
		return str
	}
	return "unknown"
}

// Events lists every known event.
func Events() []Event {
	return []Event{EventAccept, EventRefuse, EventStart, EventMarkDelivered, EventValidate, EventCancel, EventOverride}
}
