package ports

import "time"

// TransitionObserver is notified of every transition request and its outcome
// ("applied", "noop", "replay", "refused" or an error kind).
type TransitionObserver interface {
	ObserveTransition(event, outcome string, elapsed time.Duration)
}

// DispatchObserver is notified of every side-effect dispatch attempt.
type DispatchObserver interface {
	ObserveDispatch(kind, result string)
}
