// Package services holds the domain services of the marketplace.
//
//   - LifecycleEngine: applies a delivery transition and derives the posting
//     change, the history record and the side-effect intents it implies
//
// Services are stateless and do no I/O; command handlers load the aggregates
// and persist the outcome.
package services
