// Package kernel holds the primitives shared by every marketplace aggregate.
//
//   - UUID: identifier of postings, deliveries, actors and outbox messages
//   - Role and Actor: the explicit caller identity passed into every command
//
// Values are immutable and safe to share between goroutines.
package kernel
