// Package outbox models the side-effect intents of the lifecycle: status
// change notifications and invoice requests. Messages are written in the
// transaction of the transition that produced them, then dispatched
// best-effort with retries and backoff.
package outbox
