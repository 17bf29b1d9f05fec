// Package delivery implements the delivery ("livraison") aggregate and its
// lifecycle table.
//
// Every status change goes through Delivery.Apply, which looks the edge up in
// the table returned by Transitions and checks, in this order, that the
// status permits the event, that the actor satisfies the edge guard and that
// the payload is valid. The three failures are told apart with errors.Is
// against ErrInvalidTransition, ErrForbidden and the errs.ErrValueIs* family.
//
// Apply only mutates the delivery. Posting effects, history and side-effect
// intents are derived from its Result by services.LifecycleEngine.
package delivery
