// Package notify delivers push notifications to a human.
//
// Sink is the delivery contract. Pushover implements it against the Pushover
// messages API; Guard wraps any Sink with a rate limiter and a circuit
// breaker.
//
// Delivery is best effort. Callers log errors and move on; nothing here
// retries.
package notify
