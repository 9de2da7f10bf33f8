// Package supervisor runs one broker session per configured broker and
// waits for all of them.
//
// Sessions are independent: a fatal error ends only the session that
// produced it, and the others keep running until the context is cancelled.
// Run reports the first fatal error once every session has returned.
package supervisor
