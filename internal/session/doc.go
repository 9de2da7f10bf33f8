// Package session runs the event loop for one broker connection.
//
// A Session owns a Transport and a Dispatcher. Its loop reacts to
// transport events one at a time:
//
//   - connected: subscribe to every filter of the dispatcher at QoS 0,
//     waiting for each SUBACK before reading the next event
//   - message: decode the payload as UTF-8 (invalid bytes become U+FFFD)
//     and hand it to the dispatcher
//   - connection lost: log and pause for the retry backoff; the transport
//     reconnects on its own and the next connected event re-subscribes
//
// Run returns nil when its context is cancelled. A rejected subscription
// ends the session with an error wrapping mqtt.ErrSubscribeFailed.
package session
