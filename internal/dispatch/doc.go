// Package dispatch routes incoming broker messages to sensor policies and
// turns policy decisions into notifications.
//
// A Dispatcher belongs to exactly one broker session. It holds that
// session's routes, each pairing a topic pattern set with a policy, and is
// driven sequentially by the session loop. Policy state (the appliance
// debounce flag) therefore needs no locking and is never shared between
// sessions.
//
// Failures never leave OnMessage: malformed payloads, policy panics and
// sink errors are logged, and the next message is processed normally.
package dispatch
