// Package sensor turns raw MQTT payloads into discrete "event occurred" decisions.
//
// Each logical sensor kind has its own Policy:
//   - Flood: fires on every "true" payload
//   - Mailbox: fires when a The Things Network uplink reports the door open
//   - ApplianceDone: fires once per "ProgramFinished" transition (debounced)
//
// Policies carry their own state. A Policy value must be owned by exactly one
// dispatcher and is not safe for concurrent use.
package sensor
