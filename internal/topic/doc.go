// Package topic matches MQTT topic names against subscription patterns.
//
// Patterns are '/'-separated segments. A segment is either a literal, the
// single-level wildcard '+' (exactly one topic segment) or the multi-level
// wildcard '#' (all remaining segments, including none). '#' is only legal
// as the final segment.
//
// # Usage
//
//	set := topic.NewSet([]string{"home/+/water", "ttn/devices/#"})
//	if set.Matches("home/cellar/water") {
//	    // ...
//	}
//
// A malformed pattern never matches. ValidatePattern reports the problem so
// the configuration layer can reject it before a Set is built.
package topic
