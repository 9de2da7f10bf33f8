package session

import "errors"

// Domain errors for the session package.
var (
	// ErrEventStreamClosed indicates the transport closed its event channel.
	ErrEventStreamClosed = errors.New("session: event stream closed")

	// ErrNoTopics indicates the dispatcher has nothing to subscribe to.
	ErrNoTopics = errors.New("session: no topics to subscribe")
)
