// Package domain contains core concepts of the chat relay.
// This file defines connection identity and the session binding.
// No runtime, network, or UI logic should be added here.
package domain

// ConnectionID is the opaque identity token issued by the transport for
// one live connection. It is never reused and the core only keys on it.
type ConnectionID string

func (c ConnectionID) String() string { return string(c) }

// Session binds a live connection to its registered display name.
// At most one Session exists per connection; display names need not be
// unique across sessions.
type Session struct {
	Connection  ConnectionID
	DisplayName string
}
