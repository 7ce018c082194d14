// Package database opens the configured store and tracks whether it is reachable.
package database

import "sync/atomic"

// Status records whether the store answered the startup connection attempt.
// Handlers and middleware receive it explicitly instead of reading a global.
type Status struct {
	available atomic.Bool
}

// NewStatus returns a Status with the given initial availability.
func NewStatus(available bool) *Status {
	s := &Status{}
	s.available.Store(available)
	return s
}

// Available reports whether the store can be used.
func (s *Status) Available() bool {
	return s.available.Load()
}

// SetAvailable records the outcome of a connection attempt.
func (s *Status) SetAvailable(ok bool) {
	s.available.Store(ok)
}

// Label is the value reported by the health endpoint.
func (s *Status) Label() string {
	if s.Available() {
		return "connected"
	}
	return "offline"
}
