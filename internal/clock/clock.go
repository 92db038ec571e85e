// Package clock provides a real clock implementation.
package clock

import "time"

// System implements curator.Clock using time.Now.
type System struct{}

// New creates a new System clock.
func New() *System {
	return &System{}
}

// Now returns the current time in UTC.
func (System) Now() time.Time {
	return time.Now().UTC()
}
