// Package node defines the contract every protocol state machine
// implements, and the whitespace-delimited wire format messages are
// encoded in.
package node

import "github.com/rfsouza/uasn/pkg/uasn/geom"

// Node is the only contract the scheduler uses to drive a protocol
// state machine. Tick and Receive must return immediately: no blocking
// operation, no goroutine, no reference retained into the environment
// that called them. An empty return means "stay silent".
type Node interface {
	// Name is a stable identifier, unique within the environment.
	Name() string

	// Position is the node's current coordinates.
	Position() geom.Vec3

	// SetPosition is called only by the environment, before Run starts.
	SetPosition(geom.Vec3)

	// Tick is polled once per scheduler tick. A non-empty return value
	// is broadcast from the node's current position.
	Tick(time float64) string

	// Receive is invoked when a broadcast message arrives. A non-empty
	// return value is broadcast from the node's current position.
	Receive(time float64, message string) string
}

// Base implements the Position/SetPosition/Name boilerplate every
// concrete node embeds.
type Base struct {
	name     string
	position geom.Vec3
}

// NewBase creates a Base with the given name and initial position. An
// out-of-bounds position is the signal asking the environment to
// assign one at random; Base itself does not enforce bounds, that is
// the environment's job.
func NewBase(name string, position geom.Vec3) Base {
	return Base{name: name, position: position}
}

func (b *Base) Name() string            { return b.name }
func (b *Base) Position() geom.Vec3     { return b.position }
func (b *Base) SetPosition(p geom.Vec3) { b.position = p }
