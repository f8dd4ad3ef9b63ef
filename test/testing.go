// Package test holds the shared scenario-building helpers the
// end-to-end tests use: fleet constructors for each protocol and the
// measurement plumbing to compare resolved positions against ground
// truth.
package test

import (
	"github.com/rfsouza/uasn/pkg/uasn/core"
	"github.com/rfsouza/uasn/pkg/uasn/definition"
	"github.com/rfsouza/uasn/pkg/uasn/geom"
	"github.com/rfsouza/uasn/pkg/uasn/protocol/lst"
	"github.com/rfsouza/uasn/pkg/uasn/protocol/ups"
	"github.com/rfsouza/uasn/pkg/uasn/types"
)

// Volume is the default simulation volume used by scenario tests: a
// 2000x2000 m surface over 500 m of depth.
type Volume struct {
	MaxX, MaxY, DimZ float64
}

// DefaultVolume fits every default-range scenario in this package.
func DefaultVolume() Volume {
	return Volume{MaxX: 2000, MaxY: 2000, DimZ: 500}
}

// NewEnvironment builds an Environment over v with the given params and
// seed, wired to the default logger and no metrics.
func NewEnvironment(v Volume, params types.Params, seed int64) *core.Environment {
	return core.New(v.MaxX, v.MaxY, v.DimZ, params, seed, definition.NewDefaultLogger(), nil)
}

// UPSAnchorPositions is a well-conditioned, non-coplanar 4-anchor
// layout reachable from anywhere in the default volume's first
// quadrant.
func UPSAnchorPositions() [4]geom.Vec3 {
	return [4]geom.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 0, Y: 500, Z: 0},
		{X: 500, Y: 250, Z: 0},
		{X: 500, Y: 250, Z: -200},
	}
}

// BuildUPSFleet adds the 4-anchor beaconing chain plus one sensor per
// truth position, returning the sensors for later inspection.
func BuildUPSFleet(env *core.Environment, params types.Params, truths []geom.Vec3) []*ups.SensorNode {
	positions := UPSAnchorPositions()
	env.AddNode(ups.NewMasterAnchorNode("anchor0", positions[0], params.SndSpeed, params.UpsPeriod, params.UpsNumber))
	for i := 1; i < 4; i++ {
		env.AddNode(ups.NewAnchorNode("anchor"+string(rune('0'+i)), positions[i], i, params.SndSpeed))
	}

	sensors := make([]*ups.SensorNode, 0, len(truths))
	for i, truth := range truths {
		s := ups.NewSensorNode("sensor"+string(rune('0'+i)), truth, params.SndSpeed, params.SimRange)
		env.AddNode(s)
		sensors = append(sensors, s)
	}
	return sensors
}

// BuildLSTFleet adds slotCount LST nodes: the first len(localized)
// pre-localized at the given positions, the rest unlocalized at the
// given truths (each seeded with a nearby starting estimate). Returns
// the unlocalized nodes.
func BuildLSTFleet(env *core.Environment, params types.Params, localized []geom.Vec3, truths []geom.Vec3, starts []geom.Vec3) []*lst.Node {
	slotCount := len(localized) + len(truths)
	id := 0
	for _, p := range localized {
		env.AddNode(lst.NewNode(id, slotCount, p, true, geom.Vec3{}, params.SndSpeed, params.LstTimeslot, params.ToaIterMax, params.ToaThreshold))
		id++
	}
	out := make([]*lst.Node, 0, len(truths))
	for i, truth := range truths {
		n := lst.NewNode(id, slotCount, truth, false, starts[i], params.SndSpeed, params.LstTimeslot, params.ToaIterMax, params.ToaThreshold)
		env.AddNode(n)
		out = append(out, n)
		id++
	}
	return out
}
