package collector

import (
	"strconv"

	"github.com/rfsouza/uasn/pkg/uasn/geom"
	"github.com/rfsouza/uasn/pkg/uasn/solver"
)

// masterAnchor is the fixed name the UPS beaconing sequence uses for
// the anchor that originates each cycle (priority 0).
const masterAnchor = "0"

// NewUPSCollector builds a Collector wired to the UPS closed-form
// solver. Anchors must be registered under names "0".."3"; exactly
// four are required. sndSpeed and simRange parameterize the compile
// and validation steps respectively.
func NewUPSCollector(sndSpeed, simRange float64) *Collector {
	compile := func(order []string, series map[string]Payload) []*float64 {
		out := make([]*float64, 3)
		zero, ok := series[masterAnchor]
		if !ok {
			return out
		}
		for i := 1; i <= 3; i++ {
			p, ok := series[strconv.Itoa(i)]
			if !ok {
				continue
			}
			k := (zero[0] - zero[1] - p[0] + p[1]) * sndSpeed
			out[i-1] = &k
		}
		return out
	}

	calculate := func(order []string, positions map[string]geom.Vec3, compiled []float64) (geom.Vec3, error) {
		var anchors [4]geom.Vec3
		for i := 0; i < 4; i++ {
			anchors[i] = positions[strconv.Itoa(i)]
		}
		var k [3]float64
		copy(k[:], compiled)
		return solver.UPS(anchors, k, simRange)
	}

	return New(4, 4, compile, calculate)
}
