package collector

import (
	"github.com/rfsouza/uasn/pkg/uasn/geom"
	"github.com/rfsouza/uasn/pkg/uasn/solver"
	"github.com/rfsouza/uasn/pkg/uasn/types"
)

// NewToACollector builds a Collector wired to the Gauss-Newton ToA
// solver. Any number of anchors >= anchorMin may register under
// whatever names the caller chooses; x0 supplies the prior estimate
// each GetPosition call starts from (a closure, since a node may want
// to seed later solves from its previous estimate rather than a fixed
// point). sndSpeed, iterMax and threshold parameterize the compile and
// solve steps.
func NewToACollector(anchorMin int, sndSpeed float64, x0 func() geom.Vec3, iterMax int, threshold float64) *Collector {
	compile := func(order []string, series map[string]Payload) []*float64 {
		out := make([]*float64, len(order))
		for i, name := range order {
			p, ok := series[name]
			if !ok {
				continue
			}
			d := sndSpeed * (p[0] - p[1]) / 2
			out[i] = &d
		}
		return out
	}

	calculate := func(order []string, positions map[string]geom.Vec3, compiled []float64) (geom.Vec3, error) {
		anchors := make([]geom.Vec3, len(order))
		for i, name := range order {
			anchors[i] = positions[name]
		}
		p, status, err := solver.ToA(anchors, compiled, x0(), iterMax, threshold)
		if err != nil {
			return geom.Vec3{}, err
		}
		if status == solver.ToANotConverged {
			return p, types.ErrNotConverged
		}
		return p, nil
	}

	return New(anchorMin, 0, compile, calculate)
}
