// Package collector implements the data-gathering substrate shared by
// every protocol that turns raw beacon/ping timing into a position
// estimate: an anchor registry plus a sparse per-series sample table,
// compiled and averaged before being handed to a solver. The per-series
// compile step and the final solve are injected as function values, so
// one Collector type serves both the TDOA and the ToA pipelines.
package collector

import (
	"sort"

	"github.com/rfsouza/uasn/pkg/uasn/geom"
	"github.com/rfsouza/uasn/pkg/uasn/types"
)

// Payload is one anchor's raw timing sample within a series: for UPS,
// (arrival time, relay delay); for ToA, (round-trip time, reply delay).
type Payload [2]float64

// CompileFunc reduces one series (anchor name -> raw payload) to a
// slice of optional floats, one per output column, in the solver's
// expected order. A nil entry marks a column this series cannot
// contribute to (a required anchor did not report for this series).
type CompileFunc func(order []string, series map[string]Payload) []*float64

// CalculateFunc turns a fully averaged, column-complete vector into a
// position, given the anchor order used to build it and their
// registered positions.
type CalculateFunc func(order []string, positions map[string]geom.Vec3, compiled []float64) (geom.Vec3, error)

// Collector is the generalized PositionCalculator: it gathers anchor
// positions and per-series timing samples, then compiles, averages and
// solves on demand. anchorMax of 0 means unlimited.
type Collector struct {
	anchorMin int
	anchorMax int

	order     []string
	positions map[string]geom.Vec3
	series    map[int]map[string]Payload

	compile   CompileFunc
	calculate CalculateFunc
}

// New builds a Collector requiring at least anchorMin anchors (at most
// anchorMax, 0 for unlimited) before a position can be computed.
func New(anchorMin, anchorMax int, compile CompileFunc, calculate CalculateFunc) *Collector {
	return &Collector{
		anchorMin: anchorMin,
		anchorMax: anchorMax,
		positions: make(map[string]geom.Vec3),
		series:    make(map[int]map[string]Payload),
		compile:   compile,
		calculate: calculate,
	}
}

// AddAnchor registers (or repositions) anchor name. Calls past
// anchorMax are silently ignored; the anchor set is capped, never an
// error.
func (c *Collector) AddAnchor(name string, position geom.Vec3) {
	if _, known := c.positions[name]; !known {
		if c.anchorMax > 0 && len(c.order) >= c.anchorMax {
			return
		}
		c.order = append(c.order, name)
	}
	c.positions[name] = position
}

// AddDataPoint records anchor's payload under seriesID, extending the
// sparse per-series table as needed.
func (c *Collector) AddDataPoint(seriesID int, anchor string, payload Payload) {
	s, ok := c.series[seriesID]
	if !ok {
		s = make(map[string]Payload)
		c.series[seriesID] = s
	}
	s[anchor] = payload
}

// GetPosition compiles every recorded series, column-averages them and
// invokes the solver. completeOnly restricts the average to series
// that reported every column; otherwise any series contributing at
// least one present column is used.
func (c *Collector) GetPosition(completeOnly bool) (geom.Vec3, error) {
	if len(c.order) < c.anchorMin {
		return geom.Vec3{}, types.ErrNotEnoughAnchors
	}
	if len(c.series) == 0 {
		return geom.Vec3{}, types.ErrNoData
	}

	ids := make([]int, 0, len(c.series))
	for id := range c.series {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	n := len(c.compile(c.order, c.series[ids[0]]))
	columns := make([][]float64, n)

	for _, id := range ids {
		comp := c.compile(c.order, c.series[id])
		complete := true
		for _, v := range comp {
			if v == nil {
				complete = false
				break
			}
		}
		if completeOnly && !complete {
			continue
		}
		for i, v := range comp {
			if v != nil {
				columns[i] = append(columns[i], *v)
			}
		}
	}

	compiled := make([]float64, n)
	for i, col := range columns {
		if len(col) == 0 {
			return geom.Vec3{}, types.ErrIncompleteData
		}
		sum := 0.0
		for _, v := range col {
			sum += v
		}
		compiled[i] = sum / float64(len(col))
	}

	return c.calculate(c.order, c.positions, compiled)
}
