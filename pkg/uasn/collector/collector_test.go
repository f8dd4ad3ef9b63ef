package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfsouza/uasn/pkg/uasn/geom"
	"github.com/rfsouza/uasn/pkg/uasn/types"
)

func TestCollectorNotEnoughAnchors(t *testing.T) {
	c := NewUPSCollector(1500, 1000)
	c.AddAnchor("0", geom.Vec3{})
	_, err := c.GetPosition(false)
	assert.ErrorIs(t, err, types.ErrNotEnoughAnchors)
}

func TestCollectorNoData(t *testing.T) {
	c := NewUPSCollector(1500, 1000)
	c.AddAnchor("0", geom.Vec3{X: 0, Y: 0, Z: 0})
	c.AddAnchor("1", geom.Vec3{X: 0, Y: 500, Z: 0})
	c.AddAnchor("2", geom.Vec3{X: 500, Y: 250, Z: 0})
	c.AddAnchor("3", geom.Vec3{X: 500, Y: 250, Z: -200})
	_, err := c.GetPosition(false)
	assert.ErrorIs(t, err, types.ErrNoData)
}

func TestCollectorIncompleteData(t *testing.T) {
	c := NewUPSCollector(1500, 1000)
	c.AddAnchor("0", geom.Vec3{X: 0, Y: 0, Z: 0})
	c.AddAnchor("1", geom.Vec3{X: 0, Y: 500, Z: 0})
	c.AddAnchor("2", geom.Vec3{X: 500, Y: 250, Z: 0})
	c.AddAnchor("3", geom.Vec3{X: 500, Y: 250, Z: -200})

	// Only anchor 0 and 1 ever report; column 2 (anchor 3) stays empty.
	c.AddDataPoint(0, "0", Payload{0, 0})
	c.AddDataPoint(0, "1", Payload{0.1, 0})

	_, err := c.GetPosition(false)
	assert.ErrorIs(t, err, types.ErrIncompleteData)
}

func TestUPSCollectorEndToEnd(t *testing.T) {
	const sndSpeed = 1500.0
	anchors := map[string]geom.Vec3{
		"0": {X: 0, Y: 0, Z: 0},
		"1": {X: 0, Y: 500, Z: 0},
		"2": {X: 500, Y: 250, Z: 0},
		"3": {X: 500, Y: 250, Z: -200},
	}
	truth := geom.Vec3{X: 250, Y: 250, Z: -100}

	c := NewUPSCollector(sndSpeed, 1000)
	for name, pos := range anchors {
		c.AddAnchor(name, pos)
	}

	// Two beacon cycles with identical geometry average to the same
	// coefficients, exercising the column-average step.
	for series := 0; series < 2; series++ {
		w0 := geom.Distance(truth, anchors["0"])
		t0 := 10.0 * float64(series+1)
		dt0 := 0.0
		c.AddDataPoint(series, "0", Payload{t0, dt0})
		for i := 1; i <= 3; i++ {
			name := [4]string{"", "1", "2", "3"}[i]
			wi := geom.Distance(truth, anchors[name])
			arrival := t0 + (wi-w0)/sndSpeed
			c.AddDataPoint(series, name, Payload{arrival, 0})
		}
	}

	p, err := c.GetPosition(true)
	require.NoError(t, err)
	assert.InDelta(t, 0, geom.Distance(p, truth), 1e-6)
}

func TestToACollectorEndToEnd(t *testing.T) {
	const sndSpeed = 1500.0
	anchors := map[string]geom.Vec3{
		"a": {X: 0, Y: 0, Z: 0},
		"b": {X: 1000, Y: 0, Z: 0},
		"c": {X: 0, Y: 1000, Z: 0},
		"d": {X: 0, Y: 0, Z: 1000},
	}
	truth := geom.Vec3{X: 300, Y: 400, Z: -200}

	c := NewToACollector(3, sndSpeed, func() geom.Vec3 { return geom.Vec3{} }, 5, 0.01)
	for name, pos := range anchors {
		c.AddAnchor(name, pos)
	}
	for name, pos := range anchors {
		d := geom.Distance(truth, pos)
		tof := 2 * d / sndSpeed
		c.AddDataPoint(0, name, Payload{tof, 0})
	}

	p, err := c.GetPosition(true)
	require.NoError(t, err)
	assert.Less(t, geom.Distance(p, truth), 0.01)
}

func TestCollectorAnchorMaxCap(t *testing.T) {
	c := NewUPSCollector(1500, 1000)
	c.AddAnchor("0", geom.Vec3{})
	c.AddAnchor("1", geom.Vec3{})
	c.AddAnchor("2", geom.Vec3{})
	c.AddAnchor("3", geom.Vec3{})
	c.AddAnchor("4", geom.Vec3{X: 1})
	assert.Len(t, c.order, 4)
	if _, known := c.positions["4"]; known {
		t.Fatalf("fifth anchor should have been rejected once anchorMax was reached")
	}
}
