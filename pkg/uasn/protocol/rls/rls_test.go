package rls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfsouza/uasn/pkg/uasn/geom"
	"github.com/rfsouza/uasn/pkg/uasn/node"
)

func TestRateAnchorsRejectsOutOfRangePair(t *testing.T) {
	positions := [4]geom.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 2000, Y: 0, Z: 0},
		{X: 0, Y: 500, Z: 0},
		{X: 500, Y: 0, Z: -100},
	}
	score := rateAnchors(positions, [4]float64{0, 0, 0, 0}, 1000)
	assert.Equal(t, 0.0, score)
}

func TestRateAnchorsPositiveForGoodTetrahedron(t *testing.T) {
	positions := [4]geom.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 400, Y: 0, Z: 0},
		{X: 0, Y: 400, Z: 0},
		{X: 0, Y: 0, Z: -400},
	}
	score := rateAnchors(positions, [4]float64{1, 1, 1, 1}, 1000)
	assert.Greater(t, score, 0.0)
}

func TestCombinations3(t *testing.T) {
	combos := combinations3([]string{"a", "b", "c", "d"})
	assert.Len(t, combos, 4)
}

func TestNodeReceivePositionQueuesCandidate(t *testing.T) {
	n := NewNode(3, 10, geom.Vec3{X: -1, Y: -1, Z: 0}, false, 1500, 1000, 2, 10)

	receive := func(name string, p geom.Vec3) {
		n.receivePosition(0, name, []string{
			node.FormatFloat(p.X), node.FormatFloat(p.Y), node.FormatFloat(p.Z), node.FormatFloat(0),
		})
	}

	receive("node-0", geom.Vec3{X: 0, Y: 0, Z: 0})
	receive("node-1", geom.Vec3{X: 400, Y: 0, Z: 0})
	receive("node-2", geom.Vec3{X: 0, Y: 400, Z: 0})
	receive("node-4", geom.Vec3{X: 0, Y: 0, Z: -400})

	require.Equal(t, StatusUnlocalizedPassive, n.Status())
	assert.Greater(t, n.bestAnchors.Len(), 0)
}
