package lsls

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfsouza/uasn/pkg/uasn/geom"
	"github.com/rfsouza/uasn/pkg/uasn/node"
)

const (
	testSndSpeed   = 1500.0
	testSimRange   = 1000.0
	testUpsPeriod  = 1.0
	testUpsNumber  = 1
	testWaitFactor = 2.0
	testSubrange   = 800.0
)

func newTestNode(id int, position geom.Vec3, localized bool) *Node {
	return NewNode(id, position, localized, testSndSpeed, testSimRange, testUpsPeriod, testUpsNumber, testWaitFactor, testSubrange)
}

func TestMakeMasterBootstrapsAndTicksAnchor(t *testing.T) {
	n := newTestNode(0, geom.Vec3{X: 0, Y: 0, Z: 0}, true)
	n.MakeMaster()

	msg := n.Tick(0)
	env, ok := node.Parse(msg)
	require.True(t, ok)
	assert.Equal(t, verbAnchor, env.Verb)
	assert.Equal(t, "0", env.Fields[0])
	assert.Equal(t, StatusAnchor, n.Status())
}

func TestLocalizedNodeBecomesCandidateOnLevelZeroAnchorInRange(t *testing.T) {
	n := newTestNode(1, geom.Vec3{X: 100, Y: 0, Z: 0}, true)
	anchorPos := geom.Vec3{X: 0, Y: 0, Z: 0}

	n.receiveAnchor(10, "master0", []string{
		"0", node.FormatFloat(anchorPos.X), node.FormatFloat(anchorPos.Y), node.FormatFloat(anchorPos.Z), "master",
	})

	assert.Equal(t, StatusCandidate, n.status)
	assert.Equal(t, "master0", n.masterName)
	assert.Greater(t, n.timer, 10.0)
}

func TestLocalizedNodeIgnoresOutOfRangeAnchor(t *testing.T) {
	n := newTestNode(1, geom.Vec3{X: 5000, Y: 0, Z: 0}, true)
	anchorPos := geom.Vec3{X: 0, Y: 0, Z: 0}

	n.receiveAnchor(10, "master0", []string{
		"0", node.FormatFloat(anchorPos.X), node.FormatFloat(anchorPos.Y), node.FormatFloat(anchorPos.Z), "master",
	})

	assert.Equal(t, StatusLocalized, n.status)
}

func TestCandidatePromotesOnPeerConfirmAtSameLevel(t *testing.T) {
	n := newTestNode(1, geom.Vec3{X: 100, Y: 0, Z: 0}, true)
	n.status = StatusCandidate
	n.masterName = "master0"
	n.masterDist = 50
	n.timer = 100

	winnerPos := geom.Vec3{X: 0, Y: 0, Z: 0}
	n.receiveAnchor(20, "anchor1", []string{
		"1", node.FormatFloat(winnerPos.X), node.FormatFloat(winnerPos.Y), node.FormatFloat(winnerPos.Z), "master0",
	})

	assert.Equal(t, StatusCandidate, n.status)
	assert.Equal(t, 2, n.level)
	assert.Equal(t, "anchor1", n.masterName)
}

func TestCandidateAbandonsAtLevelThreeLimit(t *testing.T) {
	n := newTestNode(1, geom.Vec3{X: 100, Y: 0, Z: 0}, true)
	n.status = StatusCandidate
	n.level = 3
	n.masterName = "anchor2"
	n.masterDist = 50
	n.timer = 100

	winnerPos := geom.Vec3{X: 0, Y: 0, Z: 0}
	n.receiveAnchor(20, "anchor3", []string{
		"3", node.FormatFloat(winnerPos.X), node.FormatFloat(winnerPos.Y), node.FormatFloat(winnerPos.Z), "anchor2",
	})

	assert.Equal(t, StatusLocalized, n.status)
	assert.Equal(t, 1, n.level)
	assert.True(t, math.IsInf(n.timer, 1))
}

func TestConfirmingAbandonsWhenFasterPeerConfirms(t *testing.T) {
	n := newTestNode(1, geom.Vec3{X: 100, Y: 0, Z: 0}, true)
	n.status = StatusConfirming
	n.level = 1
	n.masterName = "master0"
	n.masterDist = 0 // candidateTimer(0) is large: easily beaten by a peer farther from the master

	n.receiveConfirm([]string{"1", node.FormatFloat(0.01), "master0"})

	assert.Equal(t, StatusLocalized, n.status)
	assert.True(t, math.IsInf(n.timer, 1))
}

func TestUnlocalizedChainAssemblyAndBeaconResolution(t *testing.T) {
	anchors := [4]geom.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 0, Y: 500, Z: 0},
		{X: 500, Y: 250, Z: 0},
		{X: 500, Y: 250, Z: -200},
	}
	truth := geom.Vec3{X: 250, Y: 250, Z: -100}
	names := [4]string{"master0", "anchor1", "anchor2", "anchor3"}
	parents := [4]string{"master", "master0", "anchor1", "anchor2"}

	n := newTestNode(99, geom.Vec3{X: -1, Y: -1, Z: 0}, false)

	for level := 0; level < 4; level++ {
		p := anchors[level]
		n.receiveAnchor(0, names[level], []string{
			node.FormatInt(level), node.FormatFloat(p.X), node.FormatFloat(p.Y), node.FormatFloat(p.Z), parents[level],
		})
	}
	require.Equal(t, StatusListening, n.status)
	require.NotNil(t, n.tdoaCalc)

	w0 := geom.Distance(truth, anchors[0])
	t0 := 1000.0
	times := [4]float64{t0, 0, 0, 0}
	for i := 1; i < 4; i++ {
		k := w0 - geom.Distance(truth, anchors[i])
		times[i] = t0 - k/testSndSpeed
	}

	for level := 0; level < 4; level++ {
		n.receiveBeacon(times[level], names[level], []string{"0", node.FormatInt(level), "0"})
	}

	require.Equal(t, StatusCandidate, n.status)
	assert.Equal(t, 0, n.level)
	assert.Equal(t, "master", n.masterName)
	p, ok := n.EstimatedPosition()
	require.True(t, ok)
	assert.InDelta(t, 0, geom.Distance(p, truth), 1e-6)
}

func TestAnchorNodeRelaysMasterBeaconTiming(t *testing.T) {
	n := newTestNode(2, geom.Vec3{X: 0, Y: 0, Z: 0}, true)
	n.status = StatusAnchor
	n.level = 2
	n.masterName = "anchor1"
	n.masterDist = 300

	n.receiveBeacon(50, "anchor1", []string{"3", "1", "0.5"})

	assert.Equal(t, 3, n.beaconCount)
	assert.InDelta(t, 50-300/testSndSpeed-0.5, n.timer, 1e-9)
}
