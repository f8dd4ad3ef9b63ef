// Package lsls implements the spanning-tree localization scheme: a
// single master anchor seeds a 4-level "anchor" broadcast tree,
// unlocalized nodes assemble candidate chains as they overhear it,
// complete chains resolve a position via the UPS closed form, and
// newly localized nodes compete (candidate/confirm) to extend the
// tree one level further.
package lsls

import (
	"math"
	"strconv"

	"github.com/rfsouza/uasn/pkg/uasn/collector"
	"github.com/rfsouza/uasn/pkg/uasn/geom"
	"github.com/rfsouza/uasn/pkg/uasn/node"
)

// Status is a node's place in the spanning-tree state machine.
type Status int

const (
	StatusUnlocalized Status = iota
	StatusListening
	StatusLocalized
	StatusCandidate
	StatusConfirming
	StatusAnchor
)

const (
	verbAnchor  = "anchor"
	verbConfirm = "confirm"
	verbBeacon  = "beacon"
)

type chainLink struct {
	Name     string
	Position geom.Vec3
}

// Node is one LSLS participant.
type Node struct {
	node.Base

	status Status
	level  int

	positionEstimate geom.Vec3
	havePosition     bool

	timer       float64
	beaconCount int
	tdoaCalc    *collector.Collector

	chains [][]chainLink
	chain  [4]chainLink

	masterName string
	masterDist float64

	sndSpeed       float64
	simRange       float64
	upsPeriod      float64
	upsNumber      int
	lslsWaitFactor float64
	lslsSubrange   float64
}

// NewNode creates an LSLS participant. If localized is true, the node
// starts pre-localized at position with level 1, ready to extend the
// tree (use MakeMaster on exactly one node to seed the tree instead).
func NewNode(id int, position geom.Vec3, localized bool, sndSpeed, simRange, upsPeriod float64, upsNumber int, lslsWaitFactor, lslsSubrange float64) *Node {
	n := &Node{
		Base:           node.NewBase("node"+strconv.Itoa(id), position),
		timer:          math.Inf(1),
		sndSpeed:       sndSpeed,
		simRange:       simRange,
		upsPeriod:      upsPeriod,
		upsNumber:      upsNumber,
		lslsWaitFactor: lslsWaitFactor,
		lslsSubrange:   lslsSubrange,
	}
	if localized {
		n.positionEstimate = position
		n.havePosition = true
		n.status = StatusLocalized
		n.level = 1
	} else {
		n.status = StatusUnlocalized
	}
	return n
}

// MakeMaster turns this node into the tree's seed anchor. Call this on
// exactly one pre-localized node before the environment starts.
func (n *Node) MakeMaster() {
	n.status = StatusConfirming
	n.level = 0
	n.masterName = "master"
	n.masterDist = 0
	n.timer = -1
}

func (n *Node) Status() Status { return n.status }

func (n *Node) standardTimer() float64 {
	return n.simRange / n.sndSpeed
}

func (n *Node) candidateTimer(d float64) float64 {
	return n.lslsWaitFactor * (n.simRange - 2*d) / n.sndSpeed
}

func (n *Node) Tick(time float64) string {
	if time <= n.timer {
		return ""
	}

	switch n.status {
	case StatusCandidate:
		n.status = StatusConfirming
		n.timer = time + 2*n.standardTimer()
		return node.Format(n.Name(), verbConfirm,
			strconv.Itoa(n.level), node.FormatFloat(n.candidateTimer(n.masterDist)), n.masterName)

	case StatusConfirming:
		n.status = StatusAnchor
		if n.level > 0 {
			n.timer = math.Inf(1)
		} else {
			n.timer = time + (3*n.lslsWaitFactor+10)*n.standardTimer()
		}
		p := n.positionEstimate
		return node.Format(n.Name(), verbAnchor,
			strconv.Itoa(n.level), node.FormatFloat(p.X), node.FormatFloat(p.Y), node.FormatFloat(p.Z), n.masterName)

	case StatusAnchor:
		delay := time - n.timer
		msg := node.Format(n.Name(), verbBeacon,
			strconv.Itoa(n.beaconCount), strconv.Itoa(n.level), node.FormatFloat(delay))
		switch {
		case n.beaconCount == n.upsNumber-1:
			n.status = StatusLocalized
			n.level = 1
			n.timer = math.Inf(1)
		case n.level == 0:
			n.beaconCount++
			n.timer += n.upsPeriod
		default:
			n.timer = math.Inf(1)
		}
		return msg
	}
	return ""
}

func (n *Node) Receive(time float64, message string) string {
	env, ok := node.Parse(message)
	if !ok {
		return ""
	}
	switch env.Verb {
	case verbAnchor:
		n.receiveAnchor(time, env.Sender, env.Fields)
	case verbConfirm:
		n.receiveConfirm(env.Fields)
	case verbBeacon:
		n.receiveBeacon(time, env.Sender, env.Fields)
	}
	return ""
}

func (n *Node) receiveAnchor(time float64, sender string, data []string) {
	if len(data) != 5 {
		return
	}
	level, errL := strconv.Atoi(data[0])
	x, errX := node.ParseFloat(data[1])
	y, errY := node.ParseFloat(data[2])
	z, errZ := node.ParseFloat(data[3])
	parent := data[4]
	if errL != nil || errX != nil || errY != nil || errZ != nil {
		return
	}
	pos := geom.Vec3{X: x, Y: y, Z: z}

	switch n.status {
	case StatusUnlocalized:
		if level == 0 {
			n.chains = append(n.chains, []chainLink{{Name: sender, Position: pos}})
			return
		}
		for i, chain := range n.chains {
			if len(chain) == level && chain[len(chain)-1].Name == parent {
				chain = append(chain, chainLink{Name: sender, Position: pos})
				n.chains[i] = chain
			}
			if len(chain) == 4 {
				n.status = StatusListening
				n.tdoaCalc = collector.NewUPSCollector(n.sndSpeed, n.simRange)
				copy(n.chain[:], chain)
				for idx, link := range n.chain {
					n.tdoaCalc.AddAnchor(strconv.Itoa(idx), link.Position)
				}
			}
		}

	case StatusLocalized:
		d := geom.Distance(n.positionEstimate, pos)
		if n.level == level+1 && d <= n.lslsSubrange {
			n.status = StatusCandidate
			n.masterName, n.masterDist = sender, d
			n.timer = time + n.candidateTimer(d)
		}

	case StatusCandidate:
		d := geom.Distance(n.positionEstimate, pos)
		switch {
		case level == n.level+1 && d <= n.lslsSubrange:
			if t := time + n.candidateTimer(d); t < n.timer {
				n.masterName, n.masterDist = sender, d
				n.timer = t
			}
		case level == n.level && parent == n.masterName && d <= n.lslsSubrange:
			if n.level == 3 {
				n.status = StatusLocalized
				n.level = 1
				n.timer = math.Inf(1)
			} else {
				n.level++
				n.masterName, n.masterDist = sender, d
				n.timer = time + n.candidateTimer(d)
			}
		}
	}
}

func (n *Node) receiveConfirm(data []string) {
	if len(data) != 3 {
		return
	}
	level, errL := strconv.Atoi(data[0])
	f, errF := node.ParseFloat(data[1])
	parent := data[2]
	if errL != nil || errF != nil {
		return
	}

	switch n.status {
	case StatusCandidate:
		if level == n.level && parent == n.masterName {
			n.status = StatusLocalized
			n.level = (n.level % 3) + 1
			n.timer = math.Inf(1)
		}
	case StatusConfirming:
		if level == n.level && parent == n.masterName {
			if n.candidateTimer(n.masterDist) > f {
				n.status = StatusLocalized
				n.level = (n.level % 3) + 1
				n.timer = math.Inf(1)
			}
		}
	}
}

func (n *Node) receiveBeacon(time float64, sender string, data []string) {
	if len(data) != 3 {
		return
	}
	count, errC := strconv.Atoi(data[0])
	level, errL := strconv.Atoi(data[1])
	delay, errD := node.ParseFloat(data[2])
	if errC != nil || errL != nil || errD != nil {
		return
	}

	switch n.status {
	case StatusUnlocalized:
		n.chains = nil

	case StatusListening:
		if n.chain[level].Name != sender {
			return
		}
		n.tdoaCalc.AddDataPoint(count, strconv.Itoa(level), collector.Payload{time, delay})
		if level == 3 && count == n.upsNumber-1 {
			p, err := n.tdoaCalc.GetPosition(false)
			n.tdoaCalc = nil
			if err != nil {
				n.status = StatusUnlocalized
				n.chains = nil
				return
			}
			n.positionEstimate = p
			n.havePosition = true
			n.status = StatusCandidate
			n.level = 0
			var center geom.Vec3
			for _, link := range n.chain {
				center = center.Add(link.Position)
			}
			center = center.Scale(0.25)
			d := geom.Distance(p, center)
			n.masterName, n.masterDist = "master", d
			n.timer = time + n.candidateTimer(d)
		}

	case StatusLocalized:
		n.level = 1

	case StatusAnchor:
		if n.masterName == sender && n.level == level+1 {
			n.timer = time - n.masterDist/n.sndSpeed - delay
			n.beaconCount = count
		}
	}
}

// EstimatedPosition returns the node's resolved position, if any.
func (n *Node) EstimatedPosition() (geom.Vec3, bool) {
	return n.positionEstimate, n.havePosition
}

var _ node.Node = (*Node)(nil)
