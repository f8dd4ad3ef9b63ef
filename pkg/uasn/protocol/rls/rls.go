// Package rls implements the reactive localization scheme: nodes
// start unlocalized, passively collect neighbor position broadcasts,
// and when a scored 4-anchor set becomes available, request to join a
// beaconing chain that relays UPS-style timing back to the requester.
package rls

import (
	"container/heap"
	"math"
	"sort"
	"strconv"

	"github.com/rfsouza/uasn/pkg/uasn/collector"
	"github.com/rfsouza/uasn/pkg/uasn/geom"
	"github.com/rfsouza/uasn/pkg/uasn/node"
)

// Status is a node's place in the reactive localization state machine.
type Status int

const (
	StatusUnlocalizedPassive Status = iota
	StatusUnlocalizedActive
	StatusLocalizedNew
	StatusLocalizedReady
	StatusAnchor
)

const (
	verbPosition = "position"
	verbRequest  = "request"
	verbBeacon   = "beacon"
)

type neighbor struct {
	position geom.Vec3
	error    float64
}

type estimate struct {
	position geom.Vec3
	error    float64
}

// Node is one reactive-scheme participant. slotCount is an explicit
// constructor argument rather than shared state, so independent
// networks can coexist in one process.
type Node struct {
	node.Base

	slotTimer float64
	slotCount int
	status    Status

	sndSpeed    float64
	simRange    float64
	rlsTimeslot float64
	upsNumber   int

	neighbors map[string]neighbor

	listeningTimer float64
	tdoaCalc       *collector.Collector
	anchorErrors   [4]float64

	bestAnchors candidateHeap

	positionEstimates []estimate
	update            bool

	anchorLevel  int
	anchorMaster string
	masterDelay  float64
	beaconTime   float64
	haveBeacon   bool
	beaconCount  int
}

// NewNode creates an RLS participant. slotCount is the total number of
// RLS nodes in the network (used to spread time slots); id picks this
// node's own slot. If localized is true, position is taken as an
// initial, zero-error position estimate (an a priori anchor).
func NewNode(id int, slotCount int, position geom.Vec3, localized bool, sndSpeed, simRange, rlsTimeslot float64, upsNumber int) *Node {
	n := &Node{
		Base:        node.NewBase("node-"+strconv.Itoa(id), position),
		slotTimer:   float64(id),
		slotCount:   slotCount,
		status:      StatusUnlocalizedPassive,
		sndSpeed:    sndSpeed,
		simRange:    simRange,
		rlsTimeslot: rlsTimeslot,
		upsNumber:   upsNumber,
		neighbors:   make(map[string]neighbor),
	}
	if localized {
		n.status = StatusLocalizedNew
		n.positionEstimates = []estimate{{position: position, error: 0}}
	}
	return n
}

func (n *Node) Status() Status { return n.status }

func (n *Node) Tick(time float64) string {
	if n.status == StatusAnchor && n.haveBeacon {
		if n.beaconCount == n.upsNumber {
			n.status = StatusLocalizedReady
		}
		delay := time - n.beaconTime
		n.haveBeacon = false
		fields := []string{
			strconv.Itoa(n.anchorLevel), strconv.Itoa(n.beaconCount), node.FormatFloat(delay),
		}
		if n.update {
			p, e := n.getPosition()
			fields = append(fields, node.FormatFloat(p.X), node.FormatFloat(p.Y), node.FormatFloat(p.Z), node.FormatFloat(e))
			n.update = false
		}
		return node.Format(n.Name(), verbBeacon, fields...)
	}

	if time/n.rlsTimeslot > n.slotTimer {
		n.slotTimer += float64(n.slotCount)

		if n.status == StatusUnlocalizedPassive && n.bestAnchors.Len() > 0 {
			n.status = StatusUnlocalizedActive
			return ""
		}

		if time > n.listeningTimer {
			switch n.status {
			case StatusUnlocalizedActive:
				c := heap.Pop(&n.bestAnchors).(candidate)
				if n.bestAnchors.Len() == 0 {
					n.status = StatusUnlocalizedPassive
				}
				return node.Format(n.Name(), verbRequest, c.New, c.N1, c.N2, c.N3)

			case StatusLocalizedNew:
				n.status = StatusLocalizedReady
				p, e := n.getPosition()
				return node.Format(n.Name(), verbPosition, node.FormatFloat(p.X), node.FormatFloat(p.Y), node.FormatFloat(p.Z), node.FormatFloat(e))

			case StatusAnchor:
				n.status = StatusLocalizedReady
			}
		}
	}
	return ""
}

func (n *Node) Receive(time float64, message string) string {
	env, ok := node.Parse(message)
	if !ok {
		return ""
	}
	sender, data := env.Sender, env.Fields

	switch env.Verb {
	case verbPosition:
		n.receivePosition(time, sender, data)
	case verbRequest:
		n.receiveRequest(time, sender, data)
	case verbBeacon:
		n.receiveBeacon(time, sender, data)
	}
	return ""
}

func (n *Node) receivePosition(time float64, sender string, data []string) {
	if len(data) != 4 {
		return
	}
	x, errX := node.ParseFloat(data[0])
	y, errY := node.ParseFloat(data[1])
	z, errZ := node.ParseFloat(data[2])
	e, errE := node.ParseFloat(data[3])
	if errX != nil || errY != nil || errZ != nil || errE != nil {
		return
	}
	pos := geom.Vec3{X: x, Y: y, Z: z}

	if n.status == StatusUnlocalizedPassive || n.status == StatusUnlocalizedActive {
		n.findAnchors(sender, pos, e)
	}
	n.neighbors[sender] = neighbor{position: pos, error: e}
	if n.status == StatusUnlocalizedActive && time/n.rlsTimeslot > n.slotTimer-float64(n.slotCount)/2 {
		n.status = StatusUnlocalizedPassive
	}
}

func (n *Node) receiveRequest(time float64, sender string, data []string) {
	if n.status != StatusLocalizedReady || len(data) != 4 {
		return
	}
	i := -1
	for idx, name := range data {
		if name == n.Name() {
			i = idx
			break
		}
	}
	if i < 0 {
		return
	}
	masterIndex := i - 1
	if masterIndex < 0 {
		masterIndex = len(data) - 1
	}
	master := data[masterIndex]
	nb, ok := n.neighbors[master]
	if !ok {
		return
	}
	n.status = StatusAnchor
	n.anchorLevel = i
	n.anchorMaster = master
	n.masterDelay = geom.Distance(n.Position(), nb.position) / n.sndSpeed
	if i == 0 {
		n.beaconTime = time
		n.haveBeacon = true
		n.beaconCount = 1
	}
}

func (n *Node) receiveBeacon(time float64, sender string, data []string) {
	if len(data) != 3 && len(data) != 7 {
		return
	}
	level, errL := strconv.Atoi(data[0])
	count, errC := strconv.Atoi(data[1])
	delay, errD := node.ParseFloat(data[2])
	if errL != nil || errC != nil || errD != nil {
		return
	}
	if len(data) == 7 {
		x, errX := node.ParseFloat(data[3])
		y, errY := node.ParseFloat(data[4])
		z, errZ := node.ParseFloat(data[5])
		e, errE := node.ParseFloat(data[6])
		if errX == nil && errY == nil && errZ == nil && errE == nil {
			n.neighbors[sender] = neighbor{position: geom.Vec3{X: x, Y: y, Z: z}, error: e}
		}
	}

	if n.status == StatusAnchor {
		n.listeningTimer = time + 4*n.rlsTimeslot
		if sender == n.anchorMaster {
			if n.anchorLevel == 0 {
				n.beaconCount++
				n.beaconTime = time
				n.haveBeacon = true
			} else {
				n.beaconCount = count
				n.beaconTime = time - n.masterDelay - delay
				n.haveBeacon = true
			}
		}
		return
	}

	if n.status == StatusUnlocalizedActive {
		n.status = StatusUnlocalizedPassive
	}
	n.listeningTimer = time + 2*n.rlsTimeslot

	if count == 1 && level == 0 {
		n.tdoaCalc = collector.NewUPSCollector(n.sndSpeed, n.simRange)
	} else if n.tdoaCalc == nil {
		return
	}

	if count == 1 {
		nb, ok := n.neighbors[sender]
		if !ok {
			n.tdoaCalc = nil
			return
		}
		n.tdoaCalc.AddAnchor(strconv.Itoa(level), nb.position)
		n.anchorErrors[level] = nb.error
	}
	n.tdoaCalc.AddDataPoint(count, strconv.Itoa(level), collector.Payload{time, delay})

	if count == n.upsNumber && level == 3 {
		p, err := n.tdoaCalc.GetPosition(false)
		n.tdoaCalc = nil
		if err == nil {
			worst := n.anchorErrors[0]
			for _, e := range n.anchorErrors[1:] {
				if e > worst {
					worst = e
				}
			}
			n.positionEstimates = append(n.positionEstimates, estimate{position: p, error: 1 + worst})
			if n.status == StatusUnlocalizedPassive || n.status == StatusUnlocalizedActive {
				n.status = StatusLocalizedNew
			}
			if n.status == StatusLocalizedReady {
				n.update = true
			}
		}
	}
}

// findAnchors scores every 3-neighbor combination together with the
// newly heard node as a candidate 4-anchor set, pushing any
// positive-scoring set onto bestAnchors.
func (n *Node) findAnchors(newNode string, position geom.Vec3, errEstimate float64) {
	if len(n.neighbors) < 3 {
		return
	}
	names := make([]string, 0, len(n.neighbors))
	for name := range n.neighbors {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, combo := range combinations3(names) {
		p1, p2, p3 := n.neighbors[combo[0]], n.neighbors[combo[1]], n.neighbors[combo[2]]
		score := rateAnchors(
			[4]geom.Vec3{position, p1.position, p2.position, p3.position},
			[4]float64{errEstimate, p1.error, p2.error, p3.error},
			n.simRange,
		)
		if score > 0 {
			heap.Push(&n.bestAnchors, candidate{Score: score, New: newNode, N1: combo[0], N2: combo[1], N3: combo[2]})
		}
	}
}

// rateAnchors scores a candidate 4-anchor set by tetrahedron volume
// (bigger spread, better geometry) divided by combined error estimate;
// a pair further apart than simRange disqualifies the whole set.
func rateAnchors(positions [4]geom.Vec3, errors [4]float64, simRange float64) float64 {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if geom.Distance(positions[i], positions[j]) > simRange {
				return 0
			}
		}
	}
	a := positions[1].Sub(positions[0])
	b := positions[2].Sub(positions[0])
	c := positions[3].Sub(positions[0])
	shape := math.Abs(a.Dot(b.Cross(c)))
	errSum := 1.0
	for _, e := range errors {
		errSum += e
	}
	return shape / errSum
}

// EstimatedPosition returns the node's best position estimate and its
// error score, if it has resolved one.
func (n *Node) EstimatedPosition() (geom.Vec3, float64, bool) {
	if len(n.positionEstimates) == 0 {
		return geom.Vec3{}, 0, false
	}
	p, e := n.getPosition()
	return p, e, true
}

func (n *Node) getPosition() (geom.Vec3, float64) {
	best := estimate{error: math.Inf(1)}
	for _, e := range n.positionEstimates {
		if e.error < best.error {
			best = e
		}
	}
	return best.position, best.error
}

func combinations3(items []string) [][3]string {
	var out [][3]string
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			for k := j + 1; k < len(items); k++ {
				out = append(out, [3]string{items[i], items[j], items[k]})
			}
		}
	}
	return out
}

var _ node.Node = (*Node)(nil)
