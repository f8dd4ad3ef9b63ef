// Package lst implements the large-scale ToA scheme: nodes broadcast
// their position once localized, and an unlocalized node with at
// least three known neighbors takes its assigned time slot to "call"
// them, collecting round-trip "reply" timings into a Gauss-Newton ToA
// solve.
package lst

import (
	"strconv"

	"github.com/rfsouza/uasn/pkg/uasn/collector"
	"github.com/rfsouza/uasn/pkg/uasn/geom"
	"github.com/rfsouza/uasn/pkg/uasn/node"
)

// Status is the coarse localization state.
type Status int

const (
	StatusUnlocalized Status = iota
	StatusLocalized
)

// Phase is the fine-grained sub-state within Status.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseReady
	PhaseLocalizing
	PhaseNew
	PhaseIdle
)

const (
	verbPosition = "position"
	verbCall     = "call"
	verbReply    = "reply"
)

const minNeighbors = 3

// pendingReply is a call heard but not yet answered; the answer goes
// out on the replier's next tick, self-reporting the elapsed delay so
// the caller can subtract it from the measured round trip.
type pendingReply struct {
	caller  string
	arrival float64
}

// Node is one LST participant.
type Node struct {
	node.Base

	status Status
	phase  Phase

	slotTimer   float64
	slotCount   int
	lstTimeslot float64
	sndSpeed    float64

	neighbors map[string]geom.Vec3

	positionEstimate geom.Vec3
	havePosition     bool

	timestamp      float64
	calculator     *collector.Collector
	anchorCount    int
	repliedAnchors map[string]struct{}

	pendingReplies []pendingReply

	toaMin       int
	toaIterMax   int
	toaThreshold float64
}

// NewNode creates an LST participant. slotCount is the total number
// of LST nodes in the network; id picks this node's own slot. If
// localized is true, position is taken as the node's true, known
// position; estimatedStart seeds the ToA solver's initial guess for
// unlocalized nodes (a prior estimate known to be roughly correct;
// raw ToA can otherwise converge to the wrong root).
func NewNode(id int, slotCount int, position geom.Vec3, localized bool, estimatedStart geom.Vec3, sndSpeed, lstTimeslot float64, toaIterMax int, toaThreshold float64) *Node {
	n := &Node{
		Base:         node.NewBase("node-"+strconv.Itoa(id), position),
		slotTimer:    float64(id),
		slotCount:    slotCount,
		lstTimeslot:  lstTimeslot,
		sndSpeed:     sndSpeed,
		neighbors:    make(map[string]geom.Vec3),
		toaMin:       minNeighbors,
		toaIterMax:   toaIterMax,
		toaThreshold: toaThreshold,
	}
	if localized {
		n.status = StatusLocalized
		n.phase = PhaseNew
		n.positionEstimate = position
		n.havePosition = true
	} else {
		n.status = StatusUnlocalized
		n.phase = PhaseWaiting
		n.positionEstimate = estimatedStart
	}
	return n
}

func (n *Node) Status() Status { return n.status }
func (n *Node) Phase() Phase   { return n.phase }

func (n *Node) Tick(time float64) string {
	timeslotOpen := false
	if time/n.lstTimeslot > n.slotTimer {
		n.slotTimer += float64(n.slotCount)
		timeslotOpen = true
	}

	switch n.status {
	case StatusUnlocalized:
		switch n.phase {
		case PhaseReady:
			if timeslotOpen {
				n.phase = PhaseLocalizing
				n.timestamp = time
				n.calculator = collector.NewToACollector(n.toaMin, n.sndSpeed, func() geom.Vec3 { return n.positionEstimate }, n.toaIterMax, n.toaThreshold)
				n.anchorCount = 0
				n.repliedAnchors = make(map[string]struct{})
				return node.Format(n.Name(), verbCall)
			}

		case PhaseLocalizing:
			if time > n.timestamp+n.lstTimeslot {
				p, err := n.calculator.GetPosition(false)
				if err == nil {
					n.status = StatusLocalized
					n.phase = PhaseNew
					n.positionEstimate = p
					n.havePosition = true
				} else if n.anchorCount < len(n.neighbors) {
					n.phase = PhaseReady
				} else {
					n.phase = PhaseWaiting
				}
				n.calculator = nil
			}
		}

	case StatusLocalized:
		if n.phase == PhaseNew && timeslotOpen {
			n.phase = PhaseIdle
			p := n.positionEstimate
			return node.Format(n.Name(), verbPosition, node.FormatFloat(p.X), node.FormatFloat(p.Y), node.FormatFloat(p.Z))
		}
		if len(n.pendingReplies) > 0 {
			r := n.pendingReplies[0]
			n.pendingReplies = n.pendingReplies[1:]
			return node.Format(n.Name(), verbReply, r.caller, node.FormatFloat(time-r.arrival))
		}
	}
	return ""
}

func (n *Node) Receive(time float64, message string) string {
	env, ok := node.Parse(message)
	if !ok {
		return ""
	}
	switch env.Verb {
	case verbPosition:
		n.receivePosition(env.Sender, env.Fields)
	case verbCall:
		n.receiveCall(time, env.Sender)
	case verbReply:
		n.receiveReply(time, env.Sender, env.Fields)
	}
	return ""
}

func (n *Node) receivePosition(sender string, data []string) {
	if len(data) != 3 {
		return
	}
	x, errX := node.ParseFloat(data[0])
	y, errY := node.ParseFloat(data[1])
	z, errZ := node.ParseFloat(data[2])
	if errX != nil || errY != nil || errZ != nil {
		return
	}
	n.neighbors[sender] = geom.Vec3{X: x, Y: y, Z: z}

	if n.status == StatusUnlocalized && n.phase == PhaseWaiting && len(n.neighbors) >= minNeighbors {
		n.phase = PhaseReady
	}
}

func (n *Node) receiveCall(time float64, sender string) {
	if n.status == StatusLocalized && n.phase == PhaseIdle {
		n.pendingReplies = append(n.pendingReplies, pendingReply{caller: sender, arrival: time})
	}
}

func (n *Node) receiveReply(time float64, sender string, data []string) {
	if len(data) != 2 {
		return
	}
	recipient := data[0]
	delay, errD := node.ParseFloat(data[1])
	if errD != nil {
		return
	}
	if n.status != StatusUnlocalized || n.phase != PhaseLocalizing || recipient != n.Name() {
		return
	}
	pos, ok := n.neighbors[sender]
	if !ok {
		return
	}
	n.calculator.AddAnchor(sender, pos)
	n.calculator.AddDataPoint(0, sender, collector.Payload{time - n.timestamp, delay})
	if _, already := n.repliedAnchors[sender]; !already {
		n.repliedAnchors[sender] = struct{}{}
		n.anchorCount++
	}
}

// EstimatedPosition returns the node's resolved position, if any.
func (n *Node) EstimatedPosition() (geom.Vec3, bool) {
	return n.positionEstimate, n.havePosition
}

var _ node.Node = (*Node)(nil)
