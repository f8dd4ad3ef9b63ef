// Package ups implements the UPS (Underwater Positioning System)
// protocol: a fixed master anchor initiates a beaconing cycle, three
// further anchors relay it in priority order, and sensor nodes
// multilaterate from the relay timing using the closed-form TDOA
// solver.
package ups

import (
	"math"
	"strconv"

	"github.com/rfsouza/uasn/pkg/uasn/collector"
	"github.com/rfsouza/uasn/pkg/uasn/geom"
	"github.com/rfsouza/uasn/pkg/uasn/node"
)

// verbBeacon is the only message this protocol sends: sequence number,
// beaconing priority, the anchor's position and the relay delay it
// measured, all whitespace-tokenized.
const verbBeacon = "beacon"

// AnchorNode relays the beacon one priority level down the chain. It
// never transmits until it has heard from the anchor immediately
// before it in priority.
type AnchorNode struct {
	node.Base

	priority  int
	sndSpeed  float64
	beaconSeq int

	distanceToPrevious float64
	haveDistance       bool
	timeOrigin         float64
	haveOrigin         bool
}

// NewAnchorNode creates an anchor at the given priority (0 is the
// master, handled by MasterAnchorNode instead).
func NewAnchorNode(name string, position geom.Vec3, priority int, sndSpeed float64) *AnchorNode {
	return &AnchorNode{
		Base:     node.NewBase(name, position),
		priority: priority,
		sndSpeed: sndSpeed,
	}
}

func (a *AnchorNode) Tick(time float64) string {
	if !a.haveOrigin {
		return ""
	}
	delay := time - a.timeOrigin
	p := a.Position()
	msg := node.Format(a.Name(), verbBeacon,
		strconv.Itoa(a.beaconSeq), strconv.Itoa(a.priority),
		node.FormatFloat(p.X), node.FormatFloat(p.Y), node.FormatFloat(p.Z),
		node.FormatFloat(delay))
	a.haveOrigin = false
	return msg
}

func (a *AnchorNode) Receive(time float64, message string) string {
	env, ok := node.Parse(message)
	if !ok || env.Verb != verbBeacon || len(env.Fields) != 6 {
		return ""
	}
	priority, err := strconv.Atoi(env.Fields[1])
	if err != nil || priority+1 != a.priority {
		return ""
	}
	seq, err := strconv.Atoi(env.Fields[0])
	if err != nil {
		return ""
	}
	x, errX := node.ParseFloat(env.Fields[2])
	y, errY := node.ParseFloat(env.Fields[3])
	z, errZ := node.ParseFloat(env.Fields[4])
	delay, errD := node.ParseFloat(env.Fields[5])
	if errX != nil || errY != nil || errZ != nil || errD != nil {
		return ""
	}

	a.beaconSeq = seq
	if !a.haveDistance {
		a.distanceToPrevious = geom.Distance(a.Position(), geom.Vec3{X: x, Y: y, Z: z})
		a.haveDistance = true
	}
	a.timeOrigin = time - a.distanceToPrevious/a.sndSpeed - delay
	a.haveOrigin = true
	return ""
}

// MasterAnchorNode is priority 0: it starts a new beacon cycle every
// UpsPeriod seconds, up to UpsNumber cycles.
type MasterAnchorNode struct {
	AnchorNode

	period         float64
	maxCycles      int
	nextBeaconTime float64
}

// NewMasterAnchorNode creates the cycle-initiating anchor.
func NewMasterAnchorNode(name string, position geom.Vec3, sndSpeed, period float64, maxCycles int) *MasterAnchorNode {
	return &MasterAnchorNode{
		AnchorNode: *NewAnchorNode(name, position, 0, sndSpeed),
		period:     period,
		maxCycles:  maxCycles,
	}
}

func (m *MasterAnchorNode) Tick(time float64) string {
	if time < m.nextBeaconTime || m.beaconSeq >= m.maxCycles {
		return ""
	}
	m.timeOrigin = time
	m.haveOrigin = true
	msg := m.AnchorNode.Tick(time)
	m.nextBeaconTime += m.period
	m.beaconSeq++
	return msg
}

// sensorTimeout is the silence period after which a sensor that has
// heard at least one beacon this cycle gives up waiting for the rest.
const sensorTimeout = 5.0

// SensorNode accumulates beacon timing into a UPS collector and
// resolves its position once sensorTimeout seconds pass without a new
// beacon.
type SensorNode struct {
	node.Base

	collector   *collector.Collector
	timeout     float64
	estimate    geom.Vec3
	lastErr     error
	lastSuccess bool
}

// NewSensorNode creates an unlocalized sensor. position is where the
// node actually is (for evaluating error against later); the protocol
// itself never reads it except through the embedded Base contract.
func NewSensorNode(name string, position geom.Vec3, sndSpeed, simRange float64) *SensorNode {
	return &SensorNode{
		Base:      node.NewBase(name, position),
		collector: collector.NewUPSCollector(sndSpeed, simRange),
		timeout:   math.Inf(1),
	}
}

func (s *SensorNode) Tick(time float64) string {
	if time >= s.timeout {
		p, err := s.collector.GetPosition(false)
		s.lastErr = err
		s.lastSuccess = err == nil
		if err == nil {
			s.estimate = p
		}
		s.timeout = math.Inf(1)
	}
	return ""
}

func (s *SensorNode) Receive(time float64, message string) string {
	env, ok := node.Parse(message)
	if !ok || env.Verb != verbBeacon || len(env.Fields) != 6 {
		return ""
	}
	seq, errSeq := strconv.Atoi(env.Fields[0])
	anchor, errAnchor := strconv.Atoi(env.Fields[1])
	delay, errDelay := node.ParseFloat(env.Fields[5])
	x, errX := node.ParseFloat(env.Fields[2])
	y, errY := node.ParseFloat(env.Fields[3])
	z, errZ := node.ParseFloat(env.Fields[4])
	if errSeq != nil || errAnchor != nil || errDelay != nil || errX != nil || errY != nil || errZ != nil {
		return ""
	}

	s.collector.AddAnchor(strconv.Itoa(anchor), geom.Vec3{X: x, Y: y, Z: z})
	s.collector.AddDataPoint(seq, strconv.Itoa(anchor), collector.Payload{time, delay})
	s.timeout = time + sensorTimeout
	return ""
}

// EstimatedPosition returns the sensor's last resolved position and
// whether the most recent resolution attempt succeeded.
func (s *SensorNode) EstimatedPosition() (geom.Vec3, bool) {
	return s.estimate, s.lastSuccess
}

// LastError is the error from the most recent GetPosition attempt, nil
// on success or before any resolution attempt has been made.
func (s *SensorNode) LastError() error { return s.lastErr }

var _ node.Node = (*AnchorNode)(nil)
var _ node.Node = (*MasterAnchorNode)(nil)
var _ node.Node = (*SensorNode)(nil)
