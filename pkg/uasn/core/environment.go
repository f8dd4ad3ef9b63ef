// Package core implements the discrete-event acoustic simulation
// kernel: the event queue (event.go) and the Environment that owns the
// nodes, the speed-of-sound field and the queue, and drives the
// tick/broadcast/deliver loop. The simulation is a single cooperative
// thread of simulated time; there is no transport goroutine and no
// channel, just a loop popping queue events and handing messages to
// Nodes.
package core

import (
	"github.com/rfsouza/uasn/pkg/uasn/field"
	"github.com/rfsouza/uasn/pkg/uasn/geom"
	"github.com/rfsouza/uasn/pkg/uasn/node"
	"github.com/rfsouza/uasn/pkg/uasn/randsrc"
	"github.com/rfsouza/uasn/pkg/uasn/types"
)

// Metrics is the hook the environment reports simulation activity
// through. definition.Metrics implements it on top of a prometheus
// registry; a nil Metrics is a valid no-op.
type Metrics interface {
	Tick()
	Broadcast()
	Delivery(latency float64)
	Drop()
}

// BroadcastRecord is one entry of the environment's broadcast trace:
// what was sent, by whom, and when. Two environments built from the
// same seed and the same nodes produce identical traces.
type BroadcastRecord struct {
	Time    float64
	Sender  string
	Message string
}

// RunOptions configures a single Run call.
type RunOptions struct {
	// Verbose logs every broadcast and delivery through the
	// environment's logger.
	Verbose bool

	// SnapshotInterval, if positive, logs a node-count/time snapshot
	// line every SnapshotInterval seconds of simulated time.
	SnapshotInterval float64
}

// Stats summarizes one Run call.
type Stats struct {
	Ticks      uint64
	Broadcasts uint64
	Deliveries uint64
	Drops      uint64
}

// Environment owns every node, the speed-of-sound field and the event
// queue for one simulation run. Nothing outside Environment mutates a
// node except the node itself, from inside its own Tick/Receive.
type Environment struct {
	bounds field.Bounds
	params types.Params

	nodes []node.Node
	field *field.Field
	queue *EventQueue
	rng   *randsrc.Source

	logger  types.Logger
	metrics Metrics

	trace []BroadcastRecord
}

// New creates an Environment over a (maxX, maxY, dimZ) volume (dimZ is
// the depth magnitude; the valid z range is [-dimZ, 0]).
func New(maxX, maxY, dimZ float64, params types.Params, seed int64, logger types.Logger, metrics Metrics) *Environment {
	bounds := field.Bounds{MaxX: maxX, MaxY: maxY, MinZ: -dimZ}
	rng := randsrc.NewSource(seed)
	return &Environment{
		bounds:  bounds,
		params:  params,
		field:   field.New(params.SimTick, params.SndVar, rng.Sub()),
		queue:   NewEventQueue(),
		rng:     rng,
		logger:  logger,
		metrics: metrics,
	}
}

// AddNode registers n with the environment. If n's current position is
// out of [0,maxX]x[0,maxY]x[minZ,0], a uniformly random in-bounds
// position is assigned instead.
func (e *Environment) AddNode(n node.Node) {
	p := n.Position()
	if !p.InBounds(e.bounds.MaxX, e.bounds.MaxY, e.bounds.MinZ) {
		p = geom.Vec3{
			X: e.rng.Uniform(0, e.bounds.MaxX),
			Y: e.rng.Uniform(0, e.bounds.MaxY),
			Z: e.rng.Uniform(e.bounds.MinZ, 0),
		}
		n.SetPosition(p)
	}
	e.nodes = append(e.nodes, n)
}

// Nodes returns the registered nodes, in insertion order.
func (e *Environment) Nodes() []node.Node { return e.nodes }

// Trace returns the recorded (time, sender, message) broadcast
// triples for the run just completed.
func (e *Environment) Trace() []BroadcastRecord { return e.trace }

// Run drives the simulation until the next event's time exceeds
// horizon: seed one Tick at t=0; on each Tick, poll every node in
// insertion order, broadcast any non-empty reply, then push the next
// Tick and relax the field; on each Delivery, call the recipient's
// Receive and broadcast any non-empty reply. Messages emitted from a
// tick are scheduled before the next Tick is enqueued, so same-time
// deliveries precede it.
func (e *Environment) Run(horizon float64, opts RunOptions) Stats {
	var stats Stats
	nextSnapshot := opts.SnapshotInterval

	e.queue.Push(Event{Time: 0, Kind: EventTick})

	for {
		ev, ok := e.queue.Pop()
		if !ok || ev.Time > horizon {
			break
		}

		if opts.SnapshotInterval > 0 && ev.Time >= nextSnapshot {
			e.logger.Infof("snapshot t=%.3f nodes=%d", ev.Time, len(e.nodes))
			nextSnapshot += opts.SnapshotInterval
		}

		switch ev.Kind {
		case EventTick:
			stats.Ticks++
			if e.metrics != nil {
				e.metrics.Tick()
			}
			for _, n := range e.nodes {
				msg := n.Tick(ev.Time)
				if msg != "" {
					if opts.Verbose {
						e.logger.Infof("%.3f >> %s", ev.Time, msg)
					}
					e.broadcast(ev.Time, n.Name(), n.Position(), msg, &stats)
				}
			}
			e.queue.Push(Event{Time: ev.Time + e.params.SimTick, Kind: EventTick})
			e.field.Relax(e.params.SimTick, e.params.SndVar, e.rng.Sub())

		case EventDelivery:
			stats.Deliveries++
			if opts.Verbose {
				e.logger.Infof("%.3f    %s >> %s", ev.Time, ev.Message, ev.Recipient.Name())
			}
			msg := ev.Recipient.Receive(ev.Time, ev.Message)
			if msg != "" {
				e.broadcast(ev.Time, ev.Recipient.Name(), ev.Recipient.Position(), msg, &stats)
			}
		}
	}
	return stats
}

// broadcast schedules a Delivery for every node other than the sender
// within SimRange, dropping each independently with probability
// SimLoss. The speed of sound used to time each delivery is sampled at
// the recipient's position by default, or the sender's, per
// params.DeliveryPositionPolicy.
func (e *Environment) broadcast(time float64, senderName string, from geom.Vec3, message string, stats *Stats) {
	stats.Broadcasts++
	e.trace = append(e.trace, BroadcastRecord{Time: time, Sender: senderName, Message: message})
	if e.metrics != nil {
		e.metrics.Broadcast()
	}

	for _, n := range e.nodes {
		d := geom.Distance(n.Position(), from)
		if d <= 0 || d > e.params.SimRange {
			continue
		}
		if e.rng.Uniform(0, 1) < e.params.SimLoss {
			stats.Drops++
			if e.metrics != nil {
				e.metrics.Drop()
			}
			continue
		}
		speedAt := n.Position()
		if e.params.DeliveryPositionPolicy == types.PolicySender {
			speedAt = from
		}
		speed := e.field.SpeedAt(speedAt, e.bounds, e.params.SndSpeed)
		delay := d / speed
		e.queue.Push(Event{Time: time + delay, Kind: EventDelivery, Recipient: n, Message: message})
		if e.metrics != nil {
			e.metrics.Delivery(delay)
		}
	}
}
