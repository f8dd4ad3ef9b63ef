package core

import (
	"container/heap"

	"github.com/rfsouza/uasn/pkg/uasn/node"
)

// EventKind distinguishes the two event shapes the scheduler handles.
type EventKind int

const (
	// EventTick polls every node once.
	EventTick EventKind = iota

	// EventDelivery delivers one broadcast message to one recipient.
	EventDelivery
)

// Event is a single scheduler entry: a time, a kind, and, for
// deliveries, the recipient and message. Seq is the monotonically
// increasing insertion counter that breaks same-time ties; without it,
// heap ordering among equal times would depend on insertion history
// and replays would diverge.
type Event struct {
	Time      float64
	Kind      EventKind
	Recipient node.Node
	Message   string
	Seq       uint64
}

// eventHeap is the container/heap.Interface realization of the
// (time, seq) min-heap.
type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].Seq < h[j].Seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x interface{}) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	ev := old[n-1]
	*h = old[:n-1]
	return ev
}

// EventQueue is the scheduler's priority queue, ordered by (Time, Seq).
// It is not safe for concurrent use; the simulation's single-threaded
// cooperative model never needs it to be.
type EventQueue struct {
	h       eventHeap
	nextSeq uint64
}

// NewEventQueue returns an empty queue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{h: make(eventHeap, 0)}
	heap.Init(&q.h)
	return q
}

// Push schedules ev, stamping it with the next insertion sequence
// number and returning that number.
func (q *EventQueue) Push(ev Event) uint64 {
	ev.Seq = q.nextSeq
	q.nextSeq++
	heap.Push(&q.h, ev)
	return ev.Seq
}

// Pop removes and returns the earliest-time, earliest-inserted event.
// ok is false if the queue is empty.
func (q *EventQueue) Pop() (ev Event, ok bool) {
	if q.h.Len() == 0 {
		return Event{}, false
	}
	return heap.Pop(&q.h).(Event), true
}

// Len reports the number of pending events.
func (q *EventQueue) Len() int { return q.h.Len() }
