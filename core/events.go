package core

import "sync/atomic"

// EventKind identifies what an Event records
type EventKind uint8

const (
	EvtNone EventKind = iota
	EvtModeChange
	EvtButtonPress
	EvtButtonClick
	EvtButtonRelease
	EvtButtonHold
	EvtWaveStart
	EvtWaveStop
	EvtSequenceStart
	EvtSequenceStop
	EvtSequenceStep
	EvtPause
	EvtResume
	EvtFault
)

var eventNames = [...]string{
	EvtNone:          "NONE",
	EvtModeChange:    "MODE",
	EvtButtonPress:   "PRESS",
	EvtButtonClick:   "CLICK",
	EvtButtonRelease: "RELEASE",
	EvtButtonHold:    "HOLD",
	EvtWaveStart:     "WAVE_START",
	EvtWaveStop:      "WAVE_STOP",
	EvtSequenceStart: "SEQ_START",
	EvtSequenceStop:  "SEQ_STOP",
	EvtSequenceStep:  "SEQ_STEP",
	EvtPause:         "PAUSE",
	EvtResume:        "RESUME",
	EvtFault:         "FAULT!",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "UNKNOWN"
}

// Event is a timestamped record of something the dispatcher did
type Event struct {
	Kind  EventKind
	Clock uint32
	Value uint32
}

// EventRingSize is how many events the post-mortem ring keeps
const EventRingSize = 32

// EventRing keeps the last EventRingSize events. Record never blocks or
// allocates, so it is safe from the tick interrupt.
type EventRing struct {
	buf   [EventRingSize]Event
	head  uint8
	total uint32
}

// Record stores an event, overwriting the oldest one
func (r *EventRing) Record(kind EventKind, clock, value uint32) {
	r.buf[r.head] = Event{Kind: kind, Clock: clock, Value: value}
	r.head = (r.head + 1) % EventRingSize
	r.total++
}

// Total returns how many events were ever recorded
func (r *EventRing) Total() uint32 { return r.total }

// Snapshot returns the recorded events, oldest first
func (r *EventRing) Snapshot() []Event {
	out := make([]Event, 0, EventRingSize)
	for i := uint8(0); i < EventRingSize; i++ {
		evt := r.buf[(r.head+i)%EventRingSize]
		if evt.Kind == EvtNone {
			continue
		}
		out = append(out, evt)
	}
	return out
}

// Clear empties the ring
func (r *EventRing) Clear() {
	*r = EventRing{}
}

// Dump writes the ring to w, oldest first
func (r *EventRing) Dump(w DebugWriter) {
	if w == nil {
		return
	}
	w("[EVENTS] === Event Ring Dump ===")
	w("[EVENTS] Total events: " + utoa(r.total))
	for _, evt := range r.Snapshot() {
		w("[EVENTS] " + evt.Kind.String() +
			" clock=" + utoa(evt.Clock) +
			" v=" + utoa(evt.Value))
	}
	w("[EVENTS] === End Dump ===")
}

// EventQueue hands events from the tick interrupt to the main loop.
// Push never blocks; events that do not fit are counted and dropped.
type EventQueue struct {
	ch      chan Event
	dropped uint32
}

func NewEventQueue(depth int) *EventQueue {
	if depth <= 0 {
		depth = 1
	}
	return &EventQueue{ch: make(chan Event, depth)}
}

// Push enqueues ev, reporting false if it was dropped
func (q *EventQueue) Push(ev Event) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		atomic.AddUint32(&q.dropped, 1)
		return false
	}
}

// C returns the receive side of the queue
func (q *EventQueue) C() <-chan Event { return q.ch }

// Dropped returns the number of events lost to a full queue
func (q *EventQueue) Dropped() uint32 { return atomic.LoadUint32(&q.dropped) }
