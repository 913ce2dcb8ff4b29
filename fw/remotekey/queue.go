// Package remotekey implements the firmware-side remote key injection core: a
// bounded queue of host-submitted key events, enqueue-time validation against
// the predicted post-queue state, and the per-tick drain that presents an
// injected key to the keyboard path without ever violating the physical key
// state machine.
//
// The enqueue side runs in command-dispatch context, the drain side in the
// main input loop. Both are O(1), allocation-free and non-blocking; on this
// preemptive target the shared ring indices are guarded by a short critical
// section.
package remotekey

import (
	"sync"

	"k5remote/keys"
	"k5remote/wire"
)

const (
	// QueueSize is the fixed event capacity.
	QueueSize = 16

	// DefaultHoldTicks is the minimum number of input ticks an injected
	// press stays visible before a queued release may clear it. It keeps a
	// press+release pair submitted back-to-back long enough on the wire
	// for the debounced keyboard consumer to observe the press.
	DefaultHoldTicks = 3
)

// Status is the outcome of an enqueue attempt.
type Status uint8

const (
	Accepted Status = iota
	Busy
	Invalid
)

func (s Status) String() string {
	switch s {
	case Accepted:
		return "accepted"
	case Busy:
		return "busy"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

type event struct {
	key    keys.Code
	action wire.Action
}

// Queue is the remote key event queue. The zero value is not ready; use New.
type Queue struct {
	mu sync.Mutex

	events [QueueSize]event
	head   uint8
	tail   uint8
	depth  uint8

	// predicted is the key that would be logically down once every queued
	// event has been applied in order. Enqueue validates against it.
	predicted keys.Code

	// injected is the key currently presented to the merge step.
	injected  keys.Code
	holdTicks uint8
	holdLeft  uint8
}

// New returns an empty queue with the given minimum hold duration.
func New(holdTicks uint8) *Queue {
	return &Queue{
		predicted: keys.KeyInvalid,
		injected:  keys.KeyInvalid,
		holdTicks: holdTicks,
	}
}

// Validate decides whether a (key, action) pair is legal given the predicted
// post-queue key. It is a pure predicate: the virtual PTT and anything outside
// the keypad are rejected, a press requires no outstanding logical press, and
// a release must name the key that is predicted to be down.
func Validate(key keys.Code, action wire.Action, predicted keys.Code) Status {
	if !key.Valid() || key == keys.KeyPTT {
		return Invalid
	}
	switch action {
	case wire.ActionPress:
		if predicted != keys.KeyInvalid {
			return Invalid
		}
	case wire.ActionRelease:
		if predicted != key {
			return Invalid
		}
	default:
		return Invalid
	}
	return Accepted
}

// Enqueue validates and appends one event. Called from command-dispatch
// context; it never blocks and touches the ring only on acceptance. A full
// queue rejects the new event (Busy) rather than evicting accepted ones.
func (q *Queue) Enqueue(key keys.Code, action wire.Action) Status {
	q.mu.Lock()
	defer q.mu.Unlock()

	if st := Validate(key, action, q.predicted); st != Accepted {
		return st
	}
	if q.depth >= QueueSize {
		return Busy
	}

	q.events[q.tail] = event{key: key, action: action}
	q.tail = (q.tail + 1) % QueueSize
	q.depth++

	if action == wire.ActionPress {
		q.predicted = key
	} else {
		q.predicted = keys.KeyInvalid
	}
	return Accepted
}

// DrainOneTick advances the injected state by at most one transition. Called
// once per input tick from the main loop, never from dispatch context.
//
// A press at the head is applied immediately and arms the hold timer. A
// release stays at the head until the timer has run out, so every injected
// press is visible for at least the minimum hold window.
func (q *Queue) DrainOneTick() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.holdLeft > 0 {
		q.holdLeft--
	}
	if q.depth == 0 {
		return
	}

	ev := q.events[q.head]
	if ev.action == wire.ActionPress {
		q.injected = ev.key
		q.holdLeft = q.holdTicks
		q.pop()
		return
	}
	if q.holdLeft == 0 {
		q.injected = keys.KeyInvalid
		q.pop()
	}
}

func (q *Queue) pop() {
	q.head = (q.head + 1) % QueueSize
	q.depth--
}

// Depth returns the number of queued, undrained events.
func (q *Queue) Depth() uint8 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.depth
}

// Injected returns the key currently presented to the merge step.
func (q *Queue) Injected() keys.Code {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.injected
}

// Merge combines the physical scan with the injected key. The physical
// keyboard always wins; injection only fills in when the scanner reports
// nothing.
func Merge(physical, injected keys.Code) keys.Code {
	if physical != keys.KeyInvalid {
		return physical
	}
	return injected
}
