// Package tracker keeps the mutable lifecycle of each event in a render
// session, separate from the immutable event itself.
//
// Lifecycle: pending -> instantiated -> completed. Completed is terminal
// for the engine, but the record itself does not enforce it: Complete
// overwrites silently, so callers check Completed first.
package tracker

import (
	"github.com/roach88/beatline/internal/ir"
)

// EventState is the lifecycle record of one event.
type EventState[A comparable] struct {
	event        ir.Event
	instantiated bool
	completed    bool
	result       *ir.Result[A]
	handle       any
}

// Event returns the tracked event.
func (s *EventState[A]) Event() ir.Event { return s.event }

// Instantiated reports whether the host attached a handle.
func (s *EventState[A]) Instantiated() bool { return s.instantiated }

// Completed reports whether the event reached its terminal state.
func (s *EventState[A]) Completed() bool { return s.completed }

// Handle returns the host handle attached at instantiation, if any.
func (s *EventState[A]) Handle() any { return s.handle }

// Result returns the judgment result, present only when completion was
// judgment-driven.
func (s *EventState[A]) Result() (ir.Result[A], bool) {
	if s.result == nil {
		var zero ir.Result[A]
		return zero, false
	}
	return *s.result, true
}

// MarkInstantiated records that the host created a handle for the event.
// Calling it again replaces the handle.
func (s *EventState[A]) MarkInstantiated(handle any) {
	s.instantiated = true
	s.handle = handle
}

// Complete marks the event completed without a judgment result.
func (s *EventState[A]) Complete() {
	s.completed = true
}

// CompleteWith marks the event completed with a judgment result.
// A second call overwrites the stored result.
func (s *EventState[A]) CompleteWith(result ir.Result[A]) {
	s.completed = true
	s.result = &result
}

// Tracker owns the EventState records of one render session, keyed by
// event ID.
type Tracker[A comparable] struct {
	states map[int64]*EventState[A]
}

// New creates an empty tracker.
func New[A comparable]() *Tracker[A] {
	return &Tracker[A]{states: make(map[int64]*EventState[A])}
}

// GetOrCreate returns the state for ev, creating it on first access.
// Idempotent by ID: two events sharing an ID share a state.
func (t *Tracker[A]) GetOrCreate(ev ir.Event) *EventState[A] {
	if s, ok := t.states[ev.ID()]; ok {
		return s
	}
	s := &EventState[A]{event: ev}
	t.states[ev.ID()] = s
	return s
}

// Get returns the state for an event ID if it was ever accessed.
func (t *Tracker[A]) Get(id int64) (*EventState[A], bool) {
	s, ok := t.states[id]
	return s, ok
}

// Len returns the number of tracked states.
func (t *Tracker[A]) Len() int {
	return len(t.states)
}

// Reset drops all states. Used when a new render session begins.
func (t *Tracker[A]) Reset() {
	t.states = make(map[int64]*EventState[A])
}
