package engine

import "github.com/roach88/beatline/internal/ir"

// Record is one judgment outcome, in the order it was committed.
type Record[A comparable] struct {
	Seq    int64
	Event  ir.Event
	Result ir.Result[A]
	Hits   int
}

// Host is the application side of a render session.
//
// Instantiate and Execute are called from inside Tick in event position
// order. The handle returned by Instantiate is tracked but never destroyed
// by the Transport. The notification methods may call back into the
// Transport (for example to judge an exceeded note at the lowest accuracy).
type Host[A comparable] interface {
	// Instantiate creates the host object for an upcoming event.
	Instantiate(ev ir.Event, state ir.RenderState) any

	// Execute runs a due non-playable event. Tempo events have already
	// been applied to the Transport when Execute is called.
	Execute(ev ir.Event, state ir.RenderState)

	// Judged reports a committed judgment.
	Judged(rec Record[A])

	// ProximityExceeded reports a playable event that can no longer be
	// judged above the lowest accuracy. It repeats every tick until the
	// event is completed.
	ProximityExceeded(seq int64, ev ir.Event)

	// Completed reports that every event has been resolved.
	Completed(seq int64)
}

// NopHost implements Host with no-ops. Embed it to override a subset.
type NopHost[A comparable] struct{}

func (NopHost[A]) Instantiate(ir.Event, ir.RenderState) any { return nil }
func (NopHost[A]) Execute(ir.Event, ir.RenderState) {}
func (NopHost[A]) Judged(Record[A]) {}
func (NopHost[A]) ProximityExceeded(int64, ir.Event) {}
func (NopHost[A]) Completed(int64) {}
