// Package engine implements the beatline Transport: the position state
// machine that turns wall-clock time into music position and drives the
// per-tick event lifecycle.
//
// ARCHITECTURE:
//
// Single-Writer Tick Loop:
// All state changes happen synchronously inside Tick, Judge, Pause and
// Resume, called from one owning goroutine. There is no internal
// parallelism and nothing blocks. Hosts embedding a Transport in a
// multi-threaded program must serialize every call.
//
// Tick Processing Order:
//  1. Capture the RenderState snapshot (position and tempo)
//  2. Refresh the judgment's cached snapshot
//  3. Walk events in position order, skipping completed ones:
//     update the front buffer, instantiate within proximity, execute due
//     non-playable events, report proximity-exceeded playable events
//  4. If nothing is outstanding, complete the render
//
// Position Formula:
//
//	raw = (now - referenceTime) / 240 * bpm + referencePosition
//
// Tempo events move referenceTime and referencePosition so raw stays
// continuous across BPM changes, jumps forward by skip, and freezes for
// the duration of a stop.
//
// CRITICAL PATTERNS:
//
// Logical Clock:
// Every host notification is stamped with a monotonic seq from Clock.Next().
// Wall-clock time only drives position, never ordering.
//
// Deterministic Scheduling:
// Events are visited in stable position order; host callbacks run inline in
// that order so the front buffer and judgment observe their effects in the
// same tick.
package engine
