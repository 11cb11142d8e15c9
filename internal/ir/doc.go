// Package ir provides the immutable domain model shared by every beatline
// package.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps the model the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Events are values. Note and Tempo have unexported fields and
//     copy-returning builders, so a chart's events cannot be mutated after
//     they are handed to a Transport.
//   - Event IDs are caller-assigned and must be unique within a rendered
//     event set. Collisions are not detected here.
//   - Positions are measures: integer part = measure index, fraction =
//     offset inside the measure.
//   - Canonical JSON (canonical.go) is the only serialization used for
//     content hashing.
package ir
