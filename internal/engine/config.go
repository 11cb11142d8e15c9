package engine

import (
	"log/slog"
	"math"

	"github.com/roach88/beatline/internal/ir"
)

// RenderConfig configures one render session.
type RenderConfig struct {
	// Speed is the host's scroll speed. The Transport stores it but never
	// uses it in position math.
	Speed float64 `yaml:"speed"`

	// InstantiationProximity is how far ahead of the current position, in
	// measures, an event is handed to Host.Instantiate. 0 instantiates
	// every event on the first tick.
	InstantiationProximity float64 `yaml:"instantiation_proximity"`

	// RenderDelay is the pre-roll in measures before position 0.
	RenderDelay float64 `yaml:"render_delay"`
}

// DefaultRenderConfig returns the configuration used when none is given.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Speed:                  1.0,
		InstantiationProximity: 2.0,
		RenderDelay:            1.0,
	}
}

// Validate rejects negative or non-finite distances.
func (c RenderConfig) Validate() error {
	if c.InstantiationProximity < 0 || math.IsNaN(c.InstantiationProximity) {
		return ir.NewConfigError(ir.ErrCodeInvalidWindow,
			"instantiation proximity must be non-negative, got %g", c.InstantiationProximity)
	}
	if c.RenderDelay < 0 || math.IsNaN(c.RenderDelay) || math.IsInf(c.RenderDelay, 0) {
		return ir.NewConfigError(ir.ErrCodeInvalidWindow,
			"render delay must be finite and non-negative, got %g", c.RenderDelay)
	}
	return nil
}

type options struct {
	logger   *slog.Logger
	sessions SessionIDGenerator
	seq      *Clock
}

// Option configures a Transport.
type Option func(*options)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithSessionIDs sets the session id generator. Default: UUIDv7Generator.
func WithSessionIDs(g SessionIDGenerator) Option {
	return func(o *options) {
		o.sessions = g
	}
}

// WithSeqClock sets the logical clock stamping notifications.
func WithSeqClock(c *Clock) Option {
	return func(o *options) {
		o.seq = c
	}
}
