package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"

	"github.com/roach88/beatline/internal/ir"
)

func TestDefaultRenderConfig(t *testing.T) {
	cfg := DefaultRenderConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 1.0, cfg.Speed)
	assert.Equal(t, 2.0, cfg.InstantiationProximity)
	assert.Equal(t, 1.0, cfg.RenderDelay)
}

func TestRenderConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  RenderConfig
	}{
		{"negative proximity", RenderConfig{InstantiationProximity: -0.5}},
		{"nan proximity", RenderConfig{InstantiationProximity: math.NaN()}},
		{"negative delay", RenderConfig{RenderDelay: -1}},
		{"infinite delay", RenderConfig{RenderDelay: math.Inf(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, ir.HasConfigCode(tt.cfg.Validate(), ir.ErrCodeInvalidWindow))
		})
	}
}

func TestRenderConfig_YAML(t *testing.T) {
	var cfg RenderConfig
	err := yaml.Unmarshal([]byte("speed: 2.5\ninstantiation_proximity: 0\nrender_delay: 0.5\n"), &cfg)
	assert.NoError(t, err)
	assert.Equal(t, RenderConfig{Speed: 2.5, RenderDelay: 0.5}, cfg)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "rendering", StatusRendering.String())
	assert.Equal(t, "unknown", Status(9).String())
}
