package chart

import (
	"github.com/roach88/beatline/internal/ir"
)

// Hash returns the content hash of the chart. Two charts with the same
// metadata, levels, and sorted events hash identically regardless of the
// order events were added in (ties aside).
func (c *Chart) Hash() (string, error) {
	return ir.ContentHash(ir.DomainChart, c.canonical())
}

func (c *Chart) canonical() map[string]any {
	difficulties := make(map[string]any, len(c.order))
	for _, d := range c.order {
		events := c.Events(d)
		items := make([]any, 0, len(events))
		for _, ev := range events {
			items = append(items, canonicalEvent(ev))
		}
		difficulties[string(d)] = map[string]any{
			"level":  c.Level(d),
			"events": items,
		}
	}
	return map[string]any{
		"schema":       ir.SchemaVersion,
		"title":        c.Title,
		"artist":       c.Artist,
		"bpm":          c.BPM,
		"difficulties": difficulties,
	}
}

func canonicalEvent(ev ir.Event) map[string]any {
	out := map[string]any{
		"id":       ev.ID(),
		"kind":     ev.Kind().String(),
		"position": ev.Position(),
	}
	switch e := ev.(type) {
	case ir.Tempo:
		out["bpm"] = e.BPM()
		out["skip"] = e.Skip()
		out["stop"] = e.Stop()
	case ir.ChannelEvent:
		out["channel"] = int32(e.ChannelID())
		out["playable"] = e.Playable()
		if s, ok := e.(interface{ SampleID() (string, bool) }); ok {
			if id, has := s.SampleID(); has {
				out["sample"] = id
			}
		}
	}
	return out
}
