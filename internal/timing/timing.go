// Package timing converts between music positions and seconds.
//
// A position is measured in measures. Every measure has a fixed four
// beats; time-signature changes are not supported. A bpm of zero is a
// caller error and is not guarded here.
package timing

import (
	"sort"
	"time"

	"github.com/roach88/beatline/internal/ir"
)

// BeatsPerMeasure is the fixed measure length.
const BeatsPerMeasure = 4

// PositionToSeconds converts a position span to seconds at bpm.
func PositionToSeconds(position, bpm float64) float64 {
	return position * BeatsPerMeasure * (60 / bpm)
}

// SecondsToPosition is the exact inverse of PositionToSeconds.
func SecondsToPosition(seconds, bpm float64) float64 {
	return seconds / (BeatsPerMeasure * (60 / bpm))
}

// Clock reports wall-clock time in seconds from an arbitrary origin.
// Only differences between readings are meaningful.
type Clock interface {
	Now() float64
}

// SystemClock reads the monotonic system clock.
type SystemClock struct {
	start time.Time
}

// NewSystemClock creates a clock whose origin is the moment of creation.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now returns the seconds elapsed since the clock was created.
func (c *SystemClock) Now() float64 {
	return time.Since(c.start).Seconds()
}

// SecondsAt returns how many seconds of playback it takes to reach
// position from position 0, given the starting bpm and the chart's tempo
// events. Skips cost no time and stops cost their hold. Tempos need not be
// sorted.
func SecondsAt(position, bpm float64, tempos []ir.Tempo) float64 {
	sorted := make([]ir.Tempo, len(tempos))
	copy(sorted, tempos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position() < sorted[j].Position()
	})

	var seconds, cursor float64
	for _, t := range sorted {
		if t.Position() > position {
			break
		}
		if t.Position() > cursor {
			seconds += PositionToSeconds(t.Position()-cursor, bpm)
			cursor = t.Position()
		}
		bpm = t.Inherit(bpm).BPM()
		cursor += t.Skip()
		seconds += PositionToSeconds(t.Stop(), bpm)
	}
	if position > cursor {
		seconds += PositionToSeconds(position-cursor, bpm)
	}
	return seconds
}
