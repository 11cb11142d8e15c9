// Package chartio reads and writes chart files.
//
// Three input formats are supported, chosen by file extension in LoadFile:
//
//	.yaml .yml   YAML document (strict: unknown fields are rejected)
//	.cue         CUE document, unified with the embedded #Chart schema
//	.mid .midi   Standard MIDI File, converted note-for-note
//
// YAML and CUE share one document shape:
//
//	title: "Song"
//	artist: "Someone"
//	bpm: 120
//	difficulties:
//	  normal:
//	    level: 3
//	    notes:
//	      - {id: 1, position: 1.0, lane: 1}
//	      - {position: 1.25, lane: 0, sample: "hat"}   # lane 0 is background
//	    tempos:
//	      - {position: 2.0, bpm: 180}
//	      - {position: 3.0, skip: 0.5}
//	      - {position: 4.0, stop: 0.25}
//
// Event ids are unique across the whole chart. An id of 0 (or a missing id)
// is assigned after the largest explicit id, in document order. Duplicate
// explicit ids are rejected here, since the engine never checks them.
//
// Within a difficulty, tempos are added before notes, so at equal positions
// a tempo change always applies before the note it shares a position with.
package chartio
