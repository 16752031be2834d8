// Package editor implements the sequencer's high-level editing
// primitives — merge, move/copy/blank, quantize, transpose, check,
// tempo/measure operations, and confev — built from the seqptr cursor's
// six low-level mutators.
//
// The rewriting editors share one idiom: walk the source track with one
// cursor while appending the events to keep (and any synthesized
// cancel/restore events) to a fresh output track through a second
// cursor, then clear the source and replay the output into it.
package editor

import (
	"fmt"
	"log"

	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/go-miditrack/miditrack/internal/seqptr"
	"github.com/go-miditrack/miditrack/internal/state"
	"github.com/go-miditrack/miditrack/internal/track"
)

// Defaults for the tempo/time-signature singleton frames when a track
// carries no explicit Tempo/TimeSig event yet.
const (
	DefaultBPM    = 4      // beats per measure
	DefaultTPB    = 24     // tics per beat
	DefaultUsec24 = 500000 // microseconds per 24 tics (120bpm at TPB=24)
)

// Selector filters which frame kinds an editor should act on.
type Selector func(event.Event) bool

// All matches every frame kind.
func All(event.Event) bool { return true }

// NotesOnly matches only note frames.
func NotesOnly(ev event.Event) bool { return event.IsNote(ev.Kind) }

// ControllerNum matches Controller events whose controller number is
// num. For a 14-bit MSB number, the LSB half (num+32) is not matched.
func ControllerNum(num byte) Selector {
	return func(ev event.Event) bool {
		return ev.Kind == event.Controller && ev.A == num
	}
}

func currentSignature(sl *state.StateList) (bpm, tpb uint8, usec24 uint32) {
	bpm, tpb, usec24 = DefaultBPM, DefaultTPB, DefaultUsec24
	if st, ok := sl.Lookup(event.Event{Kind: event.TimeSig}); ok {
		bpm, tpb = st.Ev.TimeSigBeats, st.Ev.TimeSigTPB
	}
	if st, ok := sl.Lookup(event.Event{Kind: event.Tempo}); ok {
		usec24 = st.Ev.Tempo
	}
	return
}

func ticksPerMeasure(sl *state.StateList) uint32 {
	bpm, tpb, _ := currentSignature(sl)
	return uint32(bpm) * uint32(tpb)
}

func warnInvariant(debug bool, format string, args ...any) {
	if debug {
		panic("editor: " + fmt.Sprintf(format, args...))
	}
	log.Printf("[EDITOR] "+format, args...)
}

// newCursor is a small convenience wrapper so editors read uniformly.
func newCursor(tr *track.Track, debug bool) *seqptr.SeqPtr {
	return seqptr.New(tr, debug)
}
