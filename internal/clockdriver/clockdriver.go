// Package clockdriver drives a playback cursor from an external tic
// interrupt, advancing it one tic at a time and
// reporting the tempo/time-signature in effect at the cursor's current
// position. It is the playback-side counterpart to internal/editor's
// offline rewrites: editors rebuild a track; Driver walks one forward
// without rebuilding anything.
package clockdriver

import (
	"log"
	"time"

	"github.com/go-miditrack/miditrack/internal/editor"
	"github.com/go-miditrack/miditrack/internal/seqptr"
	"github.com/go-miditrack/miditrack/internal/state"
	"github.com/go-miditrack/miditrack/internal/track"
)

// Driver walks a track one playback tic at a time, delivering live
// events to a Sink as they're reached and tracking the current
// tempo/time-signature so a caller can convert tics to wall-clock time.
type Driver struct {
	cur   *seqptr.SeqPtr
	sink  Sink
	debug bool
}

// Sink receives events as the driver's cursor reaches them. Notes and
// controller/RPN/NRPN frames all arrive through Emit; the driver itself
// never distinguishes payload kinds.
type Sink interface {
	Emit(st *state.State)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(st *state.State)

func (f SinkFunc) Emit(st *state.State) { f(st) }

// New builds a Driver positioned at the start of tr. sink receives every
// event the cursor passes over as Advance steps it forward.
func New(tr *track.Track, sink Sink, debug bool) *Driver {
	return &Driver{cur: seqptr.New(tr, debug), sink: sink, debug: debug}
}

// Tic reports the driver's current playback position.
func (d *Driver) Tic() uint32 { return d.cur.Tic() }

// Eot reports whether the cursor has reached end-of-track.
func (d *Driver) Eot() bool { return d.cur.Eot() }

// Advance delivers every event due at the cursor's current position to
// the sink, then steps the cursor forward by exactly one tic (no step
// once end-of-track is reached). Events at the new position are
// delivered by the next call. It is meant to be called once per
// tic-interrupt tick.
func (d *Driver) Advance() {
	for d.cur.EvAvail() {
		d.sink.Emit(d.cur.EvGet())
	}
	if d.cur.Eot() {
		return
	}
	if d.cur.TicSkip(1) == 0 {
		log.Printf("[CLOCKDRIVER] advance stalled at tic %d", d.cur.Tic())
	}
}

// Info is the tempo/time-signature state in effect at a cursor position.
type Info struct {
	Tic    uint32
	BPM    uint8
	TPB    uint8
	Usec24 uint32
}

// CurrentInfo reports the tempo/time-signature live at the driver's
// current position, without moving the cursor.
func (d *Driver) CurrentInfo() Info {
	ti := editor.TimeInfoAt(d.cur.Track, d.cur.Tic(), d.debug)
	return Info{Tic: ti.Tic, BPM: ti.BPM, TPB: ti.TPB, Usec24: ti.Usec24}
}

// TicDuration converts one tic at the given tempo to a time.Duration.
// Usec24 is microseconds per 24 tics, matching event.Event's Tempo
// field convention.
func TicDuration(usec24 uint32) time.Duration {
	return time.Duration(usec24) * time.Microsecond / 24
}

// FindMeasure reports the tic offset of the start of measure n (0-based),
// honoring any TimeSig changes encountered along the way. It never moves
// the driver's own cursor: it walks a fresh cursor over the same track.
func FindMeasure(tr *track.Track, n uint32, debug bool) uint32 {
	return editor.FindMeasure(tr, n, debug)
}
