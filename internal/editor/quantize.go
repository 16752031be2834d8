package editor

import (
	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/go-miditrack/miditrack/internal/track"
)

// Quantize implements spec's quantize(src, start, len, offset, quant,
// rate): only note-start events (NoteOn events that open a note frame)
// within [start, start+length) are moved — each note's own NoteOff, and
// every other event, is left exactly where it is. For a note-start at
// tic t, r = (t - start + offset) mod quant; the target offset is
// -ceil(r*rate/100) when r falls in the lower half of the grid cell, or
// +ceil((quant-r)*rate/100) when it falls in the upper half. rate=0
// leaves every position unchanged; rate=100 snaps fully onto the grid.
//
// Notes can't be cancelled the way continuous-value frames can (see
// event.IsNote), so a moved note-start can't simply be overlaid back
// onto src at its old position — it has to actually move. Quantize
// builds base (src with the moved note-starts pulled out, everything
// else untouched) and scratch (just the moved note-starts at their new
// ticks), then merges scratch onto base.
func Quantize(src *track.Track, start, length, offset, quant, rate uint32, debug bool) {
	if quant == 0 {
		warnInvariant(debug, "quantize: quant must be nonzero")
		return
	}

	base := track.Init()
	scratch := track.Init()
	srcCur := newCursor(src, debug)
	baseCur := newCursor(base, debug)
	scratchCur := newCursor(scratch, debug)
	var scratchTic uint32

	for !srcCur.Eot() {
		for srcCur.EvAvail() {
			tic := srcCur.Tic()
			st := srcCur.EvGet()
			if tic < start || tic >= start+length || st.Ev.Kind != event.NoteOn || event.Classify(st.Ev) != event.First {
				baseCur.EvPut(st.Ev)
				continue
			}

			ofs := quantizeOffset(tic, start, offset, quant, rate)
			target := int64(tic) + ofs
			if target < int64(scratchTic) {
				warnInvariant(debug, "quantize: delta+ofs < 0 moving note-start at tic %d", tic)
				target = int64(scratchTic)
			}
			if uint32(target) > scratchTic {
				scratchCur.TicPut(uint32(target) - scratchTic)
				scratchTic = uint32(target)
			}
			scratchCur.EvPut(st.Ev)
		}
		n := srcCur.TicSkip(^uint32(0))
		if n == 0 {
			break
		}
		baseCur.TicPut(n)
	}

	scratch.Chomp()
	Merge(base, scratch, debug)
	src.Clear()
	replay(src, base)
}

// quantizeOffset computes the signed tic offset quantize applies to a
// note-start at tic, per the r/ofs formula above.
func quantizeOffset(tic, start, offset, quant, rate uint32) int64 {
	r := (tic - start + offset) % quant
	if r*2 < quant {
		return -int64(ceilDiv(r*rate, 100))
	}
	return int64(ceilDiv((quant-r)*rate, 100))
}

// ceilDiv computes ceil(a/b) for non-negative a, b using only integer
// arithmetic.
func ceilDiv(a, b uint32) uint32 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}
