package editor

import (
	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/go-miditrack/miditrack/internal/track"
)

// Transpose implements spec's transpose(src, start, len, halftones):
// like Quantize, but every note event (NoteOn, NoteOff, KeyAfterTouch)
// within [start, start+length) keeps its tic and instead gets
// pitch = (pitch + halftones) & 0x7f — wrapping mod 128 rather than
// clamping, so a transpose that overshoots the top or bottom of the
// MIDI pitch range lands somewhere else on the keyboard instead of
// piling up at 0 or 127.
//
// Pitch is part of a note frame's identity (event.FrameKey keys NoteOn
// by A), so a transposed NoteOn/NoteOff pair would no longer match its
// original frame if rewritten in place. Transpose builds base (src with
// matched note events pulled out, everything else untouched) and
// scratch (the same note events, same tics, transposed pitch), then
// merges scratch onto base — the same structural-move idiom Quantize
// uses for notes, just without any change in tic.
func Transpose(src *track.Track, start, length uint32, halftones int, debug bool) {
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
			ev := st.Ev
			if tic < start || tic >= start+length || !event.IsNote(ev.Kind) {
				baseCur.EvPut(ev)
				continue
			}

			ev.A = transposePitch(ev.A, halftones)
			if tic > scratchTic {
				scratchCur.TicPut(tic - scratchTic)
				scratchTic = tic
			}
			scratchCur.EvPut(ev)
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

// transposePitch wraps pitch+halftones into [0, 127] via & 0x7f. Go's
// int is two's complement, so this mirrors the wraparound a native
// 7-bit MIDI value would see even when pitch+halftones goes negative.
func transposePitch(pitch byte, halftones int) byte {
	return byte((int(pitch) + halftones) & 0x7f)
}
