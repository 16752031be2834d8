package editor

import (
	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/go-miditrack/miditrack/internal/state"
	"github.com/go-miditrack/miditrack/internal/track"
)

// Check rewrites src in place: BOGUS and NESTED events are dropped,
// consecutive value-equal updates to the same frame are suppressed, and
// any frame still open (non-LAST) at end-of-track is structurally
// closed by rmprev — an unterminated frame never reached a genuine
// LAST, so every one of its events, not just the most recent, is
// removed; there is nothing valid to keep.
func Check(src *track.Track, debug bool) {
	clean := track.Init()
	srcCur := newCursor(src, debug)
	dstCur := newCursor(clean, debug)

	for {
		for srcCur.EvAvail() {
			ev := srcCur.PeekEvent()
			var priorEv event.Event
			var hadPrior bool
			if prior, ok := srcCur.StateList().Lookup(ev); ok {
				priorEv, hadPrior = prior.Ev, true
			}
			st := srcCur.EvGet()
			if st.Flags&(state.Bogus|state.Nested) != 0 {
				continue
			}
			if hadPrior && event.StateEqual(priorEv, ev) {
				continue
			}
			dstCur.EvPut(st.Ev)
		}
		if srcCur.Eot() {
			break
		}
		moved := srcCur.TicSkip(^uint32(0))
		if moved == 0 {
			break
		}
		dstCur.TicPut(moved)
	}

	for _, st := range srcCur.StateList().All() {
		if st.Phase&event.Last != 0 {
			continue
		}
		if dstSt, ok := dstCur.StateList().Lookup(st.Ev); ok {
			dstCur.RmPrev(dstCur.StateList(), dstSt)
		}
	}

	clean.Chomp()
	src.Clear()
	replay(src, clean)
}

// replay copies every (delta, event) cell of src into dst verbatim,
// preserving exact tic spacing. dst is assumed freshly cleared.
func replay(dst, src *track.Track) {
	cur := newCursor(dst, false)
	for ref := src.Head(); ; ref = src.Next(ref) {
		if d := src.Delta(ref); d > 0 {
			cur.TicPut(d)
		}
		if src.IsSentinel(ref) {
			break
		}
		cur.EvPut(src.Event(ref))
	}
}
