package editor

import (
	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/go-miditrack/miditrack/internal/state"
	"github.com/go-miditrack/miditrack/internal/track"
)

// excerpt extracts [start, start+length) from src into a freshly built
// piece track, restricted to events sel matches — events in the region
// that sel rejects are left out of the piece entirely (they stay behind
// in src, untouched). Boundary handling: any selector-matching frame
// still live at start is cancelled at tic 0 of the excerpt and restored
// to its cut-point value (so an excerpt never opens on a pre-existing
// value silently); any selector-matching frame still live at
// start+length is cancelled at the excerpt's end (so it never sounds
// past the excerpt).
func excerpt(src *track.Track, start, length uint32, sel Selector, debug bool) *track.Track {
	out := track.Init()
	cur := newCursor(src, debug)
	outCur := newCursor(out, debug)

	cur.Seek(start)
	liveAtStart := state.Dup(cur.StateList())
	for _, st := range liveAtStart.All() {
		if st.Phase&event.Last != 0 || !sel(st.Ev) {
			continue
		}
		cancelAndRestoreAtHead(outCur, st)
	}

	remaining := length
	for remaining > 0 && !cur.Eot() {
		for cur.EvAvail() {
			st := cur.EvGet()
			if sel(st.Ev) {
				outCur.EvPut(st.Ev)
			}
		}
		n := cur.TicSkip(remaining)
		if n == 0 {
			break
		}
		outCur.TicPut(n)
		remaining -= n
	}

	for _, st := range outCur.StateList().All() {
		if st.Phase&event.Last != 0 {
			continue
		}
		outCur.Cancel(st)
	}

	out.Chomp()
	return out
}

// cancelAndRestoreAtHead splices a cancel immediately followed by a
// restore at the cursor's current position (tic 0 of the excerpt),
// re-establishing the cut-point value without shifting any later event.
func cancelAndRestoreAtHead(cur interface {
	Cancel(*state.State) bool
	Restore(*state.State) bool
}, st *state.State) {
	cur.Cancel(st)
	cur.Restore(st)
}

// Move cuts the sel-matching frames out of [start, start+length) and
// splices them back in at dstTic (within the same track); everything
// sel rejects stays exactly where it was. Boundary cancel/restore
// semantics are preserved on both the donor and recipient gaps.
func Move(src *track.Track, start, length uint32, sel Selector, dstTic uint32, debug bool) {
	piece := excerpt(src, start, length, sel, debug)
	Blank(src, start, length, sel, debug)
	spliceIn(src, piece, dstTic, debug)
}

// Copy splices a copy of the sel-matching frames from [start,
// start+length) into dst at dstTic, without removing anything from src.
func Copy(src *track.Track, start, length uint32, sel Selector, dst *track.Track, dstTic uint32, debug bool) {
	piece := excerpt(src, start, length, sel, debug)
	spliceIn(dst, piece, dstTic, debug)
}

// Blank drops every sel-matching event in [start, start+length) from
// src but leaves the track's overall duration untouched — the region
// becomes silence for those frames, not a shorter track. Events sel
// rejects pass through untouched, even inside the gap. Selector-
// matching frames still open when the gap is entered are cancelled so
// nothing sounds through it.
func Blank(src *track.Track, start, length uint32, sel Selector, debug bool) {
	out := track.Init()
	cur := newCursor(src, debug)
	outCur := newCursor(out, debug)

	cancelled := false
	for !cur.Eot() {
		for cur.EvAvail() {
			st := cur.EvGet()
			inGap := cur.Tic() >= start && cur.Tic() < start+length && sel(st.Ev)
			if inGap && !cancelled {
				for _, live := range outCur.StateList().All() {
					if live.Phase&event.Last == 0 && sel(live.Ev) {
						outCur.Cancel(live)
					}
				}
				cancelled = true
			}
			if inGap {
				continue
			}
			outCur.EvPut(st.Ev)
		}
		n := cur.TicSkip(^uint32(0))
		if n == 0 {
			break
		}
		outCur.TicPut(n)
	}

	src.Clear()
	replay(src, out)
}

// spliceIn inserts piece's events into dst starting at dstTic, pushing
// every later dst event back by piece's length, without touching
// anything before dstTic.
func spliceIn(dst, piece *track.Track, dstTic uint32, debug bool) {
	out := track.Init()
	cur := newCursor(dst, debug)
	outCur := newCursor(out, debug)

	for cur.Tic() < dstTic {
		for cur.EvAvail() {
			outCur.EvPut(cur.EvGet().Ev)
		}
		n := cur.TicSkip(dstTic - cur.Tic())
		if n == 0 {
			// dst ends before dstTic: pad with silence up to it
			outCur.TicPut(dstTic - cur.Tic())
			break
		}
		outCur.TicPut(n)
	}
	for ref := piece.Head(); ; ref = piece.Next(ref) {
		if d := piece.Delta(ref); d > 0 {
			outCur.TicPut(d)
		}
		if piece.IsSentinel(ref) {
			break
		}
		outCur.EvPut(piece.Event(ref))
	}

	for !cur.Eot() {
		for cur.EvAvail() {
			st := cur.EvGet()
			outCur.EvPut(st.Ev)
		}
		n := cur.TicSkip(^uint32(0))
		if n == 0 {
			break
		}
		outCur.TicPut(n)
	}

	out.Chomp()
	dst.Clear()
	replay(dst, out)
}
