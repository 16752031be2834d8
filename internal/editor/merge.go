package editor

import (
	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/go-miditrack/miditrack/internal/track"
)

// Merge overlays src onto dst, giving src priority: both cursors walk
// dst and src in lockstep, tic by tic — advancing by min(dst remaining,
// src remaining) at each step, per spec's "advance both cursors by
// min(...) tics", so neither cursor ever runs ahead of the other's true
// next event. dst's events are replayed first at each tic; src's events
// are replayed second and, per frame identity, win. If src opens a
// frame that dst already holds open, dst's value is cancelled first so
// the two values never sound together.
//
// The gating test is !(phase & LAST), not (!phase) & LAST: a frame only
// needs cancelling while it is still open (its phase has not yet
// observed LAST), and a zero Phase (never-seen frame) must NOT look
// cancellable just because its bits happen to be all unset.
func Merge(dst, src *track.Track, debug bool) {
	out := track.Init()
	dstCur := newCursor(dst, debug)
	srcCur := newCursor(src, debug)
	outCur := newCursor(out, debug)

	for !dstCur.Eot() || !srcCur.Eot() {
		for dstCur.EvAvail() {
			st := dstCur.EvGet()
			outCur.EvPut(st.Ev)
		}
		for srcCur.EvAvail() {
			st := srcCur.EvGet()
			if prior, ok := outCur.StateList().Lookup(st.Ev); ok && prior.Ev != st.Ev && !(prior.Phase&event.Last != 0) {
				outCur.Cancel(prior)
			}
			outCur.EvPut(st.Ev)
		}

		const unbounded = ^uint32(0)
		dRem, sRem := unbounded, unbounded
		if !dstCur.Eot() {
			dRem = dstCur.Remaining()
		}
		if !srcCur.Eot() {
			sRem = srcCur.Remaining()
		}
		moved := dRem
		if sRem < moved {
			moved = sRem
		}
		if moved == 0 || moved == unbounded {
			break
		}
		if !dstCur.Eot() {
			dstCur.TicSkip(moved)
		}
		if !srcCur.Eot() {
			srcCur.TicSkip(moved)
		}
		outCur.TicPut(moved)
	}

	out.Chomp()
	dst.Clear()
	replay(dst, out)
}
