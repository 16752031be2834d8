// Package seqptr implements SeqPtr: a cursor into a track that
// maintains its own StateList, plus the six low-level mutators
// (ticskip/ticdel/ticput, evget/evdel/evput) the high-level editors in
// internal/editor are built from.
//
// SeqPtrs are short-lived, stack-scoped cursors created for one editing
// pass and released at the end. They may share a track for concurrent
// reading, but as soon as any SeqPtr writes, no other SeqPtr on the same
// track may exist — a hard caller contract, not runtime-enforced (see
// spec §5).
package seqptr

import (
	"log"

	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/go-miditrack/miditrack/internal/state"
	"github.com/go-miditrack/miditrack/internal/track"
)

// SeqPtr is a cursor: a track position plus the StateList folded over
// every event strictly before it.
type SeqPtr struct {
	Track *track.Track
	pos   track.CellRef
	delta uint32
	tic   uint32
	sl    *state.StateList
	debug bool
}

// New creates a cursor at the head of tr. debug gates panics on
// programming-invariant violations (spec §9: replaces the FRAME_DEBUG
// build macro with a runtime flag so tests can exercise panic paths
// deterministically).
func New(tr *track.Track, debug bool) *SeqPtr {
	return &SeqPtr{Track: tr, pos: tr.Head(), sl: state.Init(), debug: debug}
}

// Done releases the cursor's StateList.
func (sp *SeqPtr) Done() { sp.sl.Done() }

// StateList exposes the cursor's live StateList.
func (sp *SeqPtr) StateList() *state.StateList { return sp.sl }

// Tic returns the cursor's absolute tic position.
func (sp *SeqPtr) Tic() uint32 { return sp.tic }

// Pos returns the cursor's current cell.
func (sp *SeqPtr) Pos() track.CellRef { return sp.pos }

func (sp *SeqPtr) invariant(ok bool, msg string) {
	if ok {
		return
	}
	if sp.debug {
		panic("seqptr: " + msg)
	}
	log.Printf("[SEQPTR] invariant violated (ignored): %s", msg)
}

// EvAvail reports whether an event is available at the cursor's exact
// position this tic.
func (sp *SeqPtr) EvAvail() bool {
	return sp.delta == sp.Track.Delta(sp.pos) && sp.Track.Event(sp.pos).Kind != event.Null
}

// Eot reports whether the cursor sits at end-of-track (the sentinel,
// with no remaining delta to consume).
func (sp *SeqPtr) Eot() bool {
	return sp.Track.Event(sp.pos).Kind == event.Null && sp.delta == sp.Track.Delta(sp.pos)
}

// PeekEvent returns the event sitting at the cursor's current position
// without consuming it or folding it into the StateList. Only
// meaningful when EvAvail reports true; callers that need to compare an
// incoming event against the StateList's current value before EvGet
// overwrites it (editor.Check's duplicate suppression) use this.
func (sp *SeqPtr) PeekEvent() event.Event {
	return sp.Track.Event(sp.pos)
}

// EvGet is the only primitive that advances over an event: if one is
// available, it folds it into the StateList, records the state's
// Pos/Tic if the event opens a frame, advances past the cell, and
// resets delta. Returns nil if no event is available.
func (sp *SeqPtr) EvGet() *state.State {
	if !sp.EvAvail() {
		return nil
	}
	ev := sp.Track.Event(sp.pos)
	st := sp.sl.Update(ev)
	if st.Phase&event.First != 0 {
		st.Pos = sp.pos
		st.Tic = sp.tic
	}
	sp.pos = sp.Track.Next(sp.pos)
	sp.delta = 0
	return st
}

// EvPut splices a new cell carrying ev before pos with delta = sp.delta
// tics, then advances past it via EvGet so the StateList stays current.
// Precondition: the cursor is at end-of-track — callers rewrite by
// building a fresh output track and only ever appending to its end.
func (sp *SeqPtr) EvPut(ev event.Event) *state.State {
	sp.invariant(sp.Eot(), "evput outside end-of-track")
	ref := sp.Track.InsertBefore(sp.pos, sp.delta, ev)
	sp.pos = ref
	sp.delta = sp.Track.Delta(ref)
	return sp.EvGet()
}

// EvDel removes the event available at the cursor (if any), optionally
// folding it into erase into an "as if EvGet'd" observation first. It
// splices the cell out, donating its delta to the next cell. The
// cursor's own tic position does not advance and its primary StateList
// is NOT updated.
func (sp *SeqPtr) EvDel(erase *state.StateList) *state.State {
	if !sp.EvAvail() {
		return nil
	}
	ev := sp.Track.Event(sp.pos)
	var st *state.State
	if erase != nil {
		st = erase.Update(ev)
	}
	next := sp.Track.Next(sp.pos)
	sp.Track.Remove(sp.pos)
	sp.pos = next
	return st
}

// Remaining reports the tics left before the cursor reaches its
// current cell (an event, or the sentinel if nothing more remains),
// without moving the cursor. Callers that must keep two cursors in
// lockstep (editor.Merge) use this to find the common step size
// instead of skipping either cursor all the way to its own next cell.
func (sp *SeqPtr) Remaining() uint32 {
	return sp.Track.Delta(sp.pos) - sp.delta
}

// TicSkip advances the tic position (without deleting anything) by
// min(max, remaining-tics-before-next-cell). If it moved at all, the
// primary StateList is outdated.
func (sp *SeqPtr) TicSkip(max uint32) uint32 {
	avail := sp.Track.Delta(sp.pos) - sp.delta
	n := max
	if avail < n {
		n = avail
	}
	if n > 0 {
		sp.delta += n
		sp.tic += n
		sp.sl.Outdate()
	}
	return n
}

// TicDel measures the same as TicSkip but removes those tics from the
// track instead of merely passing over them; erase, if non-nil, is
// outdated to reflect the removal.
func (sp *SeqPtr) TicDel(max uint32, erase *state.StateList) uint32 {
	avail := sp.Track.Delta(sp.pos) - sp.delta
	n := max
	if avail < n {
		n = avail
	}
	if n > 0 {
		sp.Track.SetDelta(sp.pos, sp.Track.Delta(sp.pos)-n)
		if erase != nil {
			erase.Outdate()
		}
	}
	return n
}

// TicPut extends the current cell's delta by n tics and advances the
// cursor's tic position by the same amount, outdating the primary
// StateList.
func (sp *SeqPtr) TicPut(n uint32) {
	if n == 0 {
		return
	}
	sp.Track.SetDelta(sp.pos, sp.Track.Delta(sp.pos)+n)
	sp.delta += n
	sp.tic += n
	sp.sl.Outdate()
}

// Skip repeatedly EvGets and TicSkips until n tics are consumed or the
// cursor hits end-of-track. Events lying exactly at the final boundary
// are left for the caller's next EvGet, not consumed by Skip itself.
// It returns the residual (unconsumed) tics, per spec §7's
// "end-of-track during seek" contract.
func (sp *SeqPtr) Skip(n uint32) uint32 {
	remaining := n
	for remaining > 0 {
		for sp.EvAvail() {
			sp.EvGet()
		}
		if sp.Eot() {
			break
		}
		moved := sp.TicSkip(remaining)
		if moved == 0 {
			break
		}
		remaining -= moved
	}
	return remaining
}

// Seek is like Skip but pads any shortfall with TicPut, so it never
// leaves a residual: it always reaches tic+n, extending the track if
// necessary.
func (sp *SeqPtr) Seek(n uint32) {
	residual := sp.Skip(n)
	if residual > 0 {
		sp.TicPut(residual)
	}
}

// Cancel emits ev_cancel's synthesized events (via EvPut) for a
// non-note, currently live state. Returns whether anything was
// emitted.
func (sp *SeqPtr) Cancel(st *state.State) bool {
	evs, ok := event.Cancel(st.Ev)
	if !ok {
		return false
	}
	for _, ev := range evs {
		sp.EvPut(ev)
	}
	return true
}

// Restore is Cancel's dual: re-emits the frame's current value.
func (sp *SeqPtr) Restore(st *state.State) bool {
	evs, ok := event.Restore(st.Ev)
	if !ok {
		return false
	}
	for _, ev := range evs {
		sp.EvPut(ev)
	}
	return true
}

// RmLast removes the most recent event belonging to st's frame between
// st.Pos and the cursor; if that was the only event of the frame, the
// state is dropped from its StateList. Delta-tics on the removed cell
// are donated to its successor (and to the cursor's own delta if the
// successor is the cursor's current cell).
func (sp *SeqPtr) RmLast(sl *state.StateList, st *state.State) {
	ref := sp.findLast(st)
	if ref == track.Nil {
		sl.RemoveState(st)
		return
	}
	removingAtCursor := sp.Track.Next(ref) == sp.pos
	removedDelta := sp.Track.Delta(ref)
	sp.Track.Remove(ref)
	if removingAtCursor {
		sp.delta += removedDelta
	}
	if ref == st.Pos {
		sl.RemoveState(st)
	}
}

// RmPrev removes ALL events of st's frame between st.Pos and the
// cursor, and drops the state.
func (sp *SeqPtr) RmPrev(sl *state.StateList, st *state.State) {
	for {
		ref := sp.findLast(st)
		if ref == track.Nil {
			break
		}
		removingAtCursor := sp.Track.Next(ref) == sp.pos
		removedDelta := sp.Track.Delta(ref)
		last := ref == st.Pos
		sp.Track.Remove(ref)
		if removingAtCursor {
			sp.delta += removedDelta
		}
		if last {
			break
		}
	}
	sl.RemoveState(st)
}

// findLast walks forward from st.Pos up to the cursor and returns the
// most recent cell belonging to st's frame. Returns
// track.Nil if none remain between st.Pos and the cursor.
func (sp *SeqPtr) findLast(st *state.State) track.CellRef {
	var found track.CellRef = track.Nil
	for ref := st.Pos; ref != sp.pos; ref = sp.Track.Next(ref) {
		if sp.Track.IsSentinel(ref) {
			break
		}
		if event.StateMatch(sp.Track.Event(ref), st.Ev) {
			found = ref
		}
	}
	return found
}
