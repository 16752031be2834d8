// Package state tracks, for every frame currently alive up to a cursor
// position, a single record carrying the frame's current value and
// phase: a StateList. It is the data structure that lets editors answer
// "what is the MIDI state right here" without rescanning the whole
// track.
package state

import (
	"log"

	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/go-miditrack/miditrack/internal/track"
)

// Flags records bookkeeping bits distinct from the MIDI-visible phase.
type Flags int

const (
	// New is set by Update for the current call and cleared on the
	// following Outdate.
	New Flags = 1 << iota
	// Changed marks that the most recent Update changed the frame's
	// value.
	Changed
	// Bogus marks an out-of-order event: a LAST without a FIRST, or
	// RPN/NRPN data without an active parameter.
	Bogus
	// Nested marks a second FIRST arriving on an already-live frame
	// (e.g. a note-on while the same pitch is still sounding).
	Nested
)

// State summarises a frame up to a cursor position.
type State struct {
	Ev    event.Event
	Phase event.Phase
	Flags Flags
	Tag   int
	Pos   track.CellRef
	Tic   uint32
}

func (s *State) has(f Flags) bool { return s.Flags&f != 0 }

// StateList is the set of live states at a cursor position, keyed by
// frame identity.
type StateList struct {
	m map[event.FrameID]*State
}

// Init creates an empty StateList.
func Init() *StateList {
	return &StateList{m: make(map[event.FrameID]*State)}
}

// Empty reports whether any states remain.
func (sl *StateList) Empty() bool { return len(sl.m) == 0 }

// Done releases the StateList. It warns (rather than fails) if any
// non-terminal state remains, per the core's "never propagate through
// errors, only log" policy.
func (sl *StateList) Done() {
	for id, st := range sl.m {
		if st.Phase&event.Last == 0 {
			log.Printf("[STATELIST] done: unterminated frame kind=%s channel=%d selector=%d", id.Kind, id.Channel, id.Selector)
		}
	}
}

// Lookup returns the live state for ev's frame identity, if any.
func (sl *StateList) Lookup(ev event.Event) (*State, bool) {
	st, ok := sl.m[event.FrameKey(ev)]
	return st, ok
}

// Update folds ev into the StateList, allocating a new state if the
// frame is not yet tracked. It classifies phase, detects BOGUS and
// NESTED, and returns the (possibly new) state.
func (sl *StateList) Update(ev event.Event) *State {
	key := event.FrameKey(ev)
	prior, existed := sl.m[key]
	base := event.Classify(ev)

	if !existed {
		st := &State{Ev: ev, Flags: New}
		switch base {
		case event.FirstLast:
			st.Phase = event.FirstLast
		case event.Last:
			// a LAST with no prior FIRST is out-of-order
			st.Phase = event.Last
			st.Flags |= Bogus
		case event.First:
			st.Phase = event.First
		case event.Next:
			// a continuation value with no prior opener is out-of-order,
			// but it still opens the frame for whatever follows
			st.Phase = event.First
			st.Flags |= Bogus
		}
		sl.m[key] = st
		return st
	}

	st := prior
	changed := !event.StateEqual(st.Ev, ev)
	st.Ev = ev
	st.Flags |= New
	st.Flags &^= Bogus | Nested // re-evaluated below for this event
	if changed {
		st.Flags |= Changed
	} else {
		st.Flags &^= Changed
	}

	switch base {
	case event.FirstLast:
		st.Phase = event.FirstLast
	case event.Last:
		st.Phase = event.Last
	case event.First:
		if prior.Phase&event.Last == 0 {
			// a FIRST arriving while the frame is already open: nested
			st.Phase = event.Next
			st.Flags |= Nested
		} else {
			// frame had closed but lingers this tic (NEW grace); this
			// is a genuine reopen
			st.Phase = event.First
		}
	case event.Next:
		st.Phase = event.Next
	}
	return st
}

// Outdate sweeps the list after a tic boundary: states whose phase is
// LAST and were not updated this call are removed (callers had their
// chance to observe the termination); NEW and CHANGED are cleared on
// survivors.
func (sl *StateList) Outdate() {
	for id, st := range sl.m {
		if st.Phase&event.Last != 0 && st.Flags&New == 0 {
			delete(sl.m, id)
			continue
		}
		st.Flags &^= New | Changed
	}
}

// Remove explicitly drops a state.
func (sl *StateList) Remove(ev event.Event) {
	delete(sl.m, event.FrameKey(ev))
}

// RemoveState explicitly drops a state by value (used by callers that
// already hold a *State rather than a representative event).
func (sl *StateList) RemoveState(st *State) {
	delete(sl.m, event.FrameKey(st.Ev))
}

// Dup produces a copy of src containing only the behavioural fields
// (Ev, Phase, Flags minus New/Changed); Tag and Pos/Tic are NOT copied,
// since they are edit-local scratch tied to a specific cursor pass.
func Dup(src *StateList) *StateList {
	out := Init()
	for id, st := range src.m {
		out.m[id] = &State{
			Ev:    st.Ev,
			Phase: st.Phase,
			Flags: st.Flags &^ (New | Changed),
		}
	}
	return out
}

// All returns every live state. Order is unspecified.
func (sl *StateList) All() []*State {
	out := make([]*State, 0, len(sl.m))
	for _, st := range sl.m {
		out = append(out, st)
	}
	return out
}

// Len reports how many frames are currently live.
func (sl *StateList) Len() int { return len(sl.m) }
