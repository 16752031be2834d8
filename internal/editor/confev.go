package editor

import (
	"sort"

	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/go-miditrack/miditrack/internal/state"
	"github.com/go-miditrack/miditrack/internal/track"
)

// ConfEv implements spec's confev(ev) over a config track: a track
// holding only FIRST|LAST one-shot frames representing persistent
// setup (controller defaults, program selections). It replaces the
// singleton event for ev's frame while preserving the relative update
// order of every other live frame.
//
// It does so by (1) draining src into a StateList, tagging each
// distinct frame with an increasing serial the first time it's seen;
// (2) folding ev into that StateList and forcing its tag to the
// highest serial, so its frame always sorts last; (3) replaying the
// surviving states in tag order into a fresh track, skipping any
// whose value already matches what's already been written to the
// rebuilt output (a frame can only appear once in a config track, but
// a pass over a track a prior edit left with duplicate writes to the
// same frame must still converge to one).
func ConfEv(src *track.Track, ev event.Event, debug bool) {
	if event.Classify(ev) != event.FirstLast {
		warnInvariant(debug, "confev called with a non-FIRST|LAST event kind=%v", ev.Kind)
		return
	}

	srcCur := newCursor(src, debug)
	nextTag := 0
	tagOf := func(st *state.State) {
		if st.Tag == 0 {
			nextTag++
			st.Tag = nextTag
		}
	}

	for !srcCur.Eot() {
		for srcCur.EvAvail() {
			tagOf(srcCur.EvGet())
		}
		if srcCur.TicSkip(^uint32(0)) == 0 {
			break
		}
	}

	sl := srcCur.StateList()
	final := sl.Update(ev)
	nextTag++
	final.Tag = nextTag

	states := sl.All()
	sort.SliceStable(states, func(i, j int) bool { return states[i].Tag < states[j].Tag })

	out := track.Init()
	outCur := newCursor(out, debug)
	written := state.Init()
	for _, st := range states {
		if prior, ok := written.Lookup(st.Ev); ok && event.StateEqual(prior.Ev, st.Ev) {
			continue
		}
		written.Update(st.Ev)
		outCur.EvPut(st.Ev)
	}

	out.Chomp()
	src.Clear()
	replay(src, out)
}
