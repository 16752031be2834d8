package editor

import (
	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/go-miditrack/miditrack/internal/seqptr"
	"github.com/go-miditrack/miditrack/internal/state"
	"github.com/go-miditrack/miditrack/internal/track"
)

// TimeInfo reports the tempo/time-signature in effect at a tic.
type TimeInfo struct {
	Tic    uint32
	BPM    uint8
	TPB    uint8
	Usec24 uint32
}

// FindMeasure walks src and returns the tic at which measure n (0-based)
// begins, honoring every TimeSig change encountered along the way. If
// the track ends before measure n is reached, the walk continues
// virtually past end-of-track using the last known signature.
func FindMeasure(src *track.Track, n uint32, debug bool) uint32 {
	cur := newCursor(src, debug)
	var tic uint32
	var measure uint32
	bpm, tpb := uint8(DefaultBPM), uint8(DefaultTPB)

	for measure < n {
		for cur.EvAvail() {
			st := cur.EvGet()
			if st.Ev.Kind == event.TimeSig {
				bpm, tpb = st.Ev.TimeSigBeats, st.Ev.TimeSigTPB
			}
		}
		step := uint32(bpm) * uint32(tpb)
		if step == 0 {
			step = DefaultBPM * DefaultTPB
		}
		if cur.Eot() {
			// virtual walk past end-of-track: no more signature changes
			// can occur, so every remaining measure is exactly step long
			tic += step
			measure++
			continue
		}
		// a residual from Skip means the track ended inside this measure;
		// the shortfall is counted virtually, like the measures above
		cur.Skip(step)
		tic += step
		measure++
	}
	return tic
}

// TimeInfoAt returns the tempo/time signature in effect at tic, draining
// every event up to (and including) tic.
func TimeInfoAt(src *track.Track, tic uint32, debug bool) TimeInfo {
	cur := newCursor(src, debug)
	cur.Seek(tic)
	for cur.EvAvail() {
		cur.EvGet()
	}
	bpm, tpb, usec24 := currentSignature(cur.StateList())
	return TimeInfo{Tic: tic, BPM: bpm, TPB: tpb, Usec24: usec24}
}

// SetTempo rewrites src in place so that, from tic onward, Tempo reads
// usec24 (microseconds per 24 tics). A Tempo event already sitting
// exactly at tic is replaced rather than duplicated.
func SetTempo(src *track.Track, tic uint32, usec24 uint32, debug bool) {
	out := track.Init()
	cur := newCursor(src, debug)
	outCur := newCursor(out, debug)
	inserted := false

	for !cur.Eot() {
		for cur.EvAvail() {
			st := cur.EvGet()
			if cur.Tic() == tic && st.Ev.Kind == event.Tempo {
				continue // superseded by the new Tempo event below
			}
			outCur.EvPut(st.Ev)
		}
		if cur.Tic() == tic && !inserted {
			outCur.EvPut(event.Event{Kind: event.Tempo, Tempo: usec24})
			inserted = true
		}
		step := ^uint32(0)
		if !inserted && cur.Tic() < tic {
			step = tic - cur.Tic()
		}
		n := cur.TicSkip(step)
		if n == 0 {
			break
		}
		outCur.TicPut(n)
	}
	if !inserted {
		if tic > outCur.Tic() {
			outCur.TicPut(tic - outCur.Tic())
		}
		outCur.EvPut(event.Event{Kind: event.Tempo, Tempo: usec24})
	}

	out.Chomp()
	src.Clear()
	replay(src, out)
}

// TimeIns implements spec's timeins(m, amount, bpm, tpb): inserts
// amount measures of the new (bpm, tpb) signature at measure m,
// cancelling whatever is live there so the inserted measures are
// genuinely silent under the new signature, then restoring it on the
// other side. If the prior signature differed from (bpm, tpb), a
// restoring TimeSig event is emitted right after the insertion so
// playback reverts to it once the new measures pass.
func TimeIns(src *track.Track, measure, amount uint32, bpm, tpb uint8, debug bool) {
	tic := FindMeasure(src, measure, debug)

	probe := newCursor(src, debug)
	probe.Seek(tic)
	for probe.EvAvail() {
		probe.EvGet()
	}
	priorBPM, priorTPB, _ := currentSignature(probe.StateList())
	live := probe.StateList()
	length := uint32(bpm) * uint32(tpb) * amount
	changed := priorBPM != bpm || priorTPB != tpb

	out := track.Init()
	cur := newCursor(src, debug)
	outCur := newCursor(out, debug)
	inserted := false

	insert := func() {
		insertMeasures(outCur, live, length, bpm, tpb, priorBPM, priorTPB, changed)
	}

	for !cur.Eot() {
		for cur.EvAvail() {
			atTic := cur.Tic() == tic
			if atTic && !inserted {
				insert()
				inserted = true
			}
			st := cur.EvGet()
			if atTic && st.Ev.Kind == event.TimeSig {
				continue // superseded by the signature change insert() just wrote
			}
			outCur.EvPut(st.Ev)
		}
		if cur.Tic() == tic && !inserted {
			insert()
			inserted = true
		}
		step := ^uint32(0)
		if !inserted && cur.Tic() < tic {
			step = tic - cur.Tic()
		}
		n := cur.TicSkip(step)
		if n == 0 {
			break
		}
		outCur.TicPut(n)
	}
	if !inserted {
		insert()
	}

	// no Chomp here: TimeIns must grow the track by exactly amount
	// measures, even when they land entirely within trailing silence.
	src.Clear()
	replay(src, out)
}

// insertMeasures cancels every still-open frame, writes the new
// signature, extends the cursor by length blank tics, restores the
// prior signature if it differed, then restores the cancelled frames
// so playback resumes unaffected once the inserted measures pass.
func insertMeasures(outCur *seqptr.SeqPtr, live *state.StateList, length uint32, bpm, tpb, priorBPM, priorTPB uint8, changed bool) {
	open := make([]*state.State, 0)
	for _, st := range live.All() {
		if st.Phase&event.Last == 0 {
			open = append(open, st)
		}
	}
	for _, st := range open {
		outCur.Cancel(st)
	}
	outCur.EvPut(event.Event{Kind: event.TimeSig, TimeSigBeats: bpm, TimeSigTPB: tpb})
	outCur.TicPut(length)
	if changed {
		outCur.EvPut(event.Event{Kind: event.TimeSig, TimeSigBeats: priorBPM, TimeSigTPB: priorTPB})
	}
	for _, st := range open {
		outCur.Restore(st)
	}
}

// TimeRm removes amount tics at tic, collapsing everything after it
// forward. amount == 0 is a deliberate no-op, not an error: callers
// often derive amount from a measure span that can legitimately be
// empty (e.g. removing zero measures at the end of a track).
func TimeRm(src *track.Track, tic, amount uint32, debug bool) {
	if amount == 0 {
		return
	}
	Blank(src, tic, amount, All, debug)

	out := track.Init()
	cur := newCursor(src, debug)
	outCur := newCursor(out, debug)
	end := tic + amount

	for !cur.Eot() {
		for cur.EvAvail() {
			st := cur.EvGet()
			outCur.EvPut(st.Ev)
		}
		from := cur.Tic()
		step := ^uint32(0)
		switch {
		case from < tic:
			step = tic - from
		case from < end:
			step = end - from
		}
		n := cur.TicSkip(step)
		if n == 0 {
			break
		}
		if from < tic || from >= end {
			outCur.TicPut(n) // tics inside [tic, end) are not copied
		}
	}

	out.Chomp()
	src.Clear()
	replay(src, out)
}
