package editor

import (
	"testing"

	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/go-miditrack/miditrack/internal/track"
	"github.com/stretchr/testify/assert"
)

func countCells(tr *track.Track) int {
	n := 0
	for ref := tr.Head(); !tr.IsSentinel(ref); ref = tr.Next(ref) {
		n++
	}
	return n
}

func TestCheckDropsBogusNoteOff(t *testing.T) {
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.InsertBefore(sentinel, 0, event.Event{Kind: event.NoteOff, A: 60})
	tr.SetDelta(sentinel, 100)

	Check(tr, true)

	assert.Equal(t, 0, countCells(tr))
}

func TestCheckDropsNestedNoteOn(t *testing.T) {
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.SetDelta(sentinel, 20)
	tr.InsertBefore(sentinel, 0, event.Event{Kind: event.NoteOn, A: 60, B: 100})
	tr.InsertBefore(sentinel, 10, event.Event{Kind: event.NoteOn, A: 60, B: 90})
	tr.InsertBefore(sentinel, 10, event.Event{Kind: event.NoteOff, A: 60})

	Check(tr, true)

	assert.Equal(t, 2, countCells(tr))
}

func TestCheckClosesUnterminatedControllerAtEndOfTrack(t *testing.T) {
	tr := track.Init()
	sentinel := tr.Sentinel()
	// a 14-bit MSB (controller 1) with no LSB to close it
	tr.InsertBefore(sentinel, 0, event.Event{Kind: event.Controller, A: 1, B: 10})
	tr.SetDelta(sentinel, 100)

	Check(tr, true)

	assert.Equal(t, 0, countCells(tr))
}

func TestCheckClosesUnterminatedMultiEventFrameEntirely(t *testing.T) {
	// spec.md item: rmprev must remove every surviving event of an
	// unterminated frame, not just the most recent one. The first RPN
	// event of a fresh frame is always flagged BOGUS (no prior opener),
	// but a second and third data update to the same parameter are
	// legitimate NEXT events in their own right and both reach the
	// cleaned track — rmlast would only strip the third, leaving the
	// second behind.
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.InsertBefore(sentinel, 0, event.Event{Kind: event.RPN, A: 1, B: 10})
	tr.InsertBefore(sentinel, 10, event.Event{Kind: event.RPN, A: 1, B: 20})
	tr.InsertBefore(sentinel, 10, event.Event{Kind: event.RPN, A: 1, B: 30})
	tr.SetDelta(sentinel, 80)

	Check(tr, true)

	assert.Equal(t, 0, countCells(tr))
}

func TestCheckSuppressesConsecutiveValueEqualControllerUpdates(t *testing.T) {
	// controller 64 is a single-event (FIRST|LAST) 7-bit controller, so
	// the repeat isn't dropped as NESTED first — this exercises the
	// value-equal dedup path specifically.
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.InsertBefore(sentinel, 0, event.Event{Kind: event.Controller, A: 64, B: 100})
	tr.InsertBefore(sentinel, 10, event.Event{Kind: event.Controller, A: 64, B: 100})
	tr.SetDelta(sentinel, 10)

	Check(tr, true)

	assert.Equal(t, 1, countCells(tr))
	assert.Equal(t, byte(100), tr.Event(tr.Head()).B)
}

func TestCheckKeepsChangedControllerUpdates(t *testing.T) {
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.InsertBefore(sentinel, 0, event.Event{Kind: event.Controller, A: 64, B: 100})
	tr.InsertBefore(sentinel, 10, event.Event{Kind: event.Controller, A: 64, B: 90})
	tr.SetDelta(sentinel, 10)

	Check(tr, true)

	assert.Equal(t, 2, countCells(tr))
}

func TestCheckKeepsWellFormedNotePair(t *testing.T) {
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.SetDelta(sentinel, 480)
	tr.InsertBefore(sentinel, 0, event.Event{Kind: event.NoteOn, A: 60, B: 100})
	tr.InsertBefore(sentinel, 480, event.Event{Kind: event.NoteOff, A: 60})

	Check(tr, true)

	assert.Equal(t, 2, countCells(tr))
}
