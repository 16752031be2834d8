package editor

import (
	"testing"

	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/go-miditrack/miditrack/internal/track"
	"github.com/stretchr/testify/assert"
)

func TestConfEvOnEmptyTrackInsertsTheFrame(t *testing.T) {
	// spec.md S3, first half.
	tr := track.Init()

	ConfEv(tr, event.Event{Kind: event.Program, A: 5}, true)

	assert.Equal(t, 1, countCells(tr))
	assert.Equal(t, event.Program, tr.Event(tr.Head()).Kind)
	assert.Equal(t, byte(5), tr.Event(tr.Head()).A)
}

func TestConfEvReplacesThePriorValueForTheSameFrame(t *testing.T) {
	// spec.md S3, second half: calling confev again with a new value
	// for the same frame replaces it rather than accumulating.
	tr := track.Init()
	ConfEv(tr, event.Event{Kind: event.Program, A: 5}, true)

	ConfEv(tr, event.Event{Kind: event.Program, A: 7}, true)

	assert.Equal(t, 1, countCells(tr))
	assert.Equal(t, byte(7), tr.Event(tr.Head()).A)
}

func TestConfEvPreservesOtherFramesRelativeOrder(t *testing.T) {
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.InsertBefore(sentinel, 0, event.Event{Kind: event.TimeSig, TimeSigBeats: 4, TimeSigTPB: 24})
	tr.InsertBefore(sentinel, 0, event.Event{Kind: event.Tempo, Tempo: 500000})

	// upserting a brand new frame must not disturb TimeSig/Tempo's
	// existing relative order, and the new frame sorts last.
	ConfEv(tr, event.Event{Kind: event.Program, A: 5}, true)

	ref := tr.Head()
	assert.Equal(t, event.TimeSig, tr.Event(ref).Kind)
	ref = tr.Next(ref)
	assert.Equal(t, event.Tempo, tr.Event(ref).Kind)
	ref = tr.Next(ref)
	assert.Equal(t, event.Program, tr.Event(ref).Kind)
}

func TestConfEvUpdatingAnExistingFrameMovesItLast(t *testing.T) {
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.InsertBefore(sentinel, 0, event.Event{Kind: event.TimeSig, TimeSigBeats: 4, TimeSigTPB: 24})
	tr.InsertBefore(sentinel, 0, event.Event{Kind: event.Tempo, Tempo: 500000})

	ConfEv(tr, event.Event{Kind: event.TimeSig, TimeSigBeats: 3, TimeSigTPB: 24}, true)

	ref := tr.Head()
	assert.Equal(t, event.Tempo, tr.Event(ref).Kind)
	ref = tr.Next(ref)
	assert.Equal(t, event.TimeSig, tr.Event(ref).Kind)
	assert.Equal(t, uint8(3), tr.Event(ref).TimeSigBeats)
}

func TestConfEvRejectsANonOneShotEventLeavingTrackUntouched(t *testing.T) {
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.InsertBefore(sentinel, 0, event.Event{Kind: event.Program, A: 5})

	ConfEv(tr, event.Event{Kind: event.NoteOn, A: 60, B: 100}, false)

	assert.Equal(t, 1, countCells(tr))
	assert.Equal(t, event.Program, tr.Event(tr.Head()).Kind)
}

func TestConfEvPanicsInDebugModeOnANonOneShotEvent(t *testing.T) {
	tr := track.Init()

	assert.Panics(t, func() {
		ConfEv(tr, event.Event{Kind: event.NoteOn, A: 60, B: 100}, true)
	})
}
