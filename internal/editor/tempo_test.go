package editor

import (
	"testing"

	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/go-miditrack/miditrack/internal/track"
	"github.com/stretchr/testify/assert"
)

func TestFindMeasureUsesDefaultSignatureWhenTrackIsEmpty(t *testing.T) {
	tr := track.Init()
	tic := FindMeasure(tr, 2, true)
	assert.Equal(t, uint32(2*DefaultBPM*DefaultTPB), tic)
}

func TestFindMeasureHonorsTimeSigChange(t *testing.T) {
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.SetDelta(sentinel, 200)
	tr.InsertBefore(sentinel, 0, event.Event{Kind: event.TimeSig, TimeSigBeats: 3, TimeSigTPB: 24})

	tic := FindMeasure(tr, 1, true)
	assert.Equal(t, uint32(3*24), tic)
}

func TestSetTempoReplacesExistingTempoAtSameTic(t *testing.T) {
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.SetDelta(sentinel, 0)
	tr.InsertBefore(sentinel, 0, event.Event{Kind: event.Tempo, Tempo: 500000})

	SetTempo(tr, 0, 400000, true)

	assert.Equal(t, 1, countCells(tr))
	ref := tr.Head()
	assert.Equal(t, uint32(400000), tr.Event(ref).Tempo)
}

func TestTimeRmIsNoOpWhenAmountIsZero(t *testing.T) {
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.SetDelta(sentinel, 480)
	tr.InsertBefore(sentinel, 0, event.Event{Kind: event.NoteOn, A: 60, B: 100})

	TimeRm(tr, 0, 0, true)

	assert.Equal(t, 1, countCells(tr))
}

func TestTimeInsExtendsTrackByAmountMeasuresOfTheNewSignature(t *testing.T) {
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.SetDelta(sentinel, 480)

	before := tr.Length()
	TimeIns(tr, 0, 2, 3, 24, true)
	after := tr.Length()

	assert.Equal(t, before+uint32(2*3*24), after)
}

func TestTimeInsWritesTheNewSignatureAndRestoresThePriorOneAfterward(t *testing.T) {
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.SetDelta(sentinel, 480)
	tr.InsertBefore(sentinel, 0, event.Event{Kind: event.TimeSig, TimeSigBeats: 4, TimeSigTPB: 24})

	TimeIns(tr, 0, 1, 3, 24, true)

	ref := tr.Head()
	assert.Equal(t, event.TimeSig, tr.Event(ref).Kind)
	assert.Equal(t, uint8(3), tr.Event(ref).TimeSigBeats)

	ref = tr.Next(ref)
	assert.Equal(t, event.TimeSig, tr.Event(ref).Kind)
	assert.Equal(t, uint8(4), tr.Event(ref).TimeSigBeats)
}

func TestTimeInsDoesNotWriteARestoringSignatureWhenUnchanged(t *testing.T) {
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.SetDelta(sentinel, 480)

	TimeIns(tr, 0, 1, DefaultBPM, DefaultTPB, true)

	ref := tr.Head()
	assert.Equal(t, event.TimeSig, tr.Event(ref).Kind)
	ref = tr.Next(ref)
	assert.True(t, tr.IsSentinel(ref))
}
