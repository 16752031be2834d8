package editor

import (
	"testing"

	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/go-miditrack/miditrack/internal/track"
	"github.com/stretchr/testify/assert"
)

func TestTransposeShiftsNotePitch(t *testing.T) {
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.SetDelta(sentinel, 480)
	tr.InsertBefore(sentinel, 0, event.Event{Kind: event.NoteOn, A: 60, B: 100})
	tr.InsertBefore(sentinel, 480, event.Event{Kind: event.NoteOff, A: 60})

	Transpose(tr, 0, 960, 12, true)

	ref := tr.Head()
	assert.Equal(t, byte(72), tr.Event(ref).A)
	ref = tr.Next(ref)
	assert.Equal(t, byte(72), tr.Event(ref).A)
}

func TestTransposeWrapsInsteadOfClampingAtTheUpperBound(t *testing.T) {
	// spec.md testable property #7: pitch wraps mod 128 rather than
	// clamping, so 120 transposed up by 20 lands at 12, not 127.
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.InsertBefore(sentinel, 0, event.Event{Kind: event.NoteOn, A: 120, B: 100})

	Transpose(tr, 0, 1, 20, true)

	ref := tr.Head()
	assert.Equal(t, byte(12), tr.Event(ref).A)
}

func TestTransposeWrapsInsteadOfClampingAtTheLowerBound(t *testing.T) {
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.InsertBefore(sentinel, 0, event.Event{Kind: event.NoteOn, A: 2, B: 100})

	Transpose(tr, 0, 1, -10, true)

	ref := tr.Head()
	assert.Equal(t, byte(120), tr.Event(ref).A)
}

func TestTransposeLeavesControllersUntouched(t *testing.T) {
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.InsertBefore(sentinel, 0, event.Event{Kind: event.Controller, A: 7, B: 100})

	Transpose(tr, 0, 480, 12, true)

	ref := tr.Head()
	assert.Equal(t, byte(7), tr.Event(ref).A)
}

func TestTransposeIgnoresNotesOutsideTheRegion(t *testing.T) {
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.InsertBefore(sentinel, 0, event.Event{Kind: event.NoteOn, A: 60, B: 100})

	Transpose(tr, 100, 200, 12, true)

	ref := tr.Head()
	assert.Equal(t, byte(60), tr.Event(ref).A)
}
