package clockdriver

import (
	"testing"

	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/go-miditrack/miditrack/internal/state"
	"github.com/go-miditrack/miditrack/internal/track"
	"github.com/stretchr/testify/assert"
)

func TestAdvanceDeliversEventsAtTheirTic(t *testing.T) {
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.SetDelta(sentinel, 10)
	tr.InsertBefore(sentinel, 2, event.Event{Kind: event.NoteOn, A: 60, B: 100})

	var got []*state.State
	d := New(tr, SinkFunc(func(st *state.State) { got = append(got, st) }), true)

	for i := 0; i < 2; i++ {
		d.Advance()
		assert.Empty(t, got)
	}
	d.Advance()
	assert.Len(t, got, 1)
	assert.Equal(t, byte(60), got[0].Ev.A)
}

func TestCurrentInfoReflectsLatestTempo(t *testing.T) {
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.SetDelta(sentinel, 0)
	tr.InsertBefore(sentinel, 0, event.Event{Kind: event.Tempo, Tempo: 400000})

	d := New(tr, SinkFunc(func(*state.State) {}), true)
	d.Advance()

	info := d.CurrentInfo()
	assert.Equal(t, uint32(400000), info.Usec24)
}

func TestFindMeasureDelegatesToEditor(t *testing.T) {
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.SetDelta(sentinel, 0)

	tic := FindMeasure(tr, 2, true)
	assert.Equal(t, uint32(2*4*24), tic)
}

func TestTicDurationAtDefaultTempo(t *testing.T) {
	d := TicDuration(500000)
	assert.Equal(t, int64(20833), d.Microseconds())
}
