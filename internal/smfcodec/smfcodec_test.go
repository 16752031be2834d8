package smfcodec

import (
	"path/filepath"
	"testing"

	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/go-miditrack/miditrack/internal/track"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenReadRoundTripsNoteEvents(t *testing.T) {
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.SetDelta(sentinel, 100)
	tr.InsertBefore(sentinel, 10, event.Event{Kind: event.NoteOn, Channel: 0, A: 60, B: 100})
	tr.InsertBefore(sentinel, 20, event.Event{Kind: event.NoteOff, Channel: 0, A: 60})

	path := filepath.Join(t.TempDir(), "test.mid")
	require.NoError(t, Write(tr, path))

	got, err := Read(path, 7)
	require.NoError(t, err)

	ref := got.Head()
	assert.Equal(t, event.NoteOn, got.Event(ref).Kind)
	assert.Equal(t, event.Device(7), got.Event(ref).Device)
	assert.Equal(t, byte(60), got.Event(ref).A)
	assert.Equal(t, uint32(10), got.Delta(ref))

	ref = got.Next(ref)
	assert.Equal(t, event.NoteOff, got.Event(ref).Kind)
	assert.Equal(t, uint32(20), got.Delta(ref))
}

func TestToSMFMessageConvertsTempoToBPM(t *testing.T) {
	msg, ok := toSMFMessage(event.Event{Kind: event.Tempo, Tempo: 500000})
	assert.True(t, ok)

	var bpm float64
	assert.True(t, msg.GetMetaTempo(&bpm))
	assert.InDelta(t, 120.0, bpm, 0.01)
}

func TestFromSMFMessageRecoversTempo(t *testing.T) {
	msg, ok := toSMFMessage(event.Event{Kind: event.Tempo, Tempo: 500000})
	require.True(t, ok)

	ev, ok := fromSMFMessage(0, msg)
	assert.True(t, ok)
	assert.Equal(t, event.Tempo, ev.Kind)
	assert.InDelta(t, 500000, float64(ev.Tempo), 10)
}
