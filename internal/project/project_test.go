package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/go-miditrack/miditrack/internal/track"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTrack() *track.Track {
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.SetDelta(sentinel, 35) // 10 + 5 before the events, 20 trailing
	tr.InsertBefore(sentinel, 10, event.Event{Kind: event.NoteOn, A: 60, B: 100})
	tr.InsertBefore(sentinel, 5, event.Event{Kind: event.NoteOff, A: 60})
	return tr
}

func TestEncodeDecodeRoundTrips(t *testing.T) {
	tr := buildTrack()
	encoded := Encode(tr)

	assert.Len(t, encoded.Cells, 2)
	assert.Equal(t, uint32(20), encoded.TrailingDelta)

	decoded := Decode(encoded)
	assert.Equal(t, tr.Length(), decoded.Length())

	ref := decoded.Head()
	assert.Equal(t, event.NoteOn, decoded.Event(ref).Kind)
	assert.Equal(t, uint32(10), decoded.Delta(ref))
	ref = decoded.Next(ref)
	assert.Equal(t, event.NoteOff, decoded.Event(ref).Kind)
	assert.Equal(t, uint32(5), decoded.Delta(ref))
}

func TestSessionPutGetRoundTrips(t *testing.T) {
	s := NewSession("demo")
	s.Put("lead", buildTrack())

	got, ok := s.Get("lead")
	require.True(t, ok)
	assert.Equal(t, uint32(35), got.Length())

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestSaveLoadRoundTripsThroughDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json.gz")

	s := NewSession("demo")
	s.Put("lead", buildTrack())
	require.NoError(t, Save(s, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", loaded.Name)

	tr, ok := loaded.Get("lead")
	require.True(t, ok)
	assert.Equal(t, uint32(35), tr.Length())
}

func TestAutoSaverDebouncesRepeatedTriggers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "auto.json.gz")

	a := NewAutoSaver(path, 20*time.Millisecond)
	s := NewSession("demo")
	s.Put("lead", buildTrack())

	a.Trigger(s)
	a.Trigger(s)
	a.Trigger(s)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "save should not have happened yet")

	time.Sleep(60 * time.Millisecond)
	_, err = os.Stat(path)
	assert.NoError(t, err, "save should have happened after debounce window")
}
