package cli

import (
	"path/filepath"
	"testing"

	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/go-miditrack/miditrack/internal/smfcodec"
	"github.com/go-miditrack/miditrack/internal/track"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	tr := track.Init()
	sentinel := tr.Sentinel()
	tr.SetDelta(sentinel, 50)
	tr.InsertBefore(sentinel, 10, event.Event{Kind: event.NoteOn, A: 60, B: 100})
	tr.InsertBefore(sentinel, 10, event.Event{Kind: event.NoteOff, A: 60})

	path := filepath.Join(t.TempDir(), "in.mid")
	require.NoError(t, smfcodec.Write(tr, path))
	return path
}

func TestTransposeCommandShiftsPitch(t *testing.T) {
	in := writeFixture(t)
	out := filepath.Join(filepath.Dir(in), "out.mid")

	root := NewRootCmd()
	root.SetArgs([]string{"transpose", in, out, "--semitones", "12"})
	require.NoError(t, root.Execute())

	tr, err := smfcodec.Read(out, 0)
	require.NoError(t, err)
	assert.Equal(t, byte(72), tr.Event(tr.Head()).A)
}

func TestMeasureCommandPrintsDefaultMeasureLength(t *testing.T) {
	in := writeFixture(t)

	root := NewRootCmd()
	var buf outputBuffer
	root.SetOut(&buf)
	root.SetArgs([]string{"measure", in, "--n", "1"})
	require.NoError(t, root.Execute())

	assert.Equal(t, "96\n", buf.String())
}

func TestDevicesCommandDoesNotError(t *testing.T) {
	root := NewRootCmd()
	var buf outputBuffer
	root.SetOut(&buf)
	root.SetArgs([]string{"devices"})
	assert.NoError(t, root.Execute())
}

type outputBuffer struct {
	data []byte
}

func (b *outputBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *outputBuffer) String() string { return string(b.data) }
