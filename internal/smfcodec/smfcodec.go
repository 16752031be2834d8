// Package smfcodec reads and writes track.Track as a Standard MIDI
// File, using gitlab.com/gomidi/midi/v2/smf for the actual chunk/varint
// encoding — the SMF wire format is never touched by hand here, the way
// the teacher never hand-rolled MIDI wire encoding either.
package smfcodec

import (
	"fmt"
	"log"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/go-miditrack/miditrack/internal/track"
	"github.com/go-miditrack/miditrack/internal/transport"
)

// TicksPerQuarterNote is the SMF time division this codec always
// writes and assumes on read; internal/editor's DefaultTPB (24 tics
// per beat) is a playback-clock convention, independent of this.
const TicksPerQuarterNote = 960

// Write encodes tr as a single-track SMF file at path. event.Device is
// not encoded into the file (SMF has no such field); Read assigns a
// device to the events it decodes.
func Write(tr *track.Track, path string) error {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(TicksPerQuarterNote)

	var smfTrack smf.Track
	for ref := tr.Head(); ; ref = tr.Next(ref) {
		delta := tr.Delta(ref)
		if tr.IsSentinel(ref) {
			smfTrack.Close(delta)
			break
		}
		ev := tr.Event(ref)
		msg, ok := toSMFMessage(ev)
		if !ok {
			log.Printf("[SMF] skipping event with no wire representation: %v", ev.Kind)
			continue
		}
		smfTrack.Add(delta, msg)
	}

	if err := sm.Add(smfTrack); err != nil {
		return fmt.Errorf("smfcodec: add track: %w", err)
	}
	if err := sm.WriteFile(path); err != nil {
		return fmt.Errorf("smfcodec: write %s: %w", path, err)
	}
	return nil
}

func toSMFMessage(ev event.Event) (midi.Message, bool) {
	switch ev.Kind {
	case event.Tempo:
		// ev.Tempo is microseconds per 24 tics, and this codec's TPB
		// convention treats 24 tics as one quarter note (the standard
		// MIDI clock's 24-ppqn contract), so it's already microseconds
		// per quarter note; MetaTempo wants the BPM equivalent.
		return smf.MetaTempo(60000000 / float64(ev.Tempo)), true
	case event.TimeSig:
		return smf.MetaMeter(ev.TimeSigBeats, ev.TimeSigTPB), true
	default:
		return transport.ToMIDI(ev)
	}
}

// Read decodes path's first track into a fresh track.Track,
// assigning device to every wire event it reconstructs.
func Read(path string, device event.Device) (*track.Track, error) {
	rd, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("smfcodec: read %s: %w", path, err)
	}
	if len(rd.Tracks) == 0 {
		return track.Init(), nil
	}

	tr := track.Init()
	sentinel := tr.Sentinel()
	var budget uint32
	for _, msg := range rd.Tracks[0] {
		budget += msg.Delta
	}
	tr.SetDelta(sentinel, budget)

	var pending uint32
	for _, msg := range rd.Tracks[0] {
		pending += msg.Delta
		ev, ok := fromSMFMessage(device, msg.Message)
		if !ok {
			// Meta/sysex events the core has no Kind for (track name,
			// end-of-track, etc.) are dropped, but their delta is kept
			// and folded onto the next real event so no tic is lost.
			continue
		}
		tr.InsertBefore(sentinel, pending, ev)
		pending = 0
	}
	tr.SetDelta(sentinel, pending)
	return tr, nil
}

func fromSMFMessage(device event.Device, msg smf.Message) (event.Event, bool) {
	var bpm float64
	if msg.GetMetaTempo(&bpm) && bpm > 0 {
		return event.Event{Kind: event.Tempo, Tempo: uint32(60000000 / bpm)}, true
	}
	var num, denom uint8
	if msg.GetMetaMeter(&num, &denom) {
		return event.Event{Kind: event.TimeSig, TimeSigBeats: num, TimeSigTPB: denom}, true
	}
	return transport.FromMIDI(device, msg)
}
