// Package transport adapts the sequencing core's event.Event stream to
// and from real MIDI hardware/software ports, via
// gitlab.com/gomidi/midi/v2 and its drivers package — the same stack
// the teacher's internal/midiconnector used, generalized from a single
// hardcoded output per named instrument to the core's Device-keyed
// routing.
package transport

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/go-miditrack/miditrack/internal/event"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Writer is the core's write_event(ev) collaborator: it accepts a fully
// classified event and forwards it to a real or virtual destination.
type Writer interface {
	WriteEvent(ev event.Event) error
}

// Reader is the core's read_event() collaborator: it blocks until the
// next inbound event is available.
type Reader interface {
	ReadEvent() (event.Event, error)
}

// Devices lists the names of every MIDI output port currently visible
// to the driver backend, mirroring the teacher's midiconnector.Devices.
func Devices() []string {
	var names []string
	for _, out := range midi.GetOutPorts() {
		names = append(names, out.String())
	}
	return names
}

// resolvePortName does prefix/substring matching against Devices() the
// same way the teacher's midiconnector.filterName did, so a Device can
// be registered by a human-typed partial name ("IAC Driver") instead of
// an exact port string.
func resolvePortName(want string) (string, error) {
	names := Devices()
	lower := strings.ToLower(want)

	for _, n := range names {
		if strings.EqualFold(n, want) {
			return n, nil
		}
	}
	for _, n := range names {
		if strings.HasPrefix(strings.ToLower(n), lower) {
			return n, nil
		}
	}
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), lower) {
			return n, nil
		}
	}
	return "", fmt.Errorf("transport: no MIDI output port matching %q", want)
}

// DriverTransport is a Writer backed by one gomidi/midi/v2 output port
// per event.Device. Ports are opened lazily on first write and closed
// together by Close.
type DriverTransport struct {
	mu    sync.Mutex
	names map[event.Device]string
	ports map[event.Device]drivers.Out
	debug bool
}

// NewDriverTransport builds a transport that routes each event.Device
// key of routes to the output port matching its name, resolved the same
// way the teacher matched instrument names to devices.
func NewDriverTransport(routes map[event.Device]string, debug bool) *DriverTransport {
	names := make(map[event.Device]string, len(routes))
	for d, n := range routes {
		names[d] = n
	}
	return &DriverTransport{names: names, ports: make(map[event.Device]drivers.Out), debug: debug}
}

func (t *DriverTransport) portFor(d event.Device) (drivers.Out, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if out, ok := t.ports[d]; ok {
		return out, nil
	}
	want, ok := t.names[d]
	if !ok {
		return nil, fmt.Errorf("transport: device %d has no registered port", d)
	}
	resolved, err := resolvePortName(want)
	if err != nil {
		return nil, err
	}
	out, err := midi.FindOutPort(resolved)
	if err != nil {
		return nil, fmt.Errorf("transport: find port %q: %w", resolved, err)
	}
	if err := out.Open(); err != nil {
		return nil, fmt.Errorf("transport: open port %q: %w", resolved, err)
	}
	t.ports[d] = out
	log.Printf("[TRANSPORT] opened port %q for device %d", resolved, d)
	return out, nil
}

// WriteEvent translates ev to a midi.Message and sends it on ev's
// device's port.
func (t *DriverTransport) WriteEvent(ev event.Event) error {
	out, err := t.portFor(ev.Device)
	if err != nil {
		return err
	}
	msg, ok := ToMIDI(ev)
	if !ok {
		// Tempo/TimeSig and other non-wire events have no MIDI channel
		// message; nothing to send.
		return nil
	}
	return out.Send(msg)
}

// Close closes every port this transport has opened.
func (t *DriverTransport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for d, out := range t.ports {
		if err := out.Close(); err != nil {
			log.Printf("[TRANSPORT] close device %d: %v", d, err)
		}
	}
	t.ports = make(map[event.Device]drivers.Out)
}

// ToMIDI converts a core event.Event to its wire-level
// gitlab.com/gomidi/midi/v2 message. ok is false for events with no
// single-message wire representation (Tempo, TimeSig — those live only
// in the SMF meta stream, see internal/smfcodec).
func ToMIDI(ev event.Event) (midi.Message, bool) {
	ch := ev.Channel
	switch ev.Kind {
	case event.NoteOn:
		return midi.NoteOn(ch, ev.A, ev.B), true
	case event.NoteOff:
		return midi.NoteOff(ch, ev.A), true
	case event.Controller:
		return midi.ControlChange(ch, ev.A, ev.B), true
	case event.PitchBend:
		rel := int16(uint16(ev.B)<<7|uint16(ev.A)) - 8192
		return midi.Pitchbend(ch, rel), true
	case event.RPN, event.NRPN:
		// RPN/NRPN have no single wire message of their own: on the wire
		// they are a sequence of plain Controller events (98-101,
		// 6/38/96/97). event.Cancel/Restore synthesize such Controller
		// events; an RPN/NRPN event itself is not sent.
		return midi.Message{}, false
	case event.Program:
		return midi.ProgramChange(ch, ev.A), true
	case event.ChannelAfterTouch:
		return midi.AfterTouch(ch, ev.A), true
	case event.KeyAfterTouch:
		return midi.PolyAfterTouch(ch, ev.A, ev.B), true
	default:
		return midi.Message{}, false
	}
}

// FromMIDI converts an inbound wire message to a core event.Event
// targeting device d. ok is false for message kinds the core has no
// Kind for (system realtime, sysex, etc).
func FromMIDI(d event.Device, msg midi.Message) (event.Event, bool) {
	var ch, a, b uint8
	if msg.GetNoteOn(&ch, &a, &b) {
		if b == 0 {
			return event.Event{Kind: event.NoteOff, Device: d, Channel: ch, A: a}, true
		}
		return event.Event{Kind: event.NoteOn, Device: d, Channel: ch, A: a, B: b}, true
	}
	if msg.GetNoteOff(&ch, &a, &b) {
		return event.Event{Kind: event.NoteOff, Device: d, Channel: ch, A: a}, true
	}
	if msg.GetControlChange(&ch, &a, &b) {
		return event.Event{Kind: event.Controller, Device: d, Channel: ch, A: a, B: b}, true
	}
	var rel, abs int16
	if msg.GetPitchBend(&ch, &rel, &abs) {
		v := uint16(int(rel) + 8192)
		return event.Event{Kind: event.PitchBend, Device: d, Channel: ch, A: byte(v & 0x7f), B: byte(v >> 7)}, true
	}
	if msg.GetProgramChange(&ch, &a) {
		return event.Event{Kind: event.Program, Device: d, Channel: ch, A: a}, true
	}
	if msg.GetAfterTouch(&ch, &a) {
		return event.Event{Kind: event.ChannelAfterTouch, Device: d, Channel: ch, A: a}, true
	}
	if msg.GetPolyAfterTouch(&ch, &a, &b) {
		return event.Event{Kind: event.KeyAfterTouch, Device: d, Channel: ch, A: a, B: b}, true
	}
	return event.Event{}, false
}
