// Package event classifies single MIDI events: what kind they are, which
// frame they belong to, and what phase (FIRST/NEXT/LAST) they occupy
// within that frame.
package event

import "fmt"

// Kind is the MIDI command kind carried by an Event.
type Kind int

const (
	Null Kind = iota
	NoteOn
	NoteOff
	Controller
	NRPN
	RPN
	PitchBend
	Program
	ChannelAfterTouch
	KeyAfterTouch
	Tempo
	TimeSig
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case NoteOn:
		return "noteon"
	case NoteOff:
		return "noteoff"
	case Controller:
		return "controller"
	case NRPN:
		return "nrpn"
	case RPN:
		return "rpn"
	case PitchBend:
		return "pitchbend"
	case Program:
		return "program"
	case ChannelAfterTouch:
		return "chanaftertouch"
	case KeyAfterTouch:
		return "keyaftertouch"
	case Tempo:
		return "tempo"
	case TimeSig:
		return "timesig"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Phase is a bitmask describing an event's role within its frame.
type Phase int

const (
	First Phase = 1 << iota
	Next
	Last
)

// FirstLast is the composite phase of one-shot events (program change,
// tempo, time signature): they open and close their frame in the same
// instant.
const FirstLast = First | Last

func (p Phase) String() string {
	switch p {
	case First:
		return "FIRST"
	case Next:
		return "NEXT"
	case Last:
		return "LAST"
	case FirstLast:
		return "FIRST|LAST"
	default:
		return "NONE"
	}
}

// REVMAX bounds the number of events ev_cancel/ev_restore may synthesize
// for a single frame.
const REVMAX = 4

// Device identifies the output device+channel pair an event targets.
// Device is opaque to the core: it is only used for frame identity and
// is handed straight through to the transport.
type Device int

// Event is a tagged MIDI event. Payload interpretation depends on Kind:
//
//	NoteOn/NoteOff/KeyAfterTouch: A = pitch, B = velocity/pressure
//	Controller:                   A = controller number, B = value
//	RPN/NRPN:                     A = parameter number, B = value
//	                              (A == ParamNull parks/closes the frame)
//	PitchBend:                    A = LSB, B = MSB (14-bit bend value)
//	Program:                      A = program number
//	ChannelAfterTouch:            A = pressure value
//	Tempo:                        Tempo = microseconds per 24 tics
//	TimeSig:                      TimeSigBeats, TimeSigTPB
//
// Phase is never stored on an Event: it is always recomputed from
// (Event, prior state) by statelist.Update. Persisting phase would leak
// a computed property into the data model.
type Event struct {
	Kind    Kind
	Device  Device
	Channel uint8
	A       byte
	B       byte

	Tempo        uint32
	TimeSigBeats uint8
	TimeSigTPB   uint8
}

// ParamNull is the RPN/NRPN parameter-number sentinel (mirrors the wire
// convention of selecting parameter 127/127, "no active parameter") used
// to explicitly park/close an RPN or NRPN frame.
const ParamNull byte = 0x7F

// Controller14MSBMax is the highest 7-bit controller number that opens a
// 14-bit two-event frame; its matching LSB half is ControllerNum+32.
const Controller14MSBMax = 31

// IsNote reports whether kind belongs to the note family: NoteOn,
// NoteOff, KeyAfterTouch. Notes cannot be cancelled or restored; callers
// must suspend them structurally instead.
func IsNote(k Kind) bool {
	switch k {
	case NoteOn, NoteOff, KeyAfterTouch:
		return true
	default:
		return false
	}
}

// Is14BitMSB reports whether a Controller event with this number opens a
// two-event 14-bit frame.
func Is14BitMSB(ccNum byte) bool {
	return ccNum <= Controller14MSBMax
}

// FrameID identifies the frame an event belongs to: same Kind, channel,
// and frame-selector payload. Tempo and TimeSig are singleton frames per
// track, so their selector is fixed regardless of channel.
type FrameID struct {
	Kind     Kind
	Device   Device
	Channel  uint8
	Selector byte
}

// FrameKey computes the frame identity of ev.
func FrameKey(ev Event) FrameID {
	switch ev.Kind {
	case NoteOn, NoteOff, KeyAfterTouch:
		return FrameID{Kind: NoteOn, Device: ev.Device, Channel: ev.Channel, Selector: ev.A}
	case Controller:
		sel := ev.A
		if sel > Controller14MSBMax && sel <= Controller14MSBMax*2+1 {
			// LSB half of a 14-bit pair belongs to its MSB's frame.
			sel -= Controller14MSBMax + 1
		}
		return FrameID{Kind: Controller, Device: ev.Device, Channel: ev.Channel, Selector: sel}
	case RPN, NRPN:
		return FrameID{Kind: ev.Kind, Device: ev.Device, Channel: ev.Channel, Selector: ev.A}
	case PitchBend, Program, ChannelAfterTouch:
		return FrameID{Kind: ev.Kind, Device: ev.Device, Channel: ev.Channel}
	case Tempo, TimeSig:
		return FrameID{Kind: ev.Kind}
	default:
		return FrameID{Kind: ev.Kind, Device: ev.Device, Channel: ev.Channel, Selector: ev.A}
	}
}

// Classify returns ev's intrinsic, context-free phase tendency: FIRST
// for events that open a frame, LAST for events that close one,
// FIRST|LAST for one-shot events, and NEXT for events that merely carry
// a continuation value (key aftertouch, RPN/NRPN data) and so open a
// frame only on first sight. statelist.Update combines this with the
// prior occupant to resolve the event's actual phase, including
// NEXT/NESTED/BOGUS detection.
func Classify(ev Event) Phase {
	switch ev.Kind {
	case NoteOn:
		if ev.B == 0 {
			// velocity-0 note-on collapses to a note-off
			return Last
		}
		return First
	case NoteOff:
		return Last
	case KeyAfterTouch:
		return Next
	case Controller:
		if Is14BitMSB(ev.A) {
			return First
		}
		if ev.A > Controller14MSBMax && ev.A <= Controller14MSBMax*2+1 {
			return Last
		}
		return FirstLast
	case RPN, NRPN:
		if ev.A == ParamNull {
			return Last
		}
		return Next
	case PitchBend, Program, ChannelAfterTouch:
		return FirstLast
	case Tempo, TimeSig:
		return FirstLast
	default:
		return FirstLast
	}
}

// StateMatch tests whether st belongs to the same frame as ev.
func StateMatch(stEv Event, ev Event) bool {
	return FrameKey(stEv) == FrameKey(ev)
}

// StateEqual tests deep equality, including payload, between two events
// of the same frame.
func StateEqual(a, b Event) bool {
	if a.Kind != b.Kind || a.Device != b.Device || a.Channel != b.Channel {
		return false
	}
	switch a.Kind {
	case Tempo:
		return a.Tempo == b.Tempo
	case TimeSig:
		return a.TimeSigBeats == b.TimeSigBeats && a.TimeSigTPB == b.TimeSigTPB
	default:
		return a.A == b.A && a.B == b.B
	}
}

func cc(device Device, channel, num, val byte) Event {
	return Event{Kind: Controller, Device: device, Channel: channel, A: num, B: val}
}

// Cancel synthesises up to REVMAX events that suspend a non-note frame's
// current value at an arbitrary cut point. Notes return no events: the
// caller must handle note suspension by structural deletion.
func Cancel(ev Event) (out []Event, ok bool) {
	if IsNote(ev.Kind) {
		return nil, false
	}
	switch ev.Kind {
	case Controller:
		if Is14BitMSB(ev.A) {
			return []Event{cc(ev.Device, ev.Channel, ev.A, 0), cc(ev.Device, ev.Channel, ev.A+Controller14MSBMax+1, 0)}, true
		}
		return []Event{cc(ev.Device, ev.Channel, ev.A, 0)}, true
	case PitchBend:
		return []Event{{Kind: PitchBend, Device: ev.Device, Channel: ev.Channel, A: 0, B: 0x40}}, true
	case RPN:
		return []Event{cc(ev.Device, ev.Channel, 101, ParamNull), cc(ev.Device, ev.Channel, 100, ParamNull)}, true
	case NRPN:
		return []Event{cc(ev.Device, ev.Channel, 99, ParamNull), cc(ev.Device, ev.Channel, 98, ParamNull)}, true
	default:
		return nil, false
	}
}

// Restore synthesises up to REVMAX events that reinstate a non-note
// frame's current value. Dual to Cancel.
func Restore(ev Event) (out []Event, ok bool) {
	if IsNote(ev.Kind) {
		return nil, false
	}
	switch ev.Kind {
	case Controller:
		if Is14BitMSB(ev.A) {
			return []Event{cc(ev.Device, ev.Channel, ev.A, ev.B), cc(ev.Device, ev.Channel, ev.A+Controller14MSBMax+1, 0)}, true
		}
		return []Event{cc(ev.Device, ev.Channel, ev.A, ev.B)}, true
	case PitchBend:
		return []Event{ev}, true
	case RPN:
		return []Event{
			cc(ev.Device, ev.Channel, 101, 0),
			cc(ev.Device, ev.Channel, 100, ev.A),
			cc(ev.Device, ev.Channel, 6, ev.B),
			cc(ev.Device, ev.Channel, 38, 0),
		}, true
	case NRPN:
		return []Event{
			cc(ev.Device, ev.Channel, 99, 0),
			cc(ev.Device, ev.Channel, 98, ev.A),
			cc(ev.Device, ev.Channel, 6, ev.B),
			cc(ev.Device, ev.Channel, 38, 0),
		}, true
	default:
		return nil, false
	}
}
