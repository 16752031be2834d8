// Package track implements the sequencer's event storage: an intrusive
// doubly linked list of (delta-tics, event) cells terminated by a null
// sentinel. Track is purely structural; it has no notion of frames,
// phases, or MIDI consistency — that is the seqptr cursor's job.
package track

import (
	"log"

	"github.com/go-miditrack/miditrack/internal/event"
)

// CellRef is a stable handle into a Track's cell arena. It is the Go
// analogue of the C implementation's raw cell pointer: unlike a pointer,
// a CellRef stays valid as a lookup key across splices within the same
// arena generation, and is the type State.Pos aliases into the track
// (see internal/state). Nil (-1) never denotes a real cell; the zero
// CellRef is the sentinel of a freshly Init'd track.
type CellRef int32

// Nil is the CellRef used where "no cell" must be represented.
const Nil CellRef = -1

type cell struct {
	delta uint32
	ev    event.Event
	prev  CellRef
	next  CellRef
	free  bool
}

// Track is an arena of cells; cell 0 is always the sentinel whose
// Ev.Kind == event.Null and whose delta holds the trailing blank tics.
type Track struct {
	cells []cell
	free  []CellRef
	head  CellRef
	tail  CellRef // the sentinel
}

// Init creates an empty track: a single sentinel cell with zero
// trailing delta.
func Init() *Track {
	tr := &Track{}
	tr.cells = append(tr.cells, cell{delta: 0, ev: event.Event{Kind: event.Null}, prev: Nil, next: Nil})
	tr.head = 0
	tr.tail = 0
	return tr
}

// Done releases the track. It logs if the track was never Clear'd and
// still holds cells, mirroring the core's policy of warning rather than
// failing on benign end-of-life inconsistency.
func (tr *Track) Done() {
	if tr.head != tr.tail {
		log.Printf("[TRACK] done: track still has %d live cell(s)", tr.liveCount())
	}
}

func (tr *Track) liveCount() int {
	n := 0
	for c := tr.head; c != tr.tail; c = tr.cells[c].next {
		n++
	}
	return n
}

// Clear empties the track back to a single sentinel with zero delta.
func (tr *Track) Clear() {
	tr.cells = tr.cells[:0]
	tr.free = tr.free[:0]
	tr.cells = append(tr.cells, cell{delta: 0, ev: event.Event{Kind: event.Null}, prev: Nil, next: Nil})
	tr.head = 0
	tr.tail = 0
}

// Chomp removes trailing blank tics past the last event by zeroing the
// sentinel's delta.
func (tr *Track) Chomp() {
	tr.cells[tr.tail].delta = 0
}

// Head returns the first cell of the track (possibly the sentinel, if
// the track is empty).
func (tr *Track) Head() CellRef { return tr.head }

// Sentinel returns the track's terminal cell.
func (tr *Track) Sentinel() CellRef { return tr.tail }

// Next returns the cell following ref.
func (tr *Track) Next(ref CellRef) CellRef { return tr.cells[ref].next }

// Prev returns the cell preceding ref, or Nil if ref is the head.
func (tr *Track) Prev(ref CellRef) CellRef { return tr.cells[ref].prev }

// Delta returns the tics-before-this-event carried by ref.
func (tr *Track) Delta(ref CellRef) uint32 { return tr.cells[ref].delta }

// SetDelta overwrites the tics-before-this-event carried by ref.
func (tr *Track) SetDelta(ref CellRef, d uint32) { tr.cells[ref].delta = d }

// Event returns the event carried by ref. For the sentinel this is the
// zero event (Kind == event.Null).
func (tr *Track) Event(ref CellRef) event.Event { return tr.cells[ref].ev }

// IsSentinel reports whether ref is the track's terminal cell.
func (tr *Track) IsSentinel(ref CellRef) bool { return ref == tr.tail }

func (tr *Track) alloc(delta uint32, ev event.Event) CellRef {
	if n := len(tr.free); n > 0 {
		ref := tr.free[n-1]
		tr.free = tr.free[:n-1]
		tr.cells[ref] = cell{delta: delta, ev: ev, prev: Nil, next: Nil}
		return ref
	}
	tr.cells = append(tr.cells, cell{delta: delta, ev: ev, prev: Nil, next: Nil})
	return CellRef(len(tr.cells) - 1)
}

// InsertBefore splices a new cell carrying ev, with delta tics before
// it, immediately before at, reducing at's own delta by the same
// amount. Returns the new cell's ref.
func (tr *Track) InsertBefore(at CellRef, delta uint32, ev event.Event) CellRef {
	ref := tr.alloc(delta, ev)
	prev := tr.cells[at].prev
	tr.cells[ref].prev = prev
	tr.cells[ref].next = at
	tr.cells[at].prev = ref
	if prev != Nil {
		tr.cells[prev].next = ref
	} else {
		tr.head = ref
	}
	tr.cells[at].delta -= delta
	return ref
}

// Remove splices ref out of the list, donating its delta to the
// following cell, and frees its arena slot. ref must not be the
// sentinel.
func (tr *Track) Remove(ref CellRef) {
	if ref == tr.tail {
		panic("track: cannot remove the sentinel")
	}
	prev := tr.cells[ref].prev
	next := tr.cells[ref].next
	tr.cells[next].delta += tr.cells[ref].delta
	if prev != Nil {
		tr.cells[prev].next = next
	} else {
		tr.head = next
	}
	tr.cells[next].prev = prev
	tr.cells[ref].free = true
	tr.free = append(tr.free, ref)
}

// Length returns the total track length in tics: the sum of every
// cell's delta, sentinel included.
func (tr *Track) Length() uint32 {
	var total uint32
	for c := tr.head; ; c = tr.cells[c].next {
		total += tr.cells[c].delta
		if c == tr.tail {
			break
		}
	}
	return total
}
