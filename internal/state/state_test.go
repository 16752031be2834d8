package state

import (
	"testing"

	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/stretchr/testify/assert"
)

func TestUpdateOpensAndClosesNote(t *testing.T) {
	sl := Init()
	on := event.Event{Kind: event.NoteOn, A: 60, B: 100}
	st := sl.Update(on)
	assert.Equal(t, event.First, st.Phase)
	assert.True(t, st.Flags&New != 0)

	off := event.Event{Kind: event.NoteOff, A: 60}
	st = sl.Update(off)
	assert.Equal(t, event.Last, st.Phase)
}

func TestUpdateDetectsNestedNoteOn(t *testing.T) {
	sl := Init()
	sl.Update(event.Event{Kind: event.NoteOn, A: 60, B: 100})
	st := sl.Update(event.Event{Kind: event.NoteOn, A: 60, B: 90})
	assert.Equal(t, event.Next, st.Phase)
	assert.True(t, st.Flags&Nested != 0)
}

func TestUpdateDetectsBogusNoteOff(t *testing.T) {
	sl := Init()
	st := sl.Update(event.Event{Kind: event.NoteOff, A: 60})
	assert.True(t, st.Flags&Bogus != 0)
}

func TestUpdateRPNStaysOpenAcrossValueChanges(t *testing.T) {
	sl := Init()
	st := sl.Update(event.Event{Kind: event.RPN, A: 1, B: 10})
	assert.Equal(t, event.First, st.Phase)
	assert.True(t, st.Flags&Bogus != 0) // data with no opener before it

	st = sl.Update(event.Event{Kind: event.RPN, A: 1, B: 20})
	assert.Equal(t, event.Next, st.Phase)
	assert.False(t, st.Flags&Nested != 0)
	assert.True(t, st.Flags&Changed != 0)

	st = sl.Update(event.Event{Kind: event.RPN, A: event.ParamNull})
	assert.Equal(t, event.Last, st.Phase)
}

func TestOutdateRemovesObservedLastStates(t *testing.T) {
	sl := Init()
	sl.Update(event.Event{Kind: event.Controller, A: 64, B: 100})
	assert.Equal(t, 1, sl.Len())

	sl.Outdate() // first sweep: NEW still set, survives
	assert.Equal(t, 1, sl.Len())

	sl.Outdate() // second sweep: NEW cleared, now removed
	assert.Equal(t, 0, sl.Len())
}

func TestDupCopiesOnlyBehaviouralFields(t *testing.T) {
	sl := Init()
	st := sl.Update(event.Event{Kind: event.NoteOn, A: 60, B: 100})
	st.Tag = 42
	st.Pos = 7

	dup := Dup(sl)
	dst, ok := dup.Lookup(event.Event{Kind: event.NoteOn, A: 60})
	assert.True(t, ok)
	assert.Equal(t, 0, dst.Tag)
	assert.Equal(t, st.Ev, dst.Ev)
	assert.Equal(t, st.Phase, dst.Phase)
}
