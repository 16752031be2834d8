package transport

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-miditrack/miditrack/internal/event"
)

// Scheduler plays duration-bounded notes on top of a Writer: NoteOn
// sends the note-on immediately and schedules a note-off after d,
// cancelling any note-off already pending for the same (device,
// channel, pitch) so overlapping retriggers never leave a note stuck
// on — the same pattern as the teacher's internal/midiplayer.NoteOn,
// generalized from one global instrument map to an arbitrary Writer.
type Scheduler struct {
	w Writer

	mu      sync.Mutex
	pending map[noteKey]context.CancelFunc
}

type noteKey struct {
	device  event.Device
	channel uint8
	note    byte
}

// NewScheduler wraps w for duration-based note playback.
func NewScheduler(w Writer) *Scheduler {
	return &Scheduler{w: w, pending: make(map[noteKey]context.CancelFunc)}
}

// NoteOn sends a note-on for (device, channel, note, velocity) and
// schedules its matching note-off d later.
func (s *Scheduler) NoteOn(device event.Device, channel uint8, note, velocity byte, d time.Duration) error {
	key := noteKey{device: device, channel: channel, note: note}

	s.mu.Lock()
	if cancel, ok := s.pending[key]; ok {
		cancel()
		delete(s.pending, key)
	}
	s.mu.Unlock()

	if err := s.w.WriteEvent(event.Event{Kind: event.NoteOn, Device: device, Channel: channel, A: note, B: velocity}); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.pending[key] = cancel
	s.mu.Unlock()

	go func() {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			if err := s.w.WriteEvent(event.Event{Kind: event.NoteOff, Device: device, Channel: channel, A: note}); err != nil {
				log.Printf("[TRANSPORT] scheduled note-off failed: %v", err)
			}
			s.mu.Lock()
			if ctx.Err() == nil { // not superseded by a retrigger or StopAll
				delete(s.pending, key)
			}
			s.mu.Unlock()
		case <-ctx.Done():
		}
	}()
	return nil
}

// StopAll cancels every pending scheduled note-off and sends an
// immediate note-off for each, leaving nothing sounding.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, cancel := range s.pending {
		cancel()
		if err := s.w.WriteEvent(event.Event{Kind: event.NoteOff, Device: key.device, Channel: key.channel, A: key.note}); err != nil {
			log.Printf("[TRANSPORT] stop-all note-off failed: %v", err)
		}
		delete(s.pending, key)
	}
}
