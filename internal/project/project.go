// Package project persists named tracks to disk so a session built
// through internal/editor and cmd/seqctl survives across invocations.
// It mirrors the teacher's internal/storage: jsoniter for marshaling,
// gzip for the file format, and a debounced AutoSave for interactive
// callers, generalized from the teacher's single fixed Model to an
// arbitrary named set of track.Track values.
package project

import (
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/go-miditrack/miditrack/internal/track"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Cell is track.Track's on-disk representation: one (delta, event)
// pair per non-sentinel cell, in list order, plus the sentinel's own
// trailing delta recorded separately in Track.TrailingDelta.
type Cell struct {
	Delta uint32      `json:"delta"`
	Event event.Event `json:"event"`
}

// Session is a named collection of tracks, the unit of save/load.
type Session struct {
	Name   string            `json:"name"`
	Tracks map[string]*Track `json:"tracks"`
}

// Track is track.Track's serializable form: the non-sentinel cells in
// order, plus the sentinel's trailing delta.
type Track struct {
	Cells         []Cell `json:"cells"`
	TrailingDelta uint32 `json:"trailing_delta"`
}

// Encode snapshots tr into its serializable form.
func Encode(tr *track.Track) *Track {
	out := &Track{}
	for ref := tr.Head(); ref != tr.Sentinel(); ref = tr.Next(ref) {
		out.Cells = append(out.Cells, Cell{Delta: tr.Delta(ref), Event: tr.Event(ref)})
	}
	out.TrailingDelta = tr.Delta(tr.Sentinel())
	return out
}

// Decode rebuilds a track.Track from its serializable form.
func Decode(t *Track) *track.Track {
	tr := track.Init()
	sentinel := tr.Sentinel()

	// InsertBefore(at, delta, ev) subtracts delta from at's own delta,
	// so inserting forward against a freshly-Init'd (zero-delta)
	// sentinel would underflow. Give the sentinel a budget covering
	// every cell's delta first, then overwrite it with the real
	// trailing delta once all cells are spliced in.
	var budget uint32
	for _, c := range t.Cells {
		budget += c.Delta
	}
	tr.SetDelta(sentinel, budget)
	for _, c := range t.Cells {
		tr.InsertBefore(sentinel, c.Delta, c.Event)
	}
	tr.SetDelta(sentinel, t.TrailingDelta)
	return tr
}

// NewSession creates an empty, named session.
func NewSession(name string) *Session {
	return &Session{Name: name, Tracks: make(map[string]*Track)}
}

// Put snapshots tr into the session under key.
func (s *Session) Put(key string, tr *track.Track) {
	s.Tracks[key] = Encode(tr)
}

// Get rebuilds the track.Track stored under key, if any.
func (s *Session) Get(key string) (*track.Track, bool) {
	t, ok := s.Tracks[key]
	if !ok {
		return nil, false
	}
	return Decode(t), true
}

// Save writes s to path as gzipped JSON, matching the teacher's
// data.json.gz on-disk format.
func Save(s *Session, path string) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("project: marshal session: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("project: create %s: %w", path, err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	defer gz.Close()

	if _, err := gz.Write(data); err != nil {
		return fmt.Errorf("project: write gzip: %w", err)
	}
	return nil
}

// Load reads a session previously written by Save.
func Load(path string) (*Session, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("project: open %s: %w", path, err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("project: gzip reader: %w", err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("project: read gzip: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("project: unmarshal session: %w", err)
	}
	if s.Tracks == nil {
		s.Tracks = make(map[string]*Track)
	}
	return &s, nil
}

// AutoSaver debounces repeated Save calls the way the teacher's
// storage.AutoSave debounces its own DoSave: a burst of edits within
// the debounce window collapses to a single write.
type AutoSaver struct {
	mu       sync.Mutex
	timer    *time.Timer
	debounce time.Duration
	path     string
}

// NewAutoSaver builds an AutoSaver that writes to path no more often
// than once per debounce.
func NewAutoSaver(path string, debounce time.Duration) *AutoSaver {
	return &AutoSaver{path: path, debounce: debounce}
}

// Trigger schedules a save of s, debounced: a Trigger call arriving
// before the previous one fires resets the timer instead of stacking
// writes.
func (a *AutoSaver) Trigger(s *Session) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.debounce, func() {
		start := time.Now()
		if err := Save(s, a.path); err != nil {
			log.Printf("[PROJECT] autosave failed: %v", err)
			return
		}
		log.Printf("[PROJECT] autosaved %s in %s", a.path, time.Since(start))
	})
}
