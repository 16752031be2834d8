package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/go-miditrack/miditrack/internal/clockdriver"
	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/go-miditrack/miditrack/internal/notename"
	"github.com/go-miditrack/miditrack/internal/smfcodec"
	"github.com/go-miditrack/miditrack/internal/state"
	"github.com/go-miditrack/miditrack/internal/track"
)

func newMonitorCmd(debug *bool, device *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor IN",
		Short: "play IN in real time, showing live notes in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := smfcodec.Read(args[0], event.Device(*device))
			if err != nil {
				return err
			}
			m := newMonitorModel(tr)
			p := tea.NewProgram(m)
			_, err = p.Run()
			return err
		},
	}
	return cmd
}

type tickMsg time.Time

// monitorModel is the bubbletea model behind `seqctl monitor`: it steps
// a clockdriver.Driver forward on a wall-clock timer derived from the
// track's own tempo, and renders currently-sounding notes as colored
// bars, the way the teacher's internal/views level meters render with
// go-colorful + termenv.
type monitorModel struct {
	driver   *clockdriver.Driver
	live     map[byte]byte // note -> velocity, currently sounding
	done     bool
	profile  termenv.Profile
	total    uint32
	progress progress.Model
}

func newMonitorModel(tr *track.Track) *monitorModel {
	m := &monitorModel{
		live:     make(map[byte]byte),
		profile:  termenv.ColorProfile(),
		total:    tr.Length(),
		progress: progress.New(progress.WithDefaultGradient()),
	}
	m.progress.Width = 40
	m.driver = clockdriver.New(tr, clockdriver.SinkFunc(m.onEvent), false)
	return m
}

func (m *monitorModel) onEvent(st *state.State) {
	switch st.Ev.Kind {
	case event.NoteOn:
		m.live[st.Ev.A] = st.Ev.B
	case event.NoteOff:
		delete(m.live, st.Ev.A)
	}
}

func (m *monitorModel) Init() tea.Cmd {
	return m.scheduleTick()
}

func (m *monitorModel) scheduleTick() tea.Cmd {
	d := clockdriver.TicDuration(m.driver.CurrentInfo().Usec24)
	if d <= 0 {
		d = time.Millisecond
	}
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tickMsg:
		if m.driver.Eot() {
			m.done = true
			return m, tea.Quit
		}
		m.driver.Advance()
		var percentCmd tea.Cmd
		if m.total > 0 {
			percentCmd = m.progress.SetPercent(float64(m.driver.Tic()) / float64(m.total))
		}
		return m, tea.Batch(m.scheduleTick(), percentCmd)
	case progress.FrameMsg:
		updated, cmd := m.progress.Update(msg)
		m.progress = updated.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// velocityColor maps a note velocity (0-127) to a hue-shifted color,
// warmer for louder notes at constant brightness, the same HSV-walk the teacher's
// mixer meter uses for level bars.
func velocityColor(velocity byte) colorful.Color {
	hue := 240.0 - float64(velocity)/127.0*240.0 // blue (quiet) -> red (loud)
	return colorful.Hsv(hue, 0.8, 0.9)
}

func (m *monitorModel) View() string {
	if m.done {
		return "playback finished\n"
	}

	info := m.driver.CurrentInfo()
	header := lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("tic %d  bpm %d/%d  (q to quit)", info.Tic, info.BPM, info.TPB))

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	if m.total > 0 {
		b.WriteString(m.progress.View())
		b.WriteString("\n")
	}

	if len(m.live) == 0 {
		b.WriteString("  (silence)\n")
		return b.String()
	}

	for note, velocity := range m.live {
		color := velocityColor(velocity)
		bar := strings.Repeat("█", 1+int(velocity)/16)
		styled := termenv.String(bar).Foreground(m.profile.Color(color.Hex())).String()
		fmt.Fprintf(&b, "  %-4s %s\n", notename.FromMIDI(note), styled)
	}
	return b.String()
}
