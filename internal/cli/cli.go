// Package cli builds the cmd/seqctl command tree: a small
// github.com/spf13/cobra interpreter, exercising pflag for its numeric
// and boolean flags, that reads a track from an SMF file, calls
// straight into internal/editor, and writes the result back out — the
// "interpreter" collaborator spec.md §6 describes, now concretely
// wired instead of merely declared.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-miditrack/miditrack/internal/editor"
	"github.com/go-miditrack/miditrack/internal/event"
	"github.com/go-miditrack/miditrack/internal/smfcodec"
	"github.com/go-miditrack/miditrack/internal/transport"
)

// NewRootCmd builds the seqctl command tree.
func NewRootCmd() *cobra.Command {
	var debug bool
	var device int

	root := &cobra.Command{
		Use:   "seqctl",
		Short: "seqctl edits and plays back MIDI event tracks",
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "panic on programming-invariant violations instead of logging them")
	root.PersistentFlags().IntVar(&device, "device", 0, "event.Device tag recorded on decoded wire events")

	root.AddCommand(
		newCheckCmd(&debug, &device),
		newMergeCmd(&debug, &device),
		newQuantizeCmd(&debug, &device),
		newTransposeCmd(&debug, &device),
		newMoveCmd(&debug, &device),
		newBlankCmd(&debug, &device),
		newConfEvCmd(&debug, &device),
		newTempoCmd(&debug, &device),
		newTimeCmd(&debug, &device),
		newMeasureCmd(&debug, &device),
		newDevicesCmd(),
		newMonitorCmd(&debug, &device),
	)
	return root
}

func newCheckCmd(debug *bool, device *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check IN OUT",
		Short: "drop bogus/nested events and close unterminated frames",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := smfcodec.Read(args[0], event.Device(*device))
			if err != nil {
				return err
			}
			editor.Check(tr, *debug)
			return smfcodec.Write(tr, args[1])
		},
	}
	return cmd
}

func newMergeCmd(debug *bool, device *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge DST SRC OUT",
		Short: "overlay SRC onto DST, SRC taking priority, written to OUT",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			dst, err := smfcodec.Read(args[0], event.Device(*device))
			if err != nil {
				return err
			}
			src, err := smfcodec.Read(args[1], event.Device(*device))
			if err != nil {
				return err
			}
			editor.Merge(dst, src, *debug)
			return smfcodec.Write(dst, args[2])
		},
	}
	return cmd
}

// selectorFromFlags builds a Selector from the shared --notes-only /
// --controller flag pair used by quantize, transpose, move, and blank.
func selectorFromFlags(notesOnly bool, controller int) editor.Selector {
	switch {
	case notesOnly:
		return editor.NotesOnly
	case controller >= 0:
		return editor.ControllerNum(byte(controller))
	default:
		return editor.All
	}
}

func addSelectorFlags(cmd *cobra.Command, notesOnly *bool, controller *int) {
	cmd.Flags().BoolVar(notesOnly, "notes-only", false, "restrict to note frames")
	cmd.Flags().IntVar(controller, "controller", -1, "restrict to this controller number")
}

func newQuantizeCmd(debug *bool, device *int) *cobra.Command {
	var start, length, offset, quant, rate uint32
	cmd := &cobra.Command{
		Use:   "quantize IN OUT",
		Short: "partially snap note-starts in [start, start+length) onto a grid",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := smfcodec.Read(args[0], event.Device(*device))
			if err != nil {
				return err
			}
			editor.Quantize(tr, start, length, offset, quant, rate, *debug)
			return smfcodec.Write(tr, args[1])
		},
	}
	cmd.Flags().Uint32Var(&start, "start", 0, "region start tic")
	cmd.Flags().Uint32Var(&length, "length", 0, "region length in tics")
	cmd.Flags().Uint32Var(&offset, "offset", 0, "grid phase offset in tics")
	cmd.Flags().Uint32Var(&quant, "quant", 24, "quantize grid size, in tics")
	cmd.Flags().Uint32Var(&rate, "rate", 100, "snap strength 0-100; 0 leaves positions unchanged")
	return cmd
}

func newTransposeCmd(debug *bool, device *int) *cobra.Command {
	var start, length uint32
	var semitones int
	cmd := &cobra.Command{
		Use:   "transpose IN OUT",
		Short: "shift every note's pitch by a number of semitones, wrapping mod 128",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := smfcodec.Read(args[0], event.Device(*device))
			if err != nil {
				return err
			}
			if length == 0 {
				length = ^uint32(0) - start
			}
			editor.Transpose(tr, start, length, semitones, *debug)
			return smfcodec.Write(tr, args[1])
		},
	}
	cmd.Flags().Uint32Var(&start, "start", 0, "region start tic")
	cmd.Flags().Uint32Var(&length, "length", 0, "region length in tics; 0 means through the end of the track")
	cmd.Flags().IntVar(&semitones, "semitones", 0, "semitones to shift, may be negative")
	return cmd
}

func newMoveCmd(debug *bool, device *int) *cobra.Command {
	var start, length, dstTic uint32
	var dstPath string
	var notesOnly bool
	var controller int
	cmd := &cobra.Command{
		Use:   "move IN OUT",
		Short: "cut the selector-matching frames from [start, start+length) and splice them back in at --dst",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := selectorFromFlags(notesOnly, controller)
			tr, err := smfcodec.Read(args[0], event.Device(*device))
			if err != nil {
				return err
			}
			if dstPath != "" {
				target, err := smfcodec.Read(dstPath, event.Device(*device))
				if err != nil {
					return err
				}
				editor.Copy(tr, start, length, sel, target, dstTic, *debug)
				return smfcodec.Write(target, args[1])
			}
			editor.Move(tr, start, length, sel, dstTic, *debug)
			return smfcodec.Write(tr, args[1])
		},
	}
	cmd.Flags().Uint32Var(&start, "start", 0, "excerpt start tic")
	cmd.Flags().Uint32Var(&length, "length", 0, "excerpt length in tics")
	cmd.Flags().Uint32Var(&dstTic, "dst", 0, "destination tic")
	cmd.Flags().StringVar(&dstPath, "dst-file", "", "copy into this track instead of moving within IN")
	addSelectorFlags(cmd, &notesOnly, &controller)
	return cmd
}

func newBlankCmd(debug *bool, device *int) *cobra.Command {
	var start, length uint32
	var notesOnly bool
	var controller int
	cmd := &cobra.Command{
		Use:   "blank IN OUT",
		Short: "silence the selector-matching frames in [start, start+length) without shortening the track",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := selectorFromFlags(notesOnly, controller)
			tr, err := smfcodec.Read(args[0], event.Device(*device))
			if err != nil {
				return err
			}
			editor.Blank(tr, start, length, sel, *debug)
			return smfcodec.Write(tr, args[1])
		},
	}
	cmd.Flags().Uint32Var(&start, "start", 0, "gap start tic")
	cmd.Flags().Uint32Var(&length, "length", 0, "gap length in tics")
	addSelectorFlags(cmd, &notesOnly, &controller)
	return cmd
}

func newConfEvCmd(debug *bool, device *int) *cobra.Command {
	var kind string
	var channel, a, b uint8
	cmd := &cobra.Command{
		Use:   "confev IN OUT",
		Short: "upsert one persistent config frame (program/controller default) on a config track",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := confEventFromFlags(kind, channel, a, b)
			if err != nil {
				return err
			}
			tr, err := smfcodec.Read(args[0], event.Device(*device))
			if err != nil {
				return err
			}
			editor.ConfEv(tr, ev, *debug)
			return smfcodec.Write(tr, args[1])
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "program", "frame kind: program, controller, pitchbend, chanaftertouch")
	cmd.Flags().Uint8Var(&channel, "channel", 0, "MIDI channel")
	cmd.Flags().Uint8Var(&a, "a", 0, "program number / controller number / bend LSB")
	cmd.Flags().Uint8Var(&b, "b", 0, "controller value / bend MSB")
	return cmd
}

func confEventFromFlags(kind string, channel, a, b uint8) (event.Event, error) {
	ev := event.Event{Channel: channel, A: a, B: b}
	switch kind {
	case "program":
		ev.Kind = event.Program
	case "controller":
		ev.Kind = event.Controller
	case "pitchbend":
		ev.Kind = event.PitchBend
	case "chanaftertouch":
		ev.Kind = event.ChannelAfterTouch
	default:
		return event.Event{}, fmt.Errorf("confev: unknown --kind %q", kind)
	}
	return ev, nil
}

func newTempoCmd(debug *bool, device *int) *cobra.Command {
	tempo := &cobra.Command{
		Use:   "tempo",
		Short: "inspect or edit tempo events",
	}

	var tic uint32
	info := &cobra.Command{
		Use:   "info IN",
		Short: "print the tempo/time-signature in effect at --tic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := smfcodec.Read(args[0], event.Device(*device))
			if err != nil {
				return err
			}
			ti := editor.TimeInfoAt(tr, tic, *debug)
			fmt.Fprintf(cmd.OutOrStdout(), "tic=%d bpm=%d tpb=%d usec24=%d\n", ti.Tic, ti.BPM, ti.TPB, ti.Usec24)
			return nil
		},
	}
	info.Flags().Uint32Var(&tic, "tic", 0, "tic to query")

	var setTic, usec24 uint32
	set := &cobra.Command{
		Use:   "set IN OUT",
		Short: "insert or replace the tempo event at --tic",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := smfcodec.Read(args[0], event.Device(*device))
			if err != nil {
				return err
			}
			editor.SetTempo(tr, setTic, usec24, *debug)
			return smfcodec.Write(tr, args[1])
		},
	}
	set.Flags().Uint32Var(&setTic, "tic", 0, "tic to set the tempo at")
	set.Flags().Uint32Var(&usec24, "usec24", editor.DefaultUsec24, "microseconds per 24 tics")

	tempo.AddCommand(info, set)
	return tempo
}

func newTimeCmd(debug *bool, device *int) *cobra.Command {
	timesig := &cobra.Command{
		Use:   "timesig",
		Short: "insert whole measures or remove a span of tics",
	}

	var insMeasure, insAmount uint32
	var insBPM, insTPB uint8
	ins := &cobra.Command{
		Use:   "ins IN OUT",
		Short: "insert --amount measures of a new time signature at --measure",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := smfcodec.Read(args[0], event.Device(*device))
			if err != nil {
				return err
			}
			editor.TimeIns(tr, insMeasure, insAmount, insBPM, insTPB, *debug)
			return smfcodec.Write(tr, args[1])
		},
	}
	ins.Flags().Uint32Var(&insMeasure, "measure", 0, "measure to insert at")
	ins.Flags().Uint32Var(&insAmount, "amount", 1, "number of measures to insert")
	ins.Flags().Uint8Var(&insBPM, "bpm", editor.DefaultBPM, "beats per measure for the inserted signature")
	ins.Flags().Uint8Var(&insTPB, "tpb", editor.DefaultTPB, "tics per beat for the inserted signature")

	var rmTic, rmAmount uint32
	rm := &cobra.Command{
		Use:   "rm IN OUT",
		Short: "remove --amount tics starting at --tic",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := smfcodec.Read(args[0], event.Device(*device))
			if err != nil {
				return err
			}
			editor.TimeRm(tr, rmTic, rmAmount, *debug)
			return smfcodec.Write(tr, args[1])
		},
	}
	rm.Flags().Uint32Var(&rmTic, "tic", 0, "tic to remove from")
	rm.Flags().Uint32Var(&rmAmount, "amount", 0, "tics to remove")

	timesig.AddCommand(ins, rm)
	return timesig
}

func newMeasureCmd(debug *bool, device *int) *cobra.Command {
	var n uint32
	cmd := &cobra.Command{
		Use:   "measure IN",
		Short: "print the tic offset of measure --n",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := smfcodec.Read(args[0], event.Device(*device))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), editor.FindMeasure(tr, n, *debug))
			return nil
		},
	}
	cmd.Flags().Uint32Var(&n, "n", 0, "measure number (0-based)")
	return cmd
}

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "list visible MIDI output ports",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range transport.Devices() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
