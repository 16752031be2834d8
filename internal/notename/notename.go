// Package notename converts between MIDI note numbers and human-readable
// note names; cmd/seqctl's monitor view uses FromMIDI to label notes.
package notename

import (
	"fmt"
	"strconv"
	"strings"
)

var names = []string{"c", "c#", "d", "d#", "e", "f", "f#", "g", "g#", "a", "a#", "b"}

// FromMIDI converts a MIDI note number (0-127) to a name like "c-1",
// "c#4", "a-0". For negative octaves, natural notes keep the minus
// ("c-1") while sharp notes drop it ("f#1") — both stay 3 characters.
// MIDI note 60 is C4.
func FromMIDI(note byte) string {
	if int(note) > 127 {
		return "---"
	}
	octave := int(note)/12 - 1
	name := names[int(note)%12]

	if strings.Contains(name, "#") {
		if octave < 0 {
			return fmt.Sprintf("%s%d", name, -octave)
		}
		return fmt.Sprintf("%s%d", name, octave)
	}
	if octave < 0 {
		return fmt.Sprintf("%s-%d", name, -octave)
	}
	return fmt.Sprintf("%s-%d", name, octave)
}

// ToMIDI parses a name produced by FromMIDI (or a looser human spelling
// like "C#4", "Db4") back into a MIDI note number. ok is false if name
// does not parse to a valid 0-127 note.
//
// The dash FromMIDI inserts before a natural note's octave digit is
// purely a fixed-width separator, not a sign — FromMIDI itself cannot
// tell octave -1 from octave 1 in its output (both render "c-1"), so
// ToMIDI resolves the ambiguity by always taking the octave digits as
// non-negative. Octave -1 (MIDI 0-11) therefore does not round-trip.
func ToMIDI(name string) (note byte, ok bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "---" {
		return 0, false
	}

	letterEnd := 1
	if letterEnd < len(name) && (name[letterEnd] == '#' || name[letterEnd] == 'b') {
		letterEnd++
	}
	letters := name[:letterEnd]
	rest := strings.TrimPrefix(name[letterEnd:], "-")

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}

	pc, ok := pitchClass(letters)
	if !ok {
		return 0, false
	}

	midi := (octave+1)*12 + pc
	if midi < 0 || midi > 127 {
		return 0, false
	}
	return byte(midi), true
}

func pitchClass(letters string) (int, bool) {
	base := map[byte]int{'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11}
	pc, ok := base[letters[0]]
	if !ok {
		return 0, false
	}
	if len(letters) == 2 {
		switch letters[1] {
		case '#':
			pc++
		case 'b':
			pc--
		default:
			return 0, false
		}
	}
	return (pc + 12) % 12, true
}
