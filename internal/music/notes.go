// Package music maps played pitches onto scale-degree tokens and scores
// them against target melodies.
package music

import (
	"fmt"
	"strconv"
	"strings"
)

// PitchClasses in sharp spelling, indexed by semitone above C.
var PitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var flatAliases = map[string]string{"DB": "C#", "EB": "D#", "GB": "F#", "AB": "G#", "BB": "A#"}

var (
	majorIntervals = []int{0, 2, 4, 5, 7, 9, 11}
	minorIntervals = []int{0, 2, 3, 5, 7, 8, 10}
)

// AccidentalSharps is the default accidental preference.
const AccidentalSharps = "sharps"

// Note is one detected pitch event. Only MIDI matters for mapping.
type Note struct {
	MIDI *float64 `json:"midi,omitempty"`
	T0Ms *float64 `json:"t0_ms,omitempty"`
	T1Ms *float64 `json:"t1_ms,omitempty"`
	Conf *float64 `json:"conf,omitempty"`
}

// Pitch returns the MIDI number truncated to an int, if present.
func (n Note) Pitch() (int, bool) {
	if n.MIDI == nil {
		return 0, false
	}
	return int(*n.MIDI), true
}

// PitchClassIndex parses a tonic name. Flats are accepted for the five
// black keys. Unknown names report false.
func PitchClassIndex(name string) (int, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if alias, ok := flatAliases[name]; ok {
		name = alias
	}
	for i, pc := range PitchClasses {
		if pc == name {
			return i, true
		}
	}
	return 0, false
}

// ScaleIntervals returns the minor intervals for "minor" (any case) and the
// major intervals for everything else.
func ScaleIntervals(mode string) []int {
	if strings.EqualFold(strings.TrimSpace(mode), "minor") {
		return minorIntervals
	}
	return majorIntervals
}

// MIDINoteName renders a MIDI number as pitch class plus octave (60 -> C4).
func MIDINoteName(midi int) string {
	octave := floorDiv(midi, 12) - 1
	return fmt.Sprintf("%s%d", PitchClasses[mod(midi, 12)], octave)
}

// NoteName is MIDINoteName for an optional note; absent pitches give "".
func NoteName(n Note) string {
	midi, ok := n.Pitch()
	if !ok {
		return ""
	}
	return MIDINoteName(midi)
}

// DegreeToken maps a MIDI pitch to a scale-degree token ("1".."7", or a
// degree with a "#"/"b" prefix for chromatic notes) in the given key.
func DegreeToken(midi int, keyTonic, mode, accidentalPref string) string {
	tonic, _ := PitchClassIndex(keyTonic)
	pitchClass := mod(midi, 12)

	scale := ScaleIntervals(mode)
	degrees := make([]int, len(scale))
	for i, interval := range scale {
		degrees[i] = (tonic + interval) % 12
		if degrees[i] == pitchClass {
			return strconv.Itoa(i + 1)
		}
	}

	closest := 0
	best := 13
	for i, d := range degrees {
		dist := min(mod(pitchClass-d, 12), mod(d-pitchClass, 12))
		if dist < best {
			best = dist
			closest = i
		}
	}

	var prefix string
	switch mod(pitchClass-degrees[closest], 12) {
	case 1:
		prefix = "#"
	case 11:
		prefix = "b"
	default:
		if accidentalPref == AccidentalSharps {
			prefix = "#"
		} else {
			prefix = "b"
		}
	}
	return prefix + strconv.Itoa(closest+1)
}

// MapNotesToNumbers converts every note that has a pitch; notes without
// one are skipped.
func MapNotesToNumbers(notes []Note, keyTonic, mode, accidentalPref string) []string {
	numbers := make([]string, 0, len(notes))
	for _, n := range notes {
		midi, ok := n.Pitch()
		if !ok {
			continue
		}
		numbers = append(numbers, DegreeToken(midi, keyTonic, mode, accidentalPref))
	}
	return numbers
}

// NumberToNoteName renders a degree token as a note name in octave 4.
// Non-numeric degrees count as 1 and degrees outside 1..7 wrap.
func NumberToNoteName(token, keyTonic, mode string) string {
	tonic, _ := PitchClassIndex(keyTonic)
	scale := ScaleIntervals(mode)

	accidental := 0
	switch {
	case strings.HasPrefix(token, "#"):
		accidental = 1
		token = token[1:]
	case strings.HasPrefix(token, "b"):
		accidental = -1
		token = token[1:]
	}

	degree, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil {
		degree = 1
	}

	pc := mod(tonic+scale[mod(degree-1, len(scale))]+accidental, 12)
	return PitchClasses[pc] + "4"
}

// NoteNames maps each token with NumberToNoteName.
func NoteNames(tokens []string, keyTonic, mode string) []string {
	names := make([]string, len(tokens))
	for i, t := range tokens {
		names[i] = NumberToNoteName(t, keyTonic, mode)
	}
	return names
}

func mod(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
