package music

import (
	"fmt"
	"math"
	"strings"
)

// Exercise is a built-in practice sequence.
type Exercise struct {
	ID      string
	Name    string
	Numbers []string
	Mode    string
	Tonic   string
}

var exercises = map[string]Exercise{
	"c_major_scale_up": {
		ID:      "c_major_scale_up",
		Name:    "C Major Scale (up)",
		Numbers: []string{"1", "2", "3", "4", "5", "6", "7", "1"},
		Mode:    "major",
		Tonic:   "C",
	},
	"c_major_scale_updown": {
		ID:      "c_major_scale_updown",
		Name:    "C Major Scale (up/down)",
		Numbers: []string{"1", "2", "3", "4", "5", "6", "7", "1", "7", "6", "5", "4", "3", "2", "1"},
		Mode:    "major",
		Tonic:   "C",
	},
	"arpeggio_1358_c": {
		ID:      "arpeggio_1358_c",
		Name:    "Arpeggio 1-3-5-8 in C",
		Numbers: []string{"1", "3", "5", "1"},
		Mode:    "major",
		Tonic:   "C",
	},
	"ode_to_joy_simple": {
		ID:      "ode_to_joy_simple",
		Name:    "Ode to Joy (preset)",
		Numbers: []string{"3", "3", "4", "5", "5", "4", "3", "2", "1", "1", "2", "3", "3", "2", "2"},
		Mode:    "major",
		Tonic:   "C",
	},
}

// ExerciseNumbers returns a copy of the built-in exercise sequence.
// Sequences are already scale degrees, so key and mode do not change them.
func ExerciseNumbers(id string) ([]string, bool) {
	ex, ok := exercises[id]
	if !ok {
		return nil, false
	}
	return append([]string(nil), ex.Numbers...), true
}

// WrongNote is one position where the played sequence differs.
type WrongNote struct {
	Expected string  `json:"expected"`
	Got      *string `json:"got"`
	Index    int     `json:"index"`
}

// GotOr returns the played token or fallback when nothing was played.
func (w WrongNote) GotOr(fallback string) string {
	if w.Got == nil || *w.Got == "" {
		return fallback
	}
	return *w.Got
}

// MistakeSummary is the client facing digest of the first few mistakes.
type MistakeSummary struct {
	Issues  []WrongNote `json:"issues"`
	Summary string      `json:"summary"`
}

const (
	cleanRunSummary = "Great job—no mistakes detected."
	maxIssues       = 3
)

// CompareSequences scores played against expected position by position over
// the expected length. Accuracy is a percentage rounded to two decimals.
func CompareSequences(expected, played []string) (float64, []WrongNote) {
	if len(expected) == 0 {
		return 0, []WrongNote{}
	}

	wrong := []WrongNote{}
	matches := 0
	for idx, exp := range expected {
		var got *string
		if idx < len(played) {
			g := played[idx]
			got = &g
		}
		if got != nil && *got == exp {
			matches++
			continue
		}
		wrong = append(wrong, WrongNote{Expected: exp, Got: got, Index: idx})
	}

	accuracy := float64(matches) / float64(len(expected)) * 100
	return math.Round(accuracy*100) / 100, wrong
}

// BuildMistakeSummary lists the first three mistakes with 1-based positions.
func BuildMistakeSummary(wrong []WrongNote) MistakeSummary {
	if len(wrong) == 0 {
		return MistakeSummary{Issues: []WrongNote{}, Summary: cleanRunSummary}
	}

	top := wrong
	if len(top) > maxIssues {
		top = top[:maxIssues]
	}

	parts := make([]string, len(top))
	for i, w := range top {
		parts[i] = fmt.Sprintf("at %d: expected %s got %s", w.Index+1, w.Expected, w.GotOr("none"))
	}
	return MistakeSummary{Issues: top, Summary: strings.Join(parts, "; ")}
}
