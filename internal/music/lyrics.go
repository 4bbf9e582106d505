package music

import (
	"fmt"
	"strings"
)

// LyricNumber pairs a number token with the lyric word sung on it.
type LyricNumber struct {
	Lyric  string `json:"lyric"`
	Number string `json:"number"`
}

// AlignLyrics reads alternating lyric / number lines and pairs each number
// with the word at the same position, the line's last word when the line is
// short, or "" when it has no words. Dots in number lines mark held notes.
func AlignLyrics(lines []string) []LyricNumber {
	aligned := []LyricNumber{}
	for i := 0; i < len(lines); i += 2 {
		words := strings.Fields(lines[i])
		numberLine := ""
		if i+1 < len(lines) {
			numberLine = lines[i+1]
		}
		numbers := strings.Fields(strings.ReplaceAll(numberLine, ".", " "))

		for idx, num := range numbers {
			word := ""
			switch {
			case idx < len(words):
				word = words[idx]
			case len(words) > 0:
				word = words[len(words)-1]
			}
			aligned = append(aligned, LyricNumber{Lyric: word, Number: num})
		}
	}
	return aligned
}

// LyricAt returns the aligned word for a note index, or "".
func LyricAt(alignment []LyricNumber, idx int) string {
	if idx < 0 || idx >= len(alignment) {
		return ""
	}
	return alignment[idx].Lyric
}

// LyricContext collects the lyric words under the first three mistakes.
func LyricContext(wrong []WrongNote, alignment []LyricNumber) []string {
	ctx := []string{}
	for i, w := range wrong {
		if i >= maxIssues {
			break
		}
		if lyric := LyricAt(alignment, w.Index); lyric != "" {
			ctx = append(ctx, lyric)
		}
	}
	return ctx
}

// DescribeMistakes renders one sentence per wrong note, naming the lyric
// and the expected and sung notes in the given key.
func DescribeMistakes(wrong []WrongNote, expected, played []string, keyTonic, mode string, alignment []LyricNumber) []string {
	details := make([]string, 0, len(wrong))
	for _, w := range wrong {
		idx := w.Index

		expNum := w.Expected
		if idx < len(expected) {
			expNum = expected[idx]
		}
		gotNum := w.GotOr("")
		if idx < len(played) {
			gotNum = played[idx]
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Note %d", idx+1)
		if lyric := LyricAt(alignment, idx); lyric != "" {
			fmt.Fprintf(&b, " ('%s')", lyric)
		}
		if expNum != "" {
			fmt.Fprintf(&b, " expected %s (%s)", expNum, NumberToNoteName(expNum, keyTonic, mode))
		}
		if gotNum != "" {
			fmt.Fprintf(&b, " but sang %s (%s)", gotNum, NumberToNoteName(gotNum, keyTonic, mode))
		} else {
			b.WriteString(" but was missing")
		}
		details = append(details, b.String())
	}
	return details
}
