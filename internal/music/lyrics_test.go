package music

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignLyrics(t *testing.T) {
	aligned := AlignLyrics([]string{
		"Twin-kle twin-kle little star",
		"1 1 5 5 6...",
		"how I",
		"5 4 4",
	})

	require.Len(t, aligned, 8)
	assert.Equal(t, LyricNumber{Lyric: "Twin-kle", Number: "1"}, aligned[0])
	assert.Equal(t, LyricNumber{Lyric: "star", Number: "5"}, aligned[3])
	assert.Equal(t, LyricNumber{Lyric: "star", Number: "6"}, aligned[4])
	assert.Equal(t, LyricNumber{Lyric: "I", Number: "4"}, aligned[7])
}

func TestAlignLyrics_Edges(t *testing.T) {
	assert.Empty(t, AlignLyrics(nil))
	assert.Empty(t, AlignLyrics([]string{"lyrics without numbers"}))

	aligned := AlignLyrics([]string{"", "1 2"})
	require.Len(t, aligned, 2)
	assert.Equal(t, "", aligned[0].Lyric)
}

func TestDescribeMistakes(t *testing.T) {
	alignment := AlignLyrics([]string{"do re mi", "1 2 3"})

	expected := []string{"1", "2", "3"}
	played := []string{"1", "2", "4"}
	_, wrong := CompareSequences(expected, played)
	details := DescribeMistakes(wrong, expected, played, "C", "major", alignment)
	assert.Equal(t, []string{"Note 3 ('mi') expected 3 (E4) but sang 4 (F4)"}, details)

	expected = []string{"1", "2"}
	played = []string{"1"}
	_, wrong = CompareSequences(expected, played)
	details = DescribeMistakes(wrong, expected, played, "C", "major", alignment)
	assert.Equal(t, []string{"Note 2 ('re') expected 2 (D4) but was missing"}, details)

	details = DescribeMistakes(wrong, expected, played, "C", "major", nil)
	assert.Equal(t, []string{"Note 2 expected 2 (D4) but was missing"}, details)
}

func TestLyricContext(t *testing.T) {
	alignment := AlignLyrics([]string{"a b c d e", "1 2 3 4 5"})
	_, wrong := CompareSequences([]string{"1", "2", "3", "4", "5"}, []string{"7", "7", "3", "7", "7"})

	assert.Equal(t, []string{"a", "b", "d"}, LyricContext(wrong, alignment))
	assert.Empty(t, LyricContext(wrong, nil))
}
