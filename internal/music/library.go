package music

import "strings"

// Song is a public-domain melody encoded as scale degrees.
type Song struct {
	Title    string   `json:"title"`
	Composer string   `json:"composer"`
	Numbers  []string `json:"numbers"`
	Lyrics   string   `json:"lyrics"`
}

// MatchCutoff is the minimum similarity for a library title to match.
const MatchCutoff = 0.45

var library = []Song{
	{
		Title:    "Twinkle Twinkle Little Star",
		Composer: "Traditional",
		Numbers:  []string{"1", "1", "5", "5", "6", "6", "5", "4", "4", "3", "3", "2", "2", "1"},
		Lyrics:   "Twinkle, twinkle, little star, how I wonder what you are",
	},
	{
		Title:    "Ode to Joy",
		Composer: "Beethoven",
		Numbers:  []string{"3", "3", "4", "5", "5", "4", "3", "2", "1", "1", "2", "3", "3", "2", "2"},
		Lyrics:   "Joyful joyful we adore thee",
	},
	{
		Title:    "Mary Had a Little Lamb",
		Composer: "Traditional",
		Numbers:  []string{"3", "2", "1", "2", "3", "3", "3", "2", "2", "2", "3", "5", "5"},
		Lyrics:   "Mary had a little lamb, little lamb, little lamb",
	},
	{
		Title:    "C Major Scale",
		Composer: "Exercise",
		Numbers:  []string{"1", "2", "3", "4", "5", "6", "7", "1"},
		Lyrics:   "",
	},
	{
		Title:    "Jingle Bells",
		Composer: "James Pierpont",
		Numbers:  []string{"3", "3", "3", "3", "3", "3", "3", "5", "1", "2", "3", "4", "4", "4", "4", "4", "3", "3", "3", "3", "2", "2", "3", "2", "5"},
		Lyrics:   "Jingle bells, jingle bells, jingle all the way",
	},
	{
		Title:    "Amazing Grace",
		Composer: "Traditional",
		Numbers:  []string{"1", "3", "1", "4", "1", "5", "5", "6", "5", "4", "3", "1", "3", "1"},
		Lyrics:   "Amazing grace how sweet the sound",
	},
	{
		Title:    "Greensleeves",
		Composer: "Traditional",
		Numbers:  []string{"5", "6", "5", "4", "3", "4", "5", "2", "3", "4", "1", "2", "3"},
		Lyrics:   "Alas, my love, you do me wrong",
	},
	{
		Title:    "Auld Lang Syne",
		Composer: "Traditional",
		Numbers:  []string{"5", "5", "6", "5", "4", "2", "5", "5", "6", "5", "1", "7"},
		Lyrics:   "Should auld acquaintance be forgot",
	},
	{
		Title:    "London Bridge",
		Composer: "Traditional",
		Numbers:  []string{"5", "6", "5", "4", "3", "4", "5", "1", "3", "5", "4", "3", "4", "5", "1"},
		Lyrics:   "London Bridge is falling down",
	},
	{
		Title:    "Yankee Doodle",
		Composer: "Traditional",
		Numbers:  []string{"1", "1", "2", "3", "1", "3", "2", "1", "1", "1", "2", "3", "1", "7", "1"},
		Lyrics:   "Yankee Doodle went to town",
	},
	{
		Title:    "When the Saints Go Marching In",
		Composer: "Traditional",
		Numbers:  []string{"1", "3", "4", "5", "1", "3", "4", "5", "5", "6", "5", "4", "3", "1", "2", "3", "4", "2", "1"},
		Lyrics:   "Oh when the saints go marching in",
	},
	{
		Title:    "Camptown Races",
		Composer: "Stephen Foster",
		Numbers:  []string{"1", "2", "3", "1", "1", "2", "3", "1", "3", "4", "3", "2", "1"},
		Lyrics:   "Camptown ladies sing this song, doo-dah, doo-dah",
	},
}

// Library returns a copy of the built-in song list.
func Library() []Song {
	out := make([]Song, len(library))
	for i, s := range library {
		out[i] = s.clone()
	}
	return out
}

// FindSong returns the library song whose title is most similar to query,
// compared case-insensitively, if the similarity reaches MatchCutoff.
func FindSong(query string) (Song, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Song{}, false
	}

	bestIdx := -1
	bestScore := 0.0
	for i, s := range library {
		score := Ratio(strings.ToLower(s.Title), q)
		if score >= MatchCutoff && score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	if bestIdx < 0 {
		return Song{}, false
	}
	return library[bestIdx].clone(), true
}

// SongID derives an identifier from a title: lower case, spaces to
// underscores, apostrophes dropped ("Don't Stop" -> "dont_stop").
func SongID(title string) string {
	id := strings.ReplaceAll(strings.ToLower(title), " ", "_")
	return strings.ReplaceAll(id, "'", "")
}

func (s Song) clone() Song {
	s.Numbers = append([]string(nil), s.Numbers...)
	return s
}
