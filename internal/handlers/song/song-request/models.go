// internal/handlers/song/song-request/models.go
package songrequest

type Input struct {
	Query            string `json:"query"`
	DesiredKey       string `json:"desired_key"`
	Mode             string `json:"mode"`
	ComposerOrArtist string `json:"composer_or_artist"`
}

// Output holds exactly one of Song or Miss.
type Output struct {
	Song *SongOutput
	Miss *MissOutput
}

type SongOutput struct {
	Found          bool     `json:"found"`
	Refused        bool     `json:"refused"`
	SongID         string   `json:"song_id"`
	CanonicalTitle string   `json:"canonical_title"`
	Title          string   `json:"title"`
	Key            string   `json:"key"`
	Mode           string   `json:"mode"`
	Numbers        []string `json:"numbers"`
	Measures       []string `json:"measures"`
	Lines          []string `json:"lines"`
	TempoBPM       *float64 `json:"tempo_bpm"`
	NoteNames      []string `json:"note_names"`
	Lyrics         string   `json:"lyrics"`
	Source         string   `json:"source"`
	Confidence     string   `json:"confidence"`
	Notes          string   `json:"notes"`
}

// MissOutput is returned when no melody was found. Error is set only when
// the lookup itself failed.
type MissOutput struct {
	Found          bool   `json:"found"`
	Refused        bool   `json:"refused"`
	Error          string `json:"error,omitempty"`
	Message        string `json:"message"`
	CanonicalTitle string `json:"canonical_title"`
	Notes          string `json:"notes"`
}

type HelpOutput struct {
	Message string `json:"message"`
}
