// internal/handlers/song/analyze-recording/models.go
package analyzerecording

type Input struct {
	Audio     []byte
	MimeType  string
	SongTitle string
}

// Output holds exactly one of Melody or Miss.
type Output struct {
	Melody *MelodyOutput
	Miss   *MissOutput
}

type MelodyOutput struct {
	Found          bool     `json:"found"`
	SongID         string   `json:"song_id"`
	CanonicalTitle string   `json:"canonical_title"`
	Title          string   `json:"title"`
	Key            string   `json:"key"`
	Mode           string   `json:"mode"`
	Numbers        []string `json:"numbers"`
	NoteNames      []string `json:"note_names"`
	TempoBPM       float64  `json:"tempo_bpm"`
	Confidence     string   `json:"confidence"`
	Notes          string   `json:"notes"`
	Source         string   `json:"source"`
	Message        string   `json:"message"`
}

type MissOutput struct {
	Found   bool   `json:"found"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Notes   string `json:"notes"`
}
