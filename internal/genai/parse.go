package genai

import (
	"encoding/json"
	"strings"
	"unicode"

	"melodicamate/internal/music"
)

const (
	shortMelodyThreshold = 8
	shortMelodyWarning   = " [Warning: Very short melody - verify accuracy]"
)

// stripCodeFences removes a surrounding ``` or ```json block.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		pieces := strings.Split(text, "```")
		if len(pieces) > 1 {
			text = pieces[1]
		}
		text = strings.TrimPrefix(text, "json")
	}
	return strings.TrimSpace(text)
}

type songPayload struct {
	Found         bool     `json:"found"`
	Confidence    string   `json:"confidence"`
	Key           string   `json:"key"`
	Mode          string   `json:"mode"`
	TimeSignature string   `json:"time_signature"`
	TempoBPM      *float64 `json:"tempo_bpm"`
	Lines         []string `json:"lines"`
	Notes         string   `json:"notes"`
}

// parseSongPayload decodes the model's JSON answer into a SongLookup.
func parseSongPayload(text string) (*SongLookup, error) {
	var p songPayload
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &p); err != nil {
		return nil, &ParseError{Detail: err.Error()}
	}

	confidence := p.Confidence
	if confidence == "" {
		confidence = "unknown"
	}
	lines := p.Lines
	if lines == nil {
		lines = []string{}
	}

	numbers := numbersFromLines(lines)
	notes := p.Notes
	if len(numbers) < shortMelodyThreshold {
		notes += shortMelodyWarning
	}

	return &SongLookup{
		Found:         p.Found,
		Confidence:    confidence,
		Key:           p.Key,
		Mode:          p.Mode,
		TimeSignature: p.TimeSignature,
		TempoBPM:      p.TempoBPM,
		Lines:         lines,
		Numbers:       numbers,
		Lyrics:        strings.Join(lines, "\n"),
		Notes:         notes,
		Source:        SourceGemini,
	}, nil
}

// numbersFromLines pulls degree tokens out of the number lines (odd
// indexes). Dots mark held notes and dashes rests; both are dropped.
func numbersFromLines(lines []string) []string {
	numbers := []string{}
	replacer := strings.NewReplacer(".", " ", "-", " ")
	for i, line := range lines {
		if i%2 == 0 {
			continue
		}
		for _, tok := range strings.Fields(replacer.Replace(line)) {
			first := rune(tok[0])
			if unicode.IsDigit(first) || first == 'b' || first == '#' {
				numbers = append(numbers, tok)
			}
		}
	}
	return numbers
}

type recordingPayload struct {
	Found      bool         `json:"found"`
	Key        string       `json:"key"`
	Mode       string       `json:"mode"`
	Numbers    music.Tokens `json:"numbers"`
	TempoBPM   *float64     `json:"tempo_bpm"`
	Confidence string       `json:"confidence"`
	Notes      string       `json:"notes"`
}

func parseRecordingPayload(text string) (*RecordingAnalysis, error) {
	var p recordingPayload
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &p); err != nil {
		return nil, &ParseError{Detail: err.Error()}
	}

	out := &RecordingAnalysis{
		Found:      p.Found && len(p.Numbers) > 0,
		Key:        p.Key,
		Mode:       p.Mode,
		Numbers:    []string(p.Numbers),
		TempoBPM:   p.TempoBPM,
		Confidence: p.Confidence,
		Notes:      p.Notes,
	}
	if out.Key == "" {
		out.Key = "C"
	}
	if out.Mode == "" {
		out.Mode = "major"
	}
	if out.Confidence == "" {
		out.Confidence = "unknown"
	}
	if out.Numbers == nil {
		out.Numbers = []string{}
	}
	return out, nil
}

// cleanCoachingText trims whitespace and any quotes the model wrapped the
// answer in.
func cleanCoachingText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, `"`)
	return strings.Trim(text, "'")
}
