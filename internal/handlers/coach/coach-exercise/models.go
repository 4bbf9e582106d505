// internal/handlers/coach/coach-exercise/models.go
package coachexercise

import (
	"bytes"
	"encoding/json"

	"melodicamate/internal/music"
)

type Input struct {
	ExerciseID      string       `json:"exercise_id"`
	Notes           []music.Note `json:"notes"`
	KeyTonic        string       `json:"key_tonic"`
	Mode            string       `json:"mode"`
	CanonicalTitle  string       `json:"canonical_title"`
	Title           string       `json:"title"`
	SongTitle       string       `json:"song_title"`
	ExpectedNumbers music.Tokens `json:"expected_numbers"`
	LyricsLines     []string     `json:"lyrics_lines"`
	VoiceEnabled    VoiceFlag    `json:"voice_enabled"`
	VoiceID         string       `json:"voice_id"`
}

type Output struct {
	Refused         bool                 `json:"refused"`
	CoachingText    string               `json:"coaching_text"`
	SongTitle       string               `json:"song_title"`
	ExpectedNumbers []string             `json:"expected_numbers"`
	PlayedNumbers   []string             `json:"played_numbers"`
	MistakesSummary music.MistakeSummary `json:"mistakes_summary"`
	MistakeDetails  []string             `json:"mistake_details"`
	Accuracy        float64              `json:"accuracy"`
	TTSAudioBase64  *string              `json:"tts_audio_base64"`
}

type HelpOutput struct {
	Message string `json:"message"`
}

// VoiceFlag keeps an absent voice_enabled apart from an explicit null.
// Only an absent field turns coaching audio on by default.
type VoiceFlag struct {
	Present bool
	On      bool
}

func (f *VoiceFlag) UnmarshalJSON(data []byte) error {
	f.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.On = false
		return nil
	}
	return json.Unmarshal(data, &f.On)
}

// Enabled reports whether coaching audio was requested.
func (f VoiceFlag) Enabled() bool {
	return !f.Present || f.On
}
