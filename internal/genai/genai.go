// Package genai holds the generative language capabilities the API needs
// (coaching text, song lookup, recording analysis) with a live Gemini
// implementation and deterministic offline implementations.
package genai

import (
	"context"
	"errors"
)

const (
	SourceGemini    = "gemini"
	SourceLibrary   = "library"
	SourceRecording = "user_recording"
)

var (
	ErrGeminiTimeout       = errors.New("gemini_timeout")
	ErrGeminiRequestFailed = errors.New("gemini_request_failed")
	ErrEmptyResponse       = errors.New("empty_response")
	ErrInvalidJSON         = errors.New("invalid_json")
	ErrGeminiDisabled      = errors.New("gemini_disabled")
)

// CoachingRequest describes one scored performance.
type CoachingRequest struct {
	Title        string
	Accuracy     float64
	LyricContext []string
	LyricsLines  []string
}

// Coach writes short spoken feedback for a performance.
type Coach interface {
	Coach(ctx context.Context, req CoachingRequest) (string, error)
}

// SongLookup is the outcome of a song search. Found=false with a nil error
// means the song is simply not known.
type SongLookup struct {
	Found         bool     `json:"found"`
	Confidence    string   `json:"confidence"`
	Key           string   `json:"key"`
	Mode          string   `json:"mode"`
	TimeSignature string   `json:"time_signature,omitempty"`
	TempoBPM      *float64 `json:"tempo_bpm"`
	Lines         []string `json:"lines"`
	Numbers       []string `json:"numbers"`
	Lyrics        string   `json:"lyrics"`
	Notes         string   `json:"notes"`
	Source        string   `json:"source"`
}

// SongFinder resolves a free text song query to a melody.
type SongFinder interface {
	FindSong(ctx context.Context, query string) (*SongLookup, error)
}

// RecordingAnalysis is the melody extracted from a user recording.
type RecordingAnalysis struct {
	Found      bool     `json:"found"`
	Key        string   `json:"key"`
	Mode       string   `json:"mode"`
	Numbers    []string `json:"numbers"`
	TempoBPM   *float64 `json:"tempo_bpm"`
	Confidence string   `json:"confidence"`
	Notes      string   `json:"notes"`
}

// RecordingAnalyzer extracts a melody from raw audio.
type RecordingAnalyzer interface {
	AnalyzeRecording(ctx context.Context, audio []byte, mimeType, title string) (*RecordingAnalysis, error)
}

// ErrorCode returns the short error label reported to clients.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidJSON):
		return ErrInvalidJSON.Error()
	case errors.Is(err, ErrEmptyResponse):
		return ErrEmptyResponse.Error()
	case errors.Is(err, ErrGeminiTimeout):
		return ErrGeminiTimeout.Error()
	case errors.Is(err, ErrGeminiDisabled):
		return ErrGeminiDisabled.Error()
	default:
		return err.Error()
	}
}

// ErrorNotes returns diagnostic notes for an error, if it carries any.
func ErrorNotes(err error) string {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Detail
	}
	return ""
}

// ParseError wraps ErrInvalidJSON with the decoder's message.
type ParseError struct {
	Detail string
}

func (e *ParseError) Error() string { return ErrInvalidJSON.Error() + ": " + e.Detail }

func (e *ParseError) Unwrap() error { return ErrInvalidJSON }
