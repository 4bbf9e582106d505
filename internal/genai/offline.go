package genai

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"melodicamate/internal/common/logger"
	"melodicamate/internal/music"
)

// StubCoach returns canned feedback chosen by accuracy band.
type StubCoach struct{}

func (StubCoach) Coach(_ context.Context, req CoachingRequest) (string, error) {
	return FallbackCoaching(req.Title, req.Accuracy, req.LyricContext), nil
}

// FallbackCoaching is the deterministic coaching text.
func FallbackCoaching(title string, accuracy float64, lyricContext []string) string {
	spot := ""
	if words := quoteWords(lyricContext, 2); len(words) > 0 {
		spot = " especially around " + strings.Join(words, " and ")
	}

	switch {
	case accuracy >= 90:
		return fmt.Sprintf("Excellent work on %s! You're really close%s. One more smooth run-through and you've got it.", title, spot)
	case accuracy >= 75:
		return fmt.Sprintf("Good progress on %s! The melody is taking shape%s. Try singing it slower to nail those tricky spots.", title, spot)
	case accuracy >= 60:
		return fmt.Sprintf("Nice effort on %s. Focus on following the melody's ups and downs%s. Hum it first to get the feel.", title, spot)
	case accuracy >= 40:
		return fmt.Sprintf("Keep working on %s! Try listening to it a few times first, then sing along. Focus on matching the melody shape.", title)
	default:
		return fmt.Sprintf("Let's take %s slower. Hum the melody first to learn the pattern, then add your voice. You'll get there!", title)
	}
}

// FallbackCoach tries the primary coach and falls back on error or an
// empty answer.
type FallbackCoach struct {
	primary  Coach
	fallback Coach
	logger   logger.Logger
}

func NewFallbackCoach(primary, fallback Coach, log logger.Logger) *FallbackCoach {
	return &FallbackCoach{primary: primary, fallback: fallback, logger: log}
}

func (f *FallbackCoach) Coach(ctx context.Context, req CoachingRequest) (string, error) {
	text, err := f.primary.Coach(ctx, req)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	f.logger.Warn("coaching fallback", map[string]interface{}{
		"title": req.Title,
		"error": ErrorCode(err),
	})
	return f.fallback.Coach(ctx, req)
}

// LibraryFinder answers song lookups from the built-in public-domain list.
type LibraryFinder struct{}

func (LibraryFinder) FindSong(_ context.Context, query string) (*SongLookup, error) {
	song, ok := music.FindSong(query)
	if !ok {
		return &SongLookup{
			Found:   false,
			Lines:   []string{},
			Numbers: []string{},
			Notes:   "Gemini disabled; no match in the offline library.",
			Source:  SourceLibrary,
		}, nil
	}

	tempo := 100.0
	lines := []string{song.Lyrics, strings.Join(song.Numbers, " ")}
	return &SongLookup{
		Found:      true,
		Confidence: "library",
		Key:        "C",
		Mode:       "major",
		TempoBPM:   &tempo,
		Lines:      lines,
		Numbers:    song.Numbers,
		Lyrics:     strings.Join(lines, "\n"),
		Notes:      fmt.Sprintf("Offline library match: %s (%s).", song.Title, song.Composer),
		Source:     SourceLibrary,
	}, nil
}

// DisabledAnalyzer is used without Gemini credentials.
type DisabledAnalyzer struct{}

func (DisabledAnalyzer) AnalyzeRecording(context.Context, []byte, string, string) (*RecordingAnalysis, error) {
	return nil, ErrGeminiDisabled
}

// Classification is request metadata; nothing is gated on it.
type Classification struct {
	LikelyPublicDomain bool     `json:"likely_public_domain"`
	CanonicalTitle     string   `json:"canonical_title"`
	Composer           string   `json:"composer"`
	SearchTerms        []string `json:"search_terms"`
	Notes              string   `json:"notes"`
}

// Classify allows every request and title-cases the query. It makes no call.
func Classify(query, composer string) Classification {
	return Classification{
		LikelyPublicDomain: true,
		CanonicalTitle:     TitleCase(query),
		Composer:           composer,
		SearchTerms:        []string{query},
		Notes:              "Classification delegated to Gemini.",
	}
}

// TitleCase upper-cases the first letter of every run of letters and
// lower-cases the rest ("ode to joy" -> "Ode To Joy").
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
