package genai

import (
	"context"
	"errors"
	"testing"
	"time"

	"melodicamate/internal/common/cache"
	"melodicamate/internal/common/config"
	"melodicamate/internal/common/database"
	"melodicamate/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackCoaching(t *testing.T) {
	tests := []struct {
		accuracy float64
		context  []string
		want     string
	}{
		{95, nil, "Excellent work on Ode to Joy! You're really close. One more smooth run-through and you've got it."},
		{80, []string{"joyful", "adore", "thee"}, "Good progress on Ode to Joy! The melody is taking shape especially around 'joyful' and 'adore'. Try singing it slower to nail those tricky spots."},
		{60, []string{"'we'"}, "Nice effort on Ode to Joy. Focus on following the melody's ups and downs especially around 'we'. Hum it first to get the feel."},
		{45, []string{"joyful"}, "Keep working on Ode to Joy! Try listening to it a few times first, then sing along. Focus on matching the melody shape."},
		{0, nil, "Let's take Ode to Joy slower. Hum the melody first to learn the pattern, then add your voice. You'll get there!"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FallbackCoaching("Ode to Joy", tt.accuracy, tt.context))
	}
}

type failingCoach struct{ calls int }

func (f *failingCoach) Coach(context.Context, CoachingRequest) (string, error) {
	f.calls++
	return "", ErrGeminiRequestFailed
}

func TestFallbackCoach(t *testing.T) {
	primary := &failingCoach{}
	coach := NewFallbackCoach(primary, StubCoach{}, logger.NewTestLogger(t))

	text, err := coach.Coach(context.Background(), CoachingRequest{Title: "Scale", Accuracy: 100})
	require.NoError(t, err)
	assert.Equal(t, 1, primary.calls)
	assert.Contains(t, text, "Excellent work on Scale!")
}

func TestLibraryFinder(t *testing.T) {
	lookup, err := LibraryFinder{}.FindSong(context.Background(), "twinkle twinkle little star")
	require.NoError(t, err)
	require.True(t, lookup.Found)
	assert.Equal(t, "library", lookup.Confidence)
	assert.Equal(t, "C", lookup.Key)
	assert.Equal(t, "major", lookup.Mode)
	assert.Equal(t, 100.0, *lookup.TempoBPM)
	assert.Equal(t, SourceLibrary, lookup.Source)
	assert.Equal(t, []string{
		"Twinkle, twinkle, little star, how I wonder what you are",
		"1 1 5 5 6 6 5 4 4 3 3 2 2 1",
	}, lookup.Lines)

	lookup, err = LibraryFinder{}.FindSong(context.Background(), "zzzz qqqq xxxx")
	require.NoError(t, err)
	assert.False(t, lookup.Found)
}

func TestDisabledAnalyzer(t *testing.T) {
	_, err := DisabledAnalyzer{}.AnalyzeRecording(context.Background(), []byte{1}, "audio/wav", "x")
	assert.ErrorIs(t, err, ErrGeminiDisabled)
	assert.Equal(t, "gemini_disabled", ErrorCode(err))
}

func TestClassify(t *testing.T) {
	c := Classify("twinkle twinkle", "")
	assert.True(t, c.LikelyPublicDomain)
	assert.Equal(t, "Twinkle Twinkle", c.CanonicalTitle)
	assert.Equal(t, []string{"twinkle twinkle"}, c.SearchTerms)
	assert.Equal(t, "Classification delegated to Gemini.", c.Notes)

	assert.Equal(t, "Don'T Stop", TitleCase("don't STOP"))
	assert.Equal(t, "Ab", TitleCase("ab"))
}

type countingFinder struct {
	calls  int
	lookup *SongLookup
	err    error
}

func (c *countingFinder) FindSong(context.Context, string) (*SongLookup, error) {
	c.calls++
	return c.lookup, c.err
}

func TestCachedSongFinder(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rc := database.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	c := cache.NewRedisCache(rc, "song")

	next := &countingFinder{lookup: &SongLookup{Found: true, Numbers: []string{"1", "2"}, Source: SourceGemini}}
	finder := NewCachedSongFinder(next, c, time.Hour, logger.NewTestLogger(t))

	first, err := finder.FindSong(context.Background(), "Ode  to Joy")
	require.NoError(t, err)
	second, err := finder.FindSong(context.Background(), "ode to joy")
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first.Numbers, second.Numbers)
	assert.Equal(t, SourceGemini, second.Source)
}

func TestCachedSongFinder_DoesNotStoreFailures(t *testing.T) {
	next := &countingFinder{err: errors.New("boom")}
	finder := NewCachedSongFinder(next, nil, time.Hour, logger.NewTestLogger(t))

	_, err := finder.FindSong(context.Background(), "x")
	assert.Error(t, err)
	_, _ = finder.FindSong(context.Background(), "x")
	assert.Equal(t, 2, next.calls)
}

func TestNewCapabilities(t *testing.T) {
	offline := NewCapabilities(config.GeminiConfig{}, cache.Noop{}, time.Hour, logger.NewTestLogger(t))
	assert.False(t, offline.Live)
	assert.IsType(t, StubCoach{}, offline.Coach)
	assert.IsType(t, DisabledAnalyzer{}, offline.Analyzer)

	live := NewCapabilities(config.GeminiConfig{APIKey: "k", Model: "m", Timeout: 1000}, cache.Noop{}, time.Hour, logger.NewTestLogger(t))
	assert.True(t, live.Live)
	assert.IsType(t, &FallbackCoach{}, live.Coach)
	assert.IsType(t, &GeminiClient{}, live.Analyzer)
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences(`  {"a":1} `))

	assert.Equal(t, []string{"1", "b3", "#4", "5"}, numbersFromLines([]string{"la la", "1 b3 x #4... - 5", "ignored 9"}))

	lookup, err := parseSongPayload(`{"found": true, "lines": ["a", "1 2 3"], "notes": "short"}`)
	require.NoError(t, err)
	assert.Equal(t, "short [Warning: Very short melody - verify accuracy]", lookup.Notes)
	assert.Equal(t, "unknown", lookup.Confidence)

	analysis, err := parseRecordingPayload(`{"found": true, "numbers": []}`)
	require.NoError(t, err)
	assert.False(t, analysis.Found, "no numbers means nothing was detected")
	assert.Equal(t, "C", analysis.Key)

	assert.Equal(t, "hello", cleanCoachingText(` "hello" `))
	assert.Equal(t, "hi there", cleanCoachingText(`'hi there'`))
}
