// internal/handlers/coach/coach-exercise/handler_test.go
package coachexercise

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"melodicamate/internal/common/logger"
	"melodicamate/internal/common/validation"
	"melodicamate/internal/genai"
	"melodicamate/internal/music"
	"melodicamate/internal/speech"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSynth records calls and returns canned audio or an error.
type fakeSynth struct {
	audio []byte
	err   error
	texts []string
	voice string
}

func (f *fakeSynth) Enabled() bool { return f.err == nil }

func (f *fakeSynth) Synthesize(_ context.Context, text, voiceID string) ([]byte, error) {
	f.texts = append(f.texts, text)
	f.voice = voiceID
	return f.audio, f.err
}

type erroringCoach struct{}

func (erroringCoach) Coach(context.Context, genai.CoachingRequest) (string, error) {
	return "", genai.ErrGeminiTimeout
}

func newTestHandler(t *testing.T, coach genai.Coach, synth speech.Synthesizer) *Handler {
	if coach == nil {
		coach = genai.StubCoach{}
	}
	if synth == nil {
		synth = speech.Disabled{}
	}
	return NewHandler(LoadConfig(), coach, synth, validation.MustNew(), nil, logger.NewTestLogger(t))
}

func notes(midis ...float64) []music.Note {
	out := make([]music.Note, len(midis))
	for i := range midis {
		out[i] = music.Note{MIDI: &midis[i]}
	}
	return out
}

func TestExecute_Scoring(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	out, err := h.Execute(context.Background(), &Input{
		Title:           "Scale",
		ExpectedNumbers: music.Tokens{"1", "2", "3"},
		Notes:           notes(60, 62, 65),
		LyricsLines:     []string{"Do re mi", "1 2 3"},
	})
	require.NoError(t, err)

	assert.False(t, out.Refused)
	assert.Equal(t, "Scale", out.SongTitle)
	assert.Equal(t, 66.67, out.Accuracy)
	assert.Equal(t, []string{"1", "2", "3"}, out.ExpectedNumbers)
	assert.Equal(t, []string{"1", "2", "4"}, out.PlayedNumbers)
	require.Len(t, out.MistakesSummary.Issues, 1)
	assert.Equal(t, 2, out.MistakesSummary.Issues[0].Index)
	assert.Equal(t, "at 3: expected 3 got 4", out.MistakesSummary.Summary)
	assert.Equal(t, []string{"Note 3 ('mi') expected 3 (E4) but sang 4 (F4)"}, out.MistakeDetails)
	assert.Equal(t,
		"Nice effort on Scale. Focus on following the melody's ups and downs especially around 'mi'. Hum it first to get the feel.",
		out.CoachingText)
	assert.Nil(t, out.TTSAudioBase64)
}

func TestExecute_ExpectedNumberSources(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	t.Run("built-in exercise", func(t *testing.T) {
		out, err := h.Execute(context.Background(), &Input{ExerciseID: "arpeggio_1358_c", Notes: notes(60, 64, 67, 72)})
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "3", "5", "1"}, out.ExpectedNumbers)
		assert.Equal(t, 100.0, out.Accuracy)
		assert.Equal(t, "arpeggio_1358_c", out.SongTitle)
		assert.Equal(t, "Great job—no mistakes detected.", out.MistakesSummary.Summary)
	})

	t.Run("library match", func(t *testing.T) {
		out, err := h.Execute(context.Background(), &Input{ExerciseID: "twinkle twinkle little star"})
		require.NoError(t, err)
		assert.Len(t, out.ExpectedNumbers, 14)
		assert.Equal(t, 0.0, out.Accuracy)
		assert.Len(t, out.MistakeDetails, 14)
	})

	t.Run("free play", func(t *testing.T) {
		out, err := h.Execute(context.Background(), &Input{Notes: notes(60, 62)})
		require.NoError(t, err)
		assert.Equal(t, "this piece", out.SongTitle)
		assert.Equal(t, []string{}, out.ExpectedNumbers)
		assert.Equal(t, 0.0, out.Accuracy)
		assert.Equal(t, "Free play session - no target melody found.", out.MistakesSummary.Summary)
		assert.Empty(t, out.MistakesSummary.Issues)
		assert.Equal(t,
			"Let's take this piece slower. Hum the melody first to learn the pattern, then add your voice. You'll get there!",
			out.CoachingText)
	})
}

func TestExecute_TitlePriority(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	tests := []struct {
		input Input
		want  string
	}{
		{Input{CanonicalTitle: "Canon", Title: "T", SongTitle: "S", ExerciseID: "E"}, "Canon"},
		{Input{Title: "T", SongTitle: "S", ExerciseID: "E"}, "T"},
		{Input{SongTitle: "S", ExerciseID: "E"}, "S"},
		{Input{ExerciseID: "E"}, "E"},
	}
	for _, tt := range tests {
		out, err := h.Execute(context.Background(), &tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, out.SongTitle)
	}
}

func TestExecute_Voice(t *testing.T) {
	t.Run("audio attached", func(t *testing.T) {
		synth := &fakeSynth{audio: []byte("mp3")}
		h := newTestHandler(t, nil, synth)

		out, err := h.Execute(context.Background(), &Input{ExerciseID: "arpeggio_1358_c", VoiceID: "v1"})
		require.NoError(t, err)
		require.NotNil(t, out.TTSAudioBase64)
		assert.Equal(t, "bXAz", *out.TTSAudioBase64)
		assert.Equal(t, "v1", synth.voice)
		require.Len(t, synth.texts, 1)
		assert.Equal(t, out.CoachingText, synth.texts[0])
	})

	t.Run("voice disabled by request", func(t *testing.T) {
		synth := &fakeSynth{audio: []byte("mp3")}
		h := newTestHandler(t, nil, synth)
		out, err := h.Execute(context.Background(), &Input{VoiceEnabled: VoiceFlag{Present: true}})
		require.NoError(t, err)
		assert.Nil(t, out.TTSAudioBase64)
		assert.Empty(t, synth.texts)
	})

	t.Run("speech failure is not fatal", func(t *testing.T) {
		synth := &fakeSynth{err: speech.ErrTTSFailed}
		h := newTestHandler(t, nil, synth)

		out, err := h.Execute(context.Background(), &Input{})
		require.NoError(t, err)
		assert.Nil(t, out.TTSAudioBase64)
		assert.NotEmpty(t, out.CoachingText)
	})

	t.Run("long coaching text is truncated for speech", func(t *testing.T) {
		synth := &fakeSynth{audio: []byte("mp3")}
		h := newTestHandler(t, nil, synth)
		h.config.TTSCharLimit = 10

		_, err := h.Execute(context.Background(), &Input{})
		require.NoError(t, err)
		require.Len(t, synth.texts, 1)
		assert.Equal(t, "Let's take", synth.texts[0])
	})
}

func TestExecute_CoachErrorUsesFallback(t *testing.T) {
	h := newTestHandler(t, erroringCoach{}, nil)

	out, err := h.Execute(context.Background(), &Input{Title: "Scale", ExpectedNumbers: music.Tokens{"1"}, Notes: notes(60)})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.CoachingText, "Excellent work on Scale!"))
}

func TestHandle(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	body := `{"exercise_id":"x","expected_numbers":[1,2,"3"],"notes":[{"midi":60},{"midi":62},{"midi":64}],"voice_enabled":true}`
	req := httptest.NewRequest(http.MethodPost, Route, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, false, out["refused"])
	assert.Equal(t, 100.0, out["accuracy"])
	assert.Equal(t, []interface{}{"1", "2", "3"}, out["expected_numbers"])
	assert.Nil(t, out["tts_audio_base64"])
	assert.Contains(t, out, "tts_audio_base64")
	assert.Contains(t, out, "mistake_details")
}

func TestHandle_VoiceEnabledField(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		wantAudio bool
	}{
		{"absent", ``, true},
		{"true", `,"voice_enabled":true`, true},
		{"false", `,"voice_enabled":false`, false},
		{"null", `,"voice_enabled":null`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synth := &fakeSynth{audio: []byte("mp3")}
			h := newTestHandler(t, nil, synth)

			body := `{"exercise_id":"arpeggio_1358_c"` + tt.field + `}`
			rec := httptest.NewRecorder()
			h.Handle(rec, httptest.NewRequest(http.MethodPost, Route, strings.NewReader(body)))

			require.Equal(t, http.StatusOK, rec.Code)
			var out map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
			if tt.wantAudio {
				assert.Equal(t, "bXAz", out["tts_audio_base64"])
				assert.Len(t, synth.texts, 1)
			} else {
				assert.Nil(t, out["tts_audio_base64"])
				assert.Empty(t, synth.texts)
			}
		})
	}
}

func TestHandle_InvalidInput(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	req := httptest.NewRequest(http.MethodPost, Route, strings.NewReader(`{"notes":{"midi":60}}`))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid_input","message":"notes must be a list"}`, rec.Body.String())
}

func TestHelp(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	rec := httptest.NewRecorder()
	h.Help(rec, httptest.NewRequest(http.MethodGet, Route, nil))
	assert.JSONEq(t, `{"message":"POST exercise data for coaching."}`, rec.Body.String())
}
