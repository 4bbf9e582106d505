// internal/handlers/coach/coach-exercise/handler.go
package coachexercise

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	apperrors "melodicamate/internal/common/errors"
	"melodicamate/internal/common/httputil"
	"melodicamate/internal/common/logger"
	"melodicamate/internal/common/observability"
	"melodicamate/internal/common/validation"
	"melodicamate/internal/genai"
	"melodicamate/internal/music"
	"melodicamate/internal/speech"
)

const (
	Route = "/api/coach/exercise"

	freePlaySummary = "Free play session - no target melody found."
)

type Handler struct {
	config    *Config
	coach     genai.Coach
	speech    speech.Synthesizer
	validator *validation.Validator
	obs       *observability.Observability
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, coach genai.Coach, synth speech.Synthesizer, validator *validation.Validator, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"route": Route})
	return &Handler{
		config:    config,
		coach:     coach,
		speech:    synth,
		validator: validator,
		obs:       obs,
		errors:    apperrors.NewErrorHandler(log),
		logger:    log,
	}
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := httputil.BindJSON(r, h.validator, validation.SchemaCoachExercise, &input); err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}

	output, err := h.Execute(r.Context(), &input)
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, output)
}

func (h *Handler) Help(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, HelpOutput{Message: "POST exercise data for coaching."})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()
	h.applyDefaults(input)

	title := firstNonEmpty(input.CanonicalTitle, input.Title, input.SongTitle, input.ExerciseID, h.config.DefaultTitle)
	expected := h.expectedNumbers(input)
	played := music.MapNotesToNumbers(input.Notes, input.KeyTonic, input.Mode, music.AccidentalSharps)
	alignment := music.AlignLyrics(input.LyricsLines)

	output := &Output{
		SongTitle:       title,
		ExpectedNumbers: expected,
		PlayedNumbers:   played,
		MistakeDetails:  []string{},
	}

	lyricContext := []string{}
	if len(expected) == 0 {
		output.MistakesSummary = music.MistakeSummary{Issues: []music.WrongNote{}, Summary: freePlaySummary}
	} else {
		accuracy, wrong := music.CompareSequences(expected, played)
		output.Accuracy = accuracy
		output.MistakesSummary = music.BuildMistakeSummary(wrong)
		output.MistakeDetails = music.DescribeMistakes(wrong, expected, played, input.KeyTonic, input.Mode, alignment)
		lyricContext = music.LyricContext(wrong, alignment)
	}

	req := genai.CoachingRequest{
		Title:        title,
		Accuracy:     output.Accuracy,
		LyricContext: lyricContext,
		LyricsLines:  input.LyricsLines,
	}
	text, err := h.coach.Coach(ctx, req)
	if err != nil {
		h.logger.Warn("coach failed, using fallback text", map[string]interface{}{
			"error": genai.ErrorCode(err),
		})
		text = genai.FallbackCoaching(title, output.Accuracy, lyricContext)
	}
	output.CoachingText = text

	if input.VoiceEnabled.Enabled() && text != "" {
		output.TTSAudioBase64 = h.synthesize(ctx, text, input.VoiceID)
	}

	h.obs.RecordCoachingSession(ctx, output.Accuracy)
	h.obs.RecordOperationDuration(ctx, "coach_exercise", time.Since(start))
	h.logger.Info("coaching completed", map[string]interface{}{
		"title":    title,
		"accuracy": output.Accuracy,
		"expected": len(expected),
		"played":   len(played),
		"audio":    output.TTSAudioBase64 != nil,
	})

	return output, nil
}

// expectedNumbers resolves the target melody: explicit numbers, then a
// built-in exercise, then a library match on the exercise id.
func (h *Handler) expectedNumbers(input *Input) []string {
	if len(input.ExpectedNumbers) > 0 {
		return []string(input.ExpectedNumbers)
	}
	if input.ExerciseID == "" {
		return []string{}
	}
	if numbers, ok := music.ExerciseNumbers(input.ExerciseID); ok {
		return numbers
	}
	if song, ok := music.FindSong(input.ExerciseID); ok {
		return song.Numbers
	}
	return []string{}
}

// synthesize returns base64 audio, or nil when speech is off or fails.
// Coaching never fails because of speech.
func (h *Handler) synthesize(ctx context.Context, text, voiceID string) *string {
	audio, err := h.speech.Synthesize(ctx, speech.Truncate(text, h.config.TTSCharLimit), voiceID)
	switch {
	case errors.Is(err, speech.ErrTTSDisabled):
		h.obs.RecordSpeechSynthesis(ctx, "disabled")
		return nil
	case err != nil:
		h.obs.RecordSpeechSynthesis(ctx, "failed")
		h.logger.Warn("coaching audio unavailable", map[string]interface{}{"error": err.Error()})
		return nil
	}

	h.obs.RecordSpeechSynthesis(ctx, "ok")
	encoded := base64.StdEncoding.EncodeToString(audio)
	return &encoded
}

func (h *Handler) applyDefaults(input *Input) {
	if input.KeyTonic == "" {
		input.KeyTonic = h.config.DefaultTonic
	}
	if input.Mode == "" {
		input.Mode = h.config.DefaultMode
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
