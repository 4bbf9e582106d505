// internal/handlers/speech/text-to-speech/handler.go
package texttospeech

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "melodicamate/internal/common/errors"
	"melodicamate/internal/common/httputil"
	"melodicamate/internal/common/logger"
	"melodicamate/internal/common/observability"
	"melodicamate/internal/common/validation"
	"melodicamate/internal/speech"
)

const (
	Route = "/api/tts"

	disabledMessage = "Text-to-speech unavailable. Check configuration."
)

type Handler struct {
	config    *Config
	speech    speech.Synthesizer
	validator *validation.Validator
	obs       *observability.Observability
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, synth speech.Synthesizer, validator *validation.Validator, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"route": Route})
	return &Handler{
		config:    config,
		speech:    synth,
		validator: validator,
		obs:       obs,
		errors:    apperrors.NewErrorHandler(log),
		logger:    log,
	}
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := httputil.BindJSON(r, h.validator, validation.SchemaTTS, &input); err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, output)
}

func (h *Handler) Help(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, HelpOutput{
		Message:    "POST text to synthesize.",
		LimitChars: h.config.CharLimit,
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()

	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, apperrors.NewInvalidInputError("text is required")
	}
	if n := utf8.RuneCountInString(text); n > h.config.CharLimit {
		h.logger.Debug("text truncated", map[string]interface{}{"chars": n, "limit": h.config.CharLimit})
		text = speech.Truncate(text, h.config.CharLimit)
	}

	audio, err := h.speech.Synthesize(ctx, text, input.VoiceID)
	h.obs.RecordOperationDuration(ctx, "text_to_speech", time.Since(start))

	switch {
	case errors.Is(err, speech.ErrTTSDisabled):
		h.obs.RecordSpeechSynthesis(ctx, "disabled")
		return &Output{Mime: speech.MimeType, Message: disabledMessage}, nil
	case errors.Is(err, context.DeadlineExceeded):
		h.obs.RecordSpeechSynthesis(ctx, "timeout")
		return nil, apperrors.NewUpstreamTimeoutError("elevenlabs")
	case err != nil:
		h.obs.RecordSpeechSynthesis(ctx, "failed")
		return nil, apperrors.NewTTSFailedError(err)
	}

	h.obs.RecordSpeechSynthesis(ctx, "ok")
	encoded := base64.StdEncoding.EncodeToString(audio)
	return &Output{AudioBase64: &encoded, Mime: speech.MimeType, TTSEnabled: true}, nil
}
