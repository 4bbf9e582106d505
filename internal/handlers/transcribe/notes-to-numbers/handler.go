// internal/handlers/transcribe/notes-to-numbers/handler.go
package notestonumbers

import (
	"context"
	"net/http"

	apperrors "melodicamate/internal/common/errors"
	"melodicamate/internal/common/httputil"
	"melodicamate/internal/common/logger"
	"melodicamate/internal/common/validation"
	"melodicamate/internal/music"
)

const (
	Route = "/api/transcribe/notes-to-numbers"
)

type Handler struct {
	config    *Config
	validator *validation.Validator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"route": Route})
	return &Handler{
		config:    config,
		validator: validator,
		errors:    apperrors.NewErrorHandler(log),
		logger:    log,
	}
}

// Handle serves POST requests.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := httputil.BindJSON(r, h.validator, validation.SchemaNotesToNumbers, &input); err != nil {
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

// Help serves GET requests with an example body.
func (h *Handler) Help(w http.ResponseWriter, _ *http.Request) {
	midi, t0, t1, conf := 60.0, 0.0, 500.0, 0.9
	httputil.WriteJSON(w, http.StatusOK, HelpOutput{
		Message: "POST notes to transcribe.",
		Example: Input{
			KeyTonic:       h.config.DefaultTonic,
			Mode:           h.config.DefaultMode,
			AccidentalPref: h.config.DefaultAccidentalPref,
			Notes:          []music.Note{{MIDI: &midi, T0Ms: &t0, T1Ms: &t1, Conf: &conf}},
		},
	})
}

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	h.applyDefaults(input)

	numbers := music.MapNotesToNumbers(input.Notes, input.KeyTonic, input.Mode, input.AccidentalPref)
	noteNames := make([]string, len(input.Notes))
	for i, n := range input.Notes {
		noteNames[i] = music.NoteName(n)
	}

	h.logger.Debug("notes mapped", map[string]interface{}{
		"key":   input.KeyTonic,
		"mode":  input.Mode,
		"notes": len(input.Notes),
	})

	return &Output{Numbers: numbers, NoteNames: noteNames}, nil
}

func (h *Handler) applyDefaults(input *Input) {
	if input.KeyTonic == "" {
		input.KeyTonic = h.config.DefaultTonic
	}
	if input.Mode == "" {
		input.Mode = h.config.DefaultMode
	}
	if input.AccidentalPref == "" {
		input.AccidentalPref = h.config.DefaultAccidentalPref
	}
}
