// internal/handlers/song/song-request/handler.go
package songrequest

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "melodicamate/internal/common/errors"
	"melodicamate/internal/common/httputil"
	"melodicamate/internal/common/logger"
	"melodicamate/internal/common/observability"
	"melodicamate/internal/common/validation"
	"melodicamate/internal/genai"
	"melodicamate/internal/music"
)

const (
	Route = "/api/song/request"

	lookupFailedMessage = "Gemini call failed or returned invalid data."
	notFoundMessage     = "No open version found. Please sing or play it live."
)

type Handler struct {
	config    *Config
	songs     genai.SongFinder
	validator *validation.Validator
	obs       *observability.Observability
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, songs genai.SongFinder, validator *validation.Validator, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"route": Route})
	return &Handler{
		config:    config,
		songs:     songs,
		validator: validator,
		obs:       obs,
		errors:    apperrors.NewErrorHandler(log),
		logger:    log,
	}
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := httputil.BindJSON(r, h.validator, validation.SchemaSongRequest, &input); err != nil {
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

	switch {
	case output.Song != nil:
		httputil.WriteJSON(w, http.StatusOK, output.Song)
	case output.Miss.Error != "":
		httputil.WriteJSON(w, http.StatusBadGateway, output.Miss)
	default:
		httputil.WriteJSON(w, http.StatusOK, output.Miss)
	}
}

func (h *Handler) Help(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, HelpOutput{Message: "POST a song query to search public-domain library."})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()
	defer func() {
		h.obs.RecordOperationDuration(ctx, "song_request", time.Since(start))
	}()

	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, apperrors.NewInvalidInputError("query is required")
	}
	if input.DesiredKey == "" {
		input.DesiredKey = h.config.DefaultKey
	}
	if input.Mode == "" {
		input.Mode = h.config.DefaultMode
	}

	classification := genai.Classify(query, input.ComposerOrArtist)
	canonicalTitle := query
	if utf8.RuneCountInString(query) <= 2 {
		canonicalTitle = classification.CanonicalTitle
	}

	lookup, err := h.songs.FindSong(ctx, query)

	if err != nil {
		notes := genai.ErrorNotes(err)
		h.logger.Error("song lookup failed", map[string]interface{}{
			"query": query,
			"error": err.Error(),
			"notes": notes,
		})
		h.obs.RecordSongLookup(ctx, genai.SourceGemini, false)
		return &Output{Miss: &MissOutput{
			Error:          genai.ErrorCode(err),
			Message:        lookupFailedMessage,
			CanonicalTitle: canonicalTitle,
			Notes:          notes,
		}}, nil
	}

	if lookup == nil || !lookup.Found {
		notes := ""
		source := genai.SourceGemini
		if lookup != nil {
			notes = lookup.Notes
			source = lookup.Source
		}
		h.obs.RecordSongLookup(ctx, source, false)
		h.logger.Info("song not found", map[string]interface{}{"query": query})
		return &Output{Miss: &MissOutput{
			Message:        notFoundMessage,
			CanonicalTitle: canonicalTitle,
			Notes:          notes,
		}}, nil
	}

	key := lookup.Key
	if key == "" {
		key = input.DesiredKey
	}
	mode := lookup.Mode
	if mode == "" {
		mode = input.Mode
	}

	h.obs.RecordSongLookup(ctx, lookup.Source, true)
	h.logger.Info("song found", map[string]interface{}{
		"query":      query,
		"source":     lookup.Source,
		"confidence": lookup.Confidence,
		"numbers":    len(lookup.Numbers),
	})

	return &Output{Song: &SongOutput{
		Found:          true,
		SongID:         music.SongID(canonicalTitle),
		CanonicalTitle: canonicalTitle,
		Title:          canonicalTitle,
		Key:            key,
		Mode:           mode,
		Numbers:        nonNil(lookup.Numbers),
		Measures:       []string{},
		Lines:          nonNil(lookup.Lines),
		TempoBPM:       lookup.TempoBPM,
		NoteNames:      music.NoteNames(lookup.Numbers, key, mode),
		Lyrics:         lookup.Lyrics,
		Source:         lookup.Source,
		Confidence:     lookup.Confidence,
		Notes:          lookup.Notes,
	}}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
