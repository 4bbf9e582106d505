// internal/handlers/song/analyze-recording/handler.go
package analyzerecording

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "melodicamate/internal/common/errors"
	"melodicamate/internal/common/httputil"
	"melodicamate/internal/common/logger"
	"melodicamate/internal/common/observability"
	"melodicamate/internal/genai"
	"melodicamate/internal/music"
)

const (
	Route = "/api/song/analyze-recording"

	audioField = "audio"
	titleField = "song_title"

	missMessage = "Could not extract melody from recording. Try recording again with clearer audio."
)

type Handler struct {
	config   *Config
	analyzer genai.RecordingAnalyzer
	obs      *observability.Observability
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, analyzer genai.RecordingAnalyzer, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"route": Route})
	return &Handler{
		config:   config,
		analyzer: analyzer,
		obs:      obs,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
	}
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	input, err := h.parseInput(w, r)
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}

	if output.Melody != nil {
		httputil.WriteJSON(w, http.StatusOK, output.Melody)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, output.Miss)
}

// parseInput reads the multipart form. The upload is capped at
// MaxUploadBytes plus a little room for the other form fields.
func (h *Handler) parseInput(w http.ResponseWriter, r *http.Request) (*Input, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes+64<<10)
	if err := r.ParseMultipartForm(h.config.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.NewInvalidInputError(
				fmt.Sprintf("Audio file is too large. The limit is %d MB.", h.config.MaxUploadBytes>>20))
		}
		return nil, apperrors.NewInvalidInputError("No audio file provided. Please upload an audio file.")
	}

	file, header, err := r.FormFile(audioField)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("No audio file provided. Please upload an audio file.")
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}
	if int64(len(audio)) > h.config.MaxUploadBytes {
		return nil, apperrors.NewInvalidInputError(
			fmt.Sprintf("Audio file is too large. The limit is %d MB.", h.config.MaxUploadBytes>>20))
	}

	return &Input{
		Audio:     audio,
		MimeType:  header.Header.Get("Content-Type"),
		SongTitle: r.FormValue(titleField),
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()
	defer func() {
		h.obs.RecordOperationDuration(ctx, "analyze_recording", time.Since(start))
	}()

	if len(input.Audio) == 0 {
		return nil, apperrors.NewInvalidInputError("Audio file is empty")
	}
	title := strings.TrimSpace(input.SongTitle)
	if title == "" {
		title = h.config.DefaultTitle
	}

	analysis, err := h.analyzer.AnalyzeRecording(ctx, input.Audio, input.MimeType, title)
	if err != nil || analysis == nil || !analysis.Found {
		miss := &MissOutput{Error: "unknown", Message: missMessage}
		if err != nil {
			miss.Error = genai.ErrorCode(err)
			miss.Notes = genai.ErrorNotes(err)
		} else if analysis != nil {
			miss.Notes = analysis.Notes
		}
		h.logger.Warn("no melody extracted", map[string]interface{}{
			"title": title,
			"bytes": len(input.Audio),
			"error": miss.Error,
		})
		h.obs.RecordSongLookup(ctx, genai.SourceRecording, false)
		return &Output{Miss: miss}, nil
	}

	tempo := h.config.DefaultTempo
	if analysis.TempoBPM != nil {
		tempo = *analysis.TempoBPM
	}

	h.obs.RecordSongLookup(ctx, genai.SourceRecording, true)
	h.logger.Info("recording analyzed", map[string]interface{}{
		"title":   title,
		"key":     analysis.Key,
		"mode":    analysis.Mode,
		"numbers": len(analysis.Numbers),
	})

	return &Output{Melody: &MelodyOutput{
		Found:          true,
		SongID:         music.SongID(title),
		CanonicalTitle: title,
		Title:          title,
		Key:            analysis.Key,
		Mode:           analysis.Mode,
		Numbers:        analysis.Numbers,
		NoteNames:      music.NoteNames(analysis.Numbers, analysis.Key, analysis.Mode),
		TempoBPM:       tempo,
		Confidence:     analysis.Confidence,
		Notes:          analysis.Notes,
		Source:         genai.SourceRecording,
		Message:        fmt.Sprintf("Successfully analyzed your recording! Detected %d notes.", len(analysis.Numbers)),
	}}, nil
}
