// Package server wires the API handlers onto a ServeMux and wraps it with
// request id, logging, metrics, recovery and rate limiting.
package server

import (
	"context"
	"net/http"
	"time"

	apperrors "melodicamate/internal/common/errors"
	"melodicamate/internal/common/httputil"
	"melodicamate/internal/common/logger"
	"melodicamate/internal/common/ratelimit"
	coachexercise "melodicamate/internal/handlers/coach/coach-exercise"
	analyzerecording "melodicamate/internal/handlers/song/analyze-recording"
	songrequest "melodicamate/internal/handlers/song/song-request"
	texttospeech "melodicamate/internal/handlers/speech/text-to-speech"
	notestonumbers "melodicamate/internal/handlers/transcribe/notes-to-numbers"
)

const (
	HealthRoute  = "/health"
	ReadyRoute   = "/ready"
	MetricsRoute = "/metrics"
	RootRoute    = "/"
)

// publicRoutes is the route list reported by GET /.
var publicRoutes = []string{
	HealthRoute,
	coachexercise.Route,
	notestonumbers.Route,
	songrequest.Route,
	texttospeech.Route,
}

var knownRoutes = map[string]bool{
	HealthRoute:            true,
	ReadyRoute:             true,
	MetricsRoute:           true,
	RootRoute:              true,
	coachexercise.Route:    true,
	notestonumbers.Route:   true,
	songrequest.Route:      true,
	analyzerecording.Route: true,
	texttospeech.Route:     true,
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Readiness describes which optional integrations are configured.
type Readiness struct {
	Gemini bool
	TTS    bool
	Cache  Pinger
}

type Dependencies struct {
	Coach     *coachexercise.Handler
	Notes     *notestonumbers.Handler
	Songs     *songrequest.Handler
	Recording *analyzerecording.Handler
	TTS       *texttospeech.Handler

	Readiness Readiness
	Limiter   *ratelimit.Limiter
	Metrics   http.Handler
	Logger    logger.Logger
}

// RegisterRoutes adds every route to mux.
func RegisterRoutes(mux *http.ServeMux, d Dependencies) {
	mux.HandleFunc(HealthRoute, methods(map[string]http.HandlerFunc{
		http.MethodGet:  handleHealth,
		http.MethodPost: handleHealth,
	}))
	mux.HandleFunc(ReadyRoute, methods(map[string]http.HandlerFunc{
		http.MethodGet: readyHandler(d.Readiness),
	}))
	if d.Metrics != nil {
		mux.Handle(MetricsRoute, d.Metrics)
	}
	mux.HandleFunc(RootRoute, handleRoot)

	mux.HandleFunc(coachexercise.Route, methods(map[string]http.HandlerFunc{
		http.MethodGet:  d.Coach.Help,
		http.MethodPost: d.Coach.Handle,
	}))
	mux.HandleFunc(notestonumbers.Route, methods(map[string]http.HandlerFunc{
		http.MethodGet:  d.Notes.Help,
		http.MethodPost: d.Notes.Handle,
	}))
	mux.HandleFunc(songrequest.Route, methods(map[string]http.HandlerFunc{
		http.MethodGet:  d.Songs.Help,
		http.MethodPost: d.Songs.Handle,
	}))
	mux.HandleFunc(analyzerecording.Route, methods(map[string]http.HandlerFunc{
		http.MethodPost: d.Recording.Handle,
	}))
	mux.HandleFunc(texttospeech.Route, methods(map[string]http.HandlerFunc{
		http.MethodGet:  d.TTS.Help,
		http.MethodPost: d.TTS.Handle,
	}))
}

// New returns the full handler chain. Order, outermost first: request id,
// recovery, logging and metrics, rate limiting, routing.
func New(d Dependencies) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, d)

	var h http.Handler = mux
	if d.Limiter != nil {
		h = rateLimit(d.Limiter, d.Logger)(h)
	}
	h = instrument(d.Logger)(h)
	h = recoverer(d.Logger)(h)
	h = requestID(h)
	return h
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != RootRoute {
		apperrors.WriteError(w, apperrors.NewNotFoundError(r.URL.Path))
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeMethodNotAllowed(w, r, "GET, POST")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"message": "MelodicaMate backend is running",
		"routes":  publicRoutes,
	})
}

func readyHandler(rd Readiness) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cacheUp := false
		if rd.Cache != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			cacheUp = rd.Cache.Ping(ctx) == nil
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ready",
			"gemini": rd.Gemini,
			"tts":    rd.TTS,
			"cache":  cacheUp,
		})
	}
}
