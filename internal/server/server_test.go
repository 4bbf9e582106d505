package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"melodicamate/internal/common/logger"
	"melodicamate/internal/common/ratelimit"
	"melodicamate/internal/common/validation"
	"melodicamate/internal/genai"
	coachexercise "melodicamate/internal/handlers/coach/coach-exercise"
	analyzerecording "melodicamate/internal/handlers/song/analyze-recording"
	songrequest "melodicamate/internal/handlers/song/song-request"
	texttospeech "melodicamate/internal/handlers/speech/text-to-speech"
	notestonumbers "melodicamate/internal/handlers/transcribe/notes-to-numbers"
	"melodicamate/internal/speech"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

func testDependencies(t *testing.T) Dependencies {
	log := logger.NewTestLogger(t)
	v := validation.MustNew()
	return Dependencies{
		Coach:     coachexercise.NewHandler(coachexercise.LoadConfig(), genai.StubCoach{}, speech.Disabled{}, v, nil, log),
		Notes:     notestonumbers.NewHandler(notestonumbers.LoadConfig(), v, log),
		Songs:     songrequest.NewHandler(songrequest.LoadConfig(), genai.LibraryFinder{}, v, nil, log),
		Recording: analyzerecording.NewHandler(analyzerecording.LoadConfig(), genai.DisabledAnalyzer{}, nil, log),
		TTS:       texttospeech.NewHandler(texttospeech.LoadConfig(), speech.Disabled{}, v, nil, log),
		Metrics:   promhttp.Handler(),
		Logger:    log,
	}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	h := New(testDependencies(t))

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rec := do(t, h, method, HealthRoute, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	}
}

func TestRoot(t *testing.T) {
	h := New(testDependencies(t))

	rec := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "ok", out["status"])
	assert.Len(t, out["routes"], 5)
	assert.Contains(t, out["routes"], "/api/tts")
}

func TestUnknownPath(t *testing.T) {
	h := New(testDependencies(t))

	rec := do(t, h, http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode(t, rec)["error"])
}

func TestMethodNotAllowed(t *testing.T) {
	h := New(testDependencies(t))

	tests := []struct {
		method, path, allow string
	}{
		{http.MethodDelete, HealthRoute, "GET, POST"},
		{http.MethodPut, "/api/tts", "GET, POST"},
		{http.MethodGet, "/api/song/analyze-recording", "POST"},
		{http.MethodPatch, "/", "GET, POST"},
	}
	for _, tt := range tests {
		rec := do(t, h, tt.method, tt.path, "")
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code, tt.path)
		assert.Equal(t, tt.allow, rec.Header().Get("Allow"))
		assert.Equal(t, "method_not_allowed", decode(t, rec)["error"])
	}
}

func TestReady(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	d := testDependencies(t)
	d.Readiness = Readiness{Gemini: true, Cache: redisPinger{client}}
	rec := do(t, New(d), http.MethodGet, ReadyRoute, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready","gemini":true,"tts":false,"cache":true}`, rec.Body.String())

	d.Readiness = Readiness{TTS: true, Cache: failingPinger{}}
	rec = do(t, New(d), http.MethodGet, ReadyRoute, "")
	assert.JSONEq(t, `{"status":"ready","gemini":false,"tts":true,"cache":false}`, rec.Body.String())
}

type redisPinger struct{ c *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.c.Ping(ctx).Err() }

func TestAPIRoutesAreWired(t *testing.T) {
	h := New(testDependencies(t))

	rec := do(t, h, http.MethodPost, notestonumbers.Route,
		`{"key_tonic":"C","mode":"major","notes":[{"midi":60},{"midi":62}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"1", "2"}, decode(t, rec)["numbers"])

	rec = do(t, h, http.MethodPost, songrequest.Route, `{"query":"twinkle twinkle little star"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["found"])

	rec = do(t, h, http.MethodPost, texttospeech.Route, `{"text":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["tts_enabled"])

	rec = do(t, h, http.MethodGet, coachexercise.Route, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestID(t *testing.T) {
	h := New(testDependencies(t))

	rec := do(t, h, http.MethodGet, HealthRoute, "")
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, HealthRoute, nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRateLimit(t *testing.T) {
	d := testDependencies(t)
	d.Limiter = ratelimit.New(2, 0)
	h := New(d)

	for i := 0; i < 2; i++ {
		rec := do(t, h, http.MethodGet, texttospeech.Route, "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := do(t, h, http.MethodGet, texttospeech.Route, "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limited", decode(t, rec)["error"])
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// non-API routes are never limited
	rec = do(t, h, http.MethodGet, HealthRoute, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecoverer(t *testing.T) {
	h := requestID(recoverer(logger.NewTestLogger(t))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", decode(t, rec)["error"])
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/api/tts", routeLabel("/api/tts"))
	assert.Equal(t, "/health", routeLabel("/health"))
	assert.Equal(t, "unmatched", routeLabel("/api/tts/extra"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientIP(req))

	req.RemoteAddr = "10.0.0.2"
	assert.Equal(t, "10.0.0.2", clientIP(req))
}
