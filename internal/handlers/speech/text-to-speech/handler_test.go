// internal/handlers/speech/text-to-speech/handler_test.go
package texttospeech

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"melodicamate/internal/common/cache"
	"melodicamate/internal/common/config"
	"melodicamate/internal/common/logger"
	"melodicamate/internal/common/validation"
	"melodicamate/internal/speech"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSynth struct {
	audio []byte
	err   error
	text  string
}

func (r *recordingSynth) Enabled() bool { return true }

func (r *recordingSynth) Synthesize(_ context.Context, text, _ string) ([]byte, error) {
	r.text = text
	return r.audio, r.err
}

func newTestHandler(t *testing.T, synth speech.Synthesizer) *Handler {
	return NewHandler(LoadConfig(), synth, validation.MustNew(), nil, logger.NewTestLogger(t))
}

func post(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, Route, strings.NewReader(body)))
	return rec
}

func TestHandle_Disabled(t *testing.T) {
	h := newTestHandler(t, speech.Disabled{})

	rec := post(t, h, `{"text":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"audio_base64": null,
		"mime": "audio/mpeg",
		"tts_enabled": false,
		"message": "Text-to-speech unavailable. Check configuration."
	}`, rec.Body.String())
}

func TestHandle_KeyWithoutVoice(t *testing.T) {
	synth := speech.New(config.ElevenLabsConfig{APIKey: "k", BaseURL: "http://unused.invalid", Timeout: 1000}, 400, cache.Noop{}, time.Hour, logger.NewTestLogger(t))
	h := newTestHandler(t, synth)

	rec := post(t, h, `{"text":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Nil(t, out["audio_base64"])
	assert.Equal(t, false, out["tts_enabled"])
}

func TestHandle_Success(t *testing.T) {
	synth := &recordingSynth{audio: []byte("mp3")}
	h := newTestHandler(t, synth)

	rec := post(t, h, `{"text":"  sing along  ","voice_id":"v"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"audio_base64":"bXAz","mime":"audio/mpeg","tts_enabled":true}`, rec.Body.String())
	assert.Equal(t, "sing along", synth.text)
}

func TestHandle_Truncates(t *testing.T) {
	synth := &recordingSynth{audio: []byte("mp3")}
	h := newTestHandler(t, synth)
	h.config.CharLimit = 5

	rec := post(t, h, `{"text":"ééééééééé"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ééééé", synth.text)
}

func TestHandle_UpstreamFailure(t *testing.T) {
	h := newTestHandler(t, &recordingSynth{err: speech.ErrTTSFailed})

	rec := post(t, h, `{"text":"hello"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "tts_failed", out["error"])
	assert.NotEmpty(t, out["message"])
}

func TestHandle_UpstreamTimeout(t *testing.T) {
	h := newTestHandler(t, &recordingSynth{err: fmt.Errorf("%w: %w", speech.ErrTTSFailed, context.DeadlineExceeded)})

	rec := post(t, h, `{"text":"hello"}`)
	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.JSONEq(t, `{"error":"upstream_timeout","message":"Service 'elevenlabs' timed out."}`, rec.Body.String())
}

func TestHandle_InvalidInput(t *testing.T) {
	h := newTestHandler(t, speech.Disabled{})

	tests := []struct {
		body    string
		message string
	}{
		{`{}`, "text is required"},
		{`{"text":"   "}`, "text is required"},
		{`{"text":["a"]}`, "text must be a string"},
	}
	for _, tt := range tests {
		rec := post(t, h, tt.body)
		require.Equal(t, http.StatusBadRequest, rec.Code, tt.body)
		assert.JSONEq(t, `{"error":"invalid_input","message":"`+tt.message+`"}`, rec.Body.String())
	}
}

func TestHelp(t *testing.T) {
	h := newTestHandler(t, speech.Disabled{})

	rec := httptest.NewRecorder()
	h.Help(rec, httptest.NewRequest(http.MethodGet, Route, nil))
	assert.JSONEq(t, `{"message":"POST text to synthesize.","limit_chars":400}`, rec.Body.String())
}
