package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"melodicamate/internal/common/config"
	"melodicamate/internal/common/httputil"
	"melodicamate/internal/common/logger"
	"melodicamate/internal/common/metrics"
)

const serviceName = "gemini"

// GeminiClient talks to the generateContent REST endpoint. It implements
// Coach, SongFinder and RecordingAnalyzer.
type GeminiClient struct {
	cfg    config.GeminiConfig
	client *httputil.Client
	logger logger.Logger
}

func NewGeminiClient(cfg config.GeminiConfig, log logger.Logger) *GeminiClient {
	return &GeminiClient{
		cfg:    cfg,
		client: httputil.NewClient(cfg.MaxRetries),
		logger: log.WithFields(map[string]interface{}{
			"service": serviceName,
			"model":   cfg.Model,
		}),
	}
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// generate sends one prompt and returns the concatenated text of the first
// candidate.
func (g *GeminiClient) generate(ctx context.Context, parts ...part) (string, error) {
	body, err := json.Marshal(generateRequest{Contents: []content{{Role: "user", Parts: parts}}})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeminiRequestFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, config.GetDuration(g.cfg.Timeout))
	defer cancel()

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.cfg.BaseURL, url.PathEscape(g.cfg.Model))
	start := time.Now()

	resp, err := g.client.DoWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", g.cfg.APIKey)
		return req, nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			metrics.RecordUpstream(serviceName, metrics.OutcomeTimeout)
			return "", ErrGeminiTimeout
		}
		metrics.RecordUpstream(serviceName, metrics.OutcomeError)
		return "", fmt.Errorf("%w: %v", ErrGeminiRequestFailed, err)
	}
	defer resp.Body.Close()

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		metrics.RecordUpstream(serviceName, metrics.OutcomeError)
		return "", fmt.Errorf("%w: decode error: %v", ErrGeminiRequestFailed, err)
	}
	metrics.RecordUpstream(serviceName, metrics.OutcomeSuccess)

	var text strings.Builder
	if len(decoded.Candidates) > 0 {
		for _, p := range decoded.Candidates[0].Content.Parts {
			text.WriteString(p.Text)
		}
	}

	g.logger.Debug("gemini call completed", map[string]interface{}{
		"durationMs": time.Since(start).Milliseconds(),
		"chars":      text.Len(),
	})

	out := strings.TrimSpace(text.String())
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// Coach asks for short spoken feedback.
func (g *GeminiClient) Coach(ctx context.Context, req CoachingRequest) (string, error) {
	text, err := g.generate(ctx, part{Text: buildCoachingPrompt(req)})
	if err != nil {
		return "", err
	}
	coaching := cleanCoachingText(text)
	if coaching == "" {
		return "", ErrEmptyResponse
	}
	return coaching, nil
}

// FindSong asks the model to transcribe a song into alternating lyric and
// number lines.
func (g *GeminiClient) FindSong(ctx context.Context, query string) (*SongLookup, error) {
	text, err := g.generate(ctx, part{Text: buildSongPrompt(query)})
	if err != nil {
		return nil, err
	}

	lookup, err := parseSongPayload(text)
	if err != nil {
		g.logger.Error("gemini returned invalid JSON", map[string]interface{}{
			"query": query,
			"error": err,
		})
		return nil, err
	}

	if lookup.Confidence == "low" {
		g.logger.Warn("low confidence transcription", map[string]interface{}{
			"query": query,
			"notes": lookup.Notes,
		})
	}
	if len(lookup.Numbers) < shortMelodyThreshold {
		g.logger.Warn("suspiciously short melody", map[string]interface{}{
			"query":   query,
			"numbers": len(lookup.Numbers),
		})
	}
	return lookup, nil
}

// AnalyzeRecording sends the audio inline with a transcription prompt.
func (g *GeminiClient) AnalyzeRecording(ctx context.Context, audio []byte, mimeType, title string) (*RecordingAnalysis, error) {
	if mimeType == "" {
		mimeType = "audio/wav"
	}
	text, err := g.generate(ctx,
		part{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(audio)}},
		part{Text: buildRecordingPrompt(title)},
	)
	if err != nil {
		return nil, err
	}
	return parseRecordingPayload(text)
}
