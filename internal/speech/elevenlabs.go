package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"melodicamate/internal/common/config"
	"melodicamate/internal/common/httputil"
	"melodicamate/internal/common/logger"
	"melodicamate/internal/common/metrics"
)

const serviceName = "elevenlabs"

// ElevenLabsClient calls the text-to-speech REST endpoint.
type ElevenLabsClient struct {
	cfg       config.ElevenLabsConfig
	charLimit int
	client    *httputil.Client
	logger    logger.Logger
}

func NewElevenLabsClient(cfg config.ElevenLabsConfig, charLimit int, log logger.Logger) *ElevenLabsClient {
	return &ElevenLabsClient{
		cfg:       cfg,
		charLimit: charLimit,
		client:    httputil.NewClient(0),
		logger:    log.WithFields(map[string]interface{}{"service": serviceName}),
	}
}

func (c *ElevenLabsClient) Enabled() bool {
	return c.cfg.Enabled()
}

type voiceSettings struct {
	Stability float64 `json:"stability"`
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

func (c *ElevenLabsClient) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	voice := voiceID
	if voice == "" {
		voice = c.cfg.VoiceID
	}
	if !c.cfg.Enabled() || voice == "" {
		return nil, ErrTTSDisabled
	}

	text = Truncate(text, c.charLimit)
	body, err := json.Marshal(synthesisRequest{
		Text:          text,
		ModelID:       c.cfg.ModelID,
		VoiceSettings: voiceSettings{Stability: c.cfg.Stability},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTTSFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, config.GetDuration(c.cfg.Timeout))
	defer cancel()

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s", c.cfg.BaseURL, url.PathEscape(voice))
	start := time.Now()

	resp, err := c.client.DoWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("xi-api-key", c.cfg.APIKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", MimeType)
		return req, nil
	})
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = metrics.OutcomeTimeout
		}
		metrics.RecordUpstream(serviceName, outcome)
		c.logger.Error("text-to-speech request failed", map[string]interface{}{
			"voiceId": voice,
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("%w: %w", ErrTTSFailed, err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordUpstream(serviceName, metrics.OutcomeError)
		return nil, fmt.Errorf("%w: read body: %v", ErrTTSFailed, err)
	}
	if len(audio) == 0 {
		metrics.RecordUpstream(serviceName, metrics.OutcomeError)
		return nil, fmt.Errorf("%w: empty audio", ErrTTSFailed)
	}
	metrics.RecordUpstream(serviceName, metrics.OutcomeSuccess)

	c.logger.Debug("speech synthesized", map[string]interface{}{
		"voiceId":    voice,
		"chars":      len([]rune(text)),
		"bytes":      len(audio),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return audio, nil
}
