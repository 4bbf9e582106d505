// Package speech turns coaching text into audio.
package speech

import (
	"context"
	"errors"
	"time"

	"melodicamate/internal/common/cache"
	"melodicamate/internal/common/config"
	"melodicamate/internal/common/logger"
)

const MimeType = "audio/mpeg"

var (
	// ErrTTSDisabled means no API key or no voice is available. Callers
	// answer with no audio instead of an error.
	ErrTTSDisabled = errors.New("tts_disabled")
	ErrTTSFailed   = errors.New("tts_failed")
)

// Synthesizer produces MPEG audio for text. An empty voiceID selects the
// configured default voice.
type Synthesizer interface {
	Enabled() bool
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// Disabled is used when no ElevenLabs key is configured. It never makes a call.
type Disabled struct{}

func (Disabled) Enabled() bool { return false }

func (Disabled) Synthesize(context.Context, string, string) ([]byte, error) {
	return nil, ErrTTSDisabled
}

// New returns the live ElevenLabs synthesizer behind a cache when a key is
// configured, and Disabled otherwise.
func New(cfg config.ElevenLabsConfig, charLimit int, c cache.Cache, ttl time.Duration, log logger.Logger) Synthesizer {
	if !cfg.Enabled() {
		log.Info("elevenlabs disabled, text-to-speech returns no audio", nil)
		return Disabled{}
	}
	if cfg.VoiceID == "" {
		log.Warn("no default voice configured, requests must supply voice_id", nil)
	}
	client := NewElevenLabsClient(cfg, charLimit, log)
	return NewCachedSynthesizer(client, cfg.VoiceID, c, ttl, log)
}

// Truncate cuts text to at most limit characters. A limit <= 0 leaves the
// text unchanged.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
