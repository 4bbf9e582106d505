package speech

import (
	"context"
	"time"

	"melodicamate/internal/common/cache"
	"melodicamate/internal/common/logger"
)

// CachedSynthesizer keeps recent audio keyed by voice and text.
type CachedSynthesizer struct {
	next         Synthesizer
	defaultVoice string
	cache        cache.Cache
	ttl          time.Duration
	logger       logger.Logger
}

func NewCachedSynthesizer(next Synthesizer, defaultVoice string, c cache.Cache, ttl time.Duration, log logger.Logger) *CachedSynthesizer {
	if c == nil {
		c = cache.Noop{}
	}
	return &CachedSynthesizer{next: next, defaultVoice: defaultVoice, cache: c, ttl: ttl, logger: log}
}

func (s *CachedSynthesizer) Enabled() bool { return s.next.Enabled() }

func (s *CachedSynthesizer) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	voice := voiceID
	if voice == "" {
		voice = s.defaultVoice
	}
	key := cache.Key("tts", voice, text)

	var audio []byte
	hit, err := s.cache.GetJSON(ctx, key, &audio)
	if err != nil {
		s.logger.Warn("tts cache read failed", map[string]interface{}{"error": err})
	}
	if hit && len(audio) > 0 {
		return audio, nil
	}

	audio, err = s.next.Synthesize(ctx, text, voiceID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, key, audio, s.ttl); err != nil {
		s.logger.Warn("tts cache write failed", map[string]interface{}{"error": err})
	}
	return audio, nil
}
