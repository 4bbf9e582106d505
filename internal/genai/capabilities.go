package genai

import (
	"context"
	"strings"
	"time"

	"melodicamate/internal/common/cache"
	"melodicamate/internal/common/config"
	"melodicamate/internal/common/logger"
)

// Capabilities bundles the implementations chosen at start.
type Capabilities struct {
	Coach    Coach
	Songs    SongFinder
	Analyzer RecordingAnalyzer
	Live     bool
}

// NewCapabilities picks live Gemini implementations when an API key is
// configured and the offline ones otherwise. Song lookups go through c.
func NewCapabilities(cfg config.GeminiConfig, c cache.Cache, songTTL time.Duration, log logger.Logger) Capabilities {
	if !cfg.Enabled() {
		log.Info("gemini disabled, using offline stubs", nil)
		return Capabilities{
			Coach:    StubCoach{},
			Songs:    NewCachedSongFinder(LibraryFinder{}, c, songTTL, log),
			Analyzer: DisabledAnalyzer{},
		}
	}

	client := NewGeminiClient(cfg, log)
	return Capabilities{
		Coach:    NewFallbackCoach(client, StubCoach{}, log),
		Songs:    NewCachedSongFinder(client, c, songTTL, log),
		Analyzer: client,
		Live:     true,
	}
}

// CachedSongFinder memoizes found songs by normalized query. Misses and
// errors are never stored.
type CachedSongFinder struct {
	next   SongFinder
	cache  cache.Cache
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedSongFinder(next SongFinder, c cache.Cache, ttl time.Duration, log logger.Logger) *CachedSongFinder {
	if c == nil {
		c = cache.Noop{}
	}
	return &CachedSongFinder{next: next, cache: c, ttl: ttl, logger: log}
}

func (f *CachedSongFinder) FindSong(ctx context.Context, query string) (*SongLookup, error) {
	key := cache.Key("song", NormalizeQuery(query))

	var cached SongLookup
	hit, err := f.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		f.logger.Warn("song cache read failed", map[string]interface{}{"error": err})
	}
	if hit {
		return &cached, nil
	}

	lookup, err := f.next.FindSong(ctx, query)
	if err != nil || lookup == nil || !lookup.Found {
		return lookup, err
	}

	if err := f.cache.SetJSON(ctx, key, lookup, f.ttl); err != nil {
		f.logger.Warn("song cache write failed", map[string]interface{}{"error": err})
	}
	return lookup, nil
}

// NormalizeQuery lower-cases and collapses whitespace.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
