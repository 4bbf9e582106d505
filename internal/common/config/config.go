// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	ElevenLabs ElevenLabsConfig `mapstructure:"elevenlabs"`
	TTS        TTSConfig        `mapstructure:"tts"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int   `mapstructure:"port"`
	ReadTimeout     int   `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int   `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int   `mapstructure:"shutdown_timeout"` // milliseconds
	MaxUploadBytes  int64 `mapstructure:"max_upload_bytes"`
}

// Addr returns the listen address for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// --- External APIs ---

// GeminiConfig configures the generative language API. An empty APIKey puts
// the service in offline stub mode.
type GeminiConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base_url"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxRetries int    `mapstructure:"max_retries"`
}

// Enabled reports whether live Gemini calls can be made.
func (g GeminiConfig) Enabled() bool {
	return g.APIKey != ""
}

// ElevenLabsConfig configures text-to-speech. Both APIKey and VoiceID are
// needed for live synthesis unless the caller supplies a voice per request.
type ElevenLabsConfig struct {
	APIKey    string  `mapstructure:"api_key"`
	VoiceID   string  `mapstructure:"voice_id"`
	BaseURL   string  `mapstructure:"base_url"`
	ModelID   string  `mapstructure:"model_id"`
	Stability float64 `mapstructure:"stability"`
	Timeout   int     `mapstructure:"timeout"` // milliseconds
}

// Enabled reports whether an API key is configured.
func (e ElevenLabsConfig) Enabled() bool {
	return e.APIKey != ""
}

type TTSConfig struct {
	CharLimit int `mapstructure:"char_limit"`
}

type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
	IdleTTL   int `mapstructure:"idle_ttl"` // milliseconds
}

// --- Cache ---
type CacheConfig struct {
	Redis   RedisConfig `mapstructure:"redis"`
	SongTTL int         `mapstructure:"song_ttl"` // milliseconds
	TTSTTL  int         `mapstructure:"tts_ttl"`  // milliseconds
}

// Enabled reports whether a Redis address was configured.
func (c CacheConfig) Enabled() bool {
	return c.Redis.Address != ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
