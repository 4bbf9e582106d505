// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envBindings maps config keys to the environment variables the deployment
// documents. Keys not listed here still pick up their automatic name
// (gemini.api_key -> GEMINI_API_KEY).
var envBindings = map[string]string{
	"server.port":           "PORT",
	"tts.char_limit":        "APP_TTS_CHAR_LIMIT",
	"rate_limit.per_minute": "RATE_LIMIT_PER_MIN",
	"cache.redis.address":   "REDIS_ADDRESS",
	"cache.redis.password":  "REDIS_PASSWORD",
	"logging.level":         "LOG_LEVEL",
	"logging.format":        "LOG_FORMAT",
	"app.environment":       "APP_ENVIRONMENT",
}

// Load reads configs/config.yaml (optional), the per-environment overlay,
// the .env file and the process environment, in increasing precedence.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return build(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return build(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	return v
}

func build(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "melodicamate")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30000)
	v.SetDefault("server.write_timeout", 60000)
	v.SetDefault("server.shutdown_timeout", 30000)
	v.SetDefault("server.max_upload_bytes", 10<<20)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.timeout", 45000)
	v.SetDefault("gemini.max_retries", 1)

	v.SetDefault("elevenlabs.api_key", "")
	v.SetDefault("elevenlabs.voice_id", "")
	v.SetDefault("elevenlabs.base_url", "https://api.elevenlabs.io")
	v.SetDefault("elevenlabs.model_id", "eleven_monolingual_v1")
	v.SetDefault("elevenlabs.stability", 0.5)
	v.SetDefault("elevenlabs.timeout", 15000)

	v.SetDefault("tts.char_limit", 400)

	v.SetDefault("rate_limit.per_minute", 120)
	v.SetDefault("rate_limit.idle_ttl", 600000)

	v.SetDefault("cache.redis.address", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.song_ttl", 86400000)
	v.SetDefault("cache.tts_ttl", 3600000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// loadEnvFile loads the first .env found walking up from the working
// directory to the module root. A missing file is not an error.
func loadEnvFile() string {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders left in YAML values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

func applyDefaults(cfg *Config) {
	cfg.Gemini.BaseURL = strings.TrimRight(cfg.Gemini.BaseURL, "/")
	cfg.ElevenLabs.BaseURL = strings.TrimRight(cfg.ElevenLabs.BaseURL, "/")
	cfg.Gemini.APIKey = strings.TrimSpace(cfg.Gemini.APIKey)
	cfg.ElevenLabs.APIKey = strings.TrimSpace(cfg.ElevenLabs.APIKey)
	cfg.ElevenLabs.VoiceID = strings.TrimSpace(cfg.ElevenLabs.VoiceID)

	if cfg.Gemini.MaxRetries < 0 {
		cfg.Gemini.MaxRetries = 0
	}
	if cfg.Logging.Format != "console" {
		cfg.Logging.Format = "json"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.TTS.CharLimit <= 0 {
		return fmt.Errorf("tts.char_limit must be positive, got %d", cfg.TTS.CharLimit)
	}
	if cfg.RateLimit.PerMinute <= 0 {
		return fmt.Errorf("rate_limit.per_minute must be positive, got %d", cfg.RateLimit.PerMinute)
	}
	if cfg.Gemini.Timeout <= 0 || cfg.ElevenLabs.Timeout <= 0 {
		return fmt.Errorf("upstream timeouts must be positive")
	}
	if cfg.Gemini.Model == "" {
		return fmt.Errorf("gemini.model is required")
	}
	return nil
}
