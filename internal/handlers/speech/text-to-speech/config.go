// internal/handlers/speech/text-to-speech/config.go
package texttospeech

import "time"

type Config struct {
	CharLimit int
	Timeout   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		CharLimit: 400,
		Timeout:   20 * time.Second,
	}
}
