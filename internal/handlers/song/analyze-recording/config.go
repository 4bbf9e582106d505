// internal/handlers/song/analyze-recording/config.go
package analyzerecording

import "time"

type Config struct {
	MaxUploadBytes int64
	DefaultTitle   string
	DefaultTempo   float64
	Timeout        time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MaxUploadBytes: 10 << 20,
		DefaultTitle:   "Your Recording",
		DefaultTempo:   100,
		Timeout:        60 * time.Second,
	}
}
