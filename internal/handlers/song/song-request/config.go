// internal/handlers/song/song-request/config.go
package songrequest

import "time"

type Config struct {
	DefaultKey  string
	DefaultMode string
	Timeout     time.Duration
}

func LoadConfig() *Config {
	return &Config{
		DefaultKey:  "C",
		DefaultMode: "major",
		Timeout:     60 * time.Second,
	}
}
