// internal/handlers/coach/coach-exercise/config.go
package coachexercise

type Config struct {
	DefaultTonic string
	DefaultMode  string
	DefaultTitle string
	TTSCharLimit int
}

func LoadConfig() *Config {
	return &Config{
		DefaultTonic: "C",
		DefaultMode:  "major",
		DefaultTitle: "this piece",
		TTSCharLimit: 400,
	}
}
