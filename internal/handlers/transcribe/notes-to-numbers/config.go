// internal/handlers/transcribe/notes-to-numbers/config.go
package notestonumbers

type Config struct {
	DefaultTonic          string
	DefaultMode           string
	DefaultAccidentalPref string
}

func LoadConfig() *Config {
	return &Config{
		DefaultTonic:          "C",
		DefaultMode:           "major",
		DefaultAccidentalPref: "sharps",
	}
}
