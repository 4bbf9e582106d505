// internal/handlers/speech/text-to-speech/models.go
package texttospeech

type Input struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
}

type Output struct {
	AudioBase64 *string `json:"audio_base64"`
	Mime        string  `json:"mime"`
	TTSEnabled  bool    `json:"tts_enabled"`
	Message     string  `json:"message,omitempty"`
}

type HelpOutput struct {
	Message    string `json:"message"`
	LimitChars int    `json:"limit_chars"`
}
