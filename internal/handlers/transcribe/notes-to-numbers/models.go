// internal/handlers/transcribe/notes-to-numbers/models.go
package notestonumbers

import "melodicamate/internal/music"

type Input struct {
	KeyTonic       string       `json:"key_tonic"`
	Mode           string       `json:"mode"`
	AccidentalPref string       `json:"accidental_pref"`
	Notes          []music.Note `json:"notes"`
}

type Output struct {
	Numbers   []string `json:"numbers"`
	NoteNames []string `json:"note_names"`
}

type HelpOutput struct {
	Message string `json:"message"`
	Example Input  `json:"example"`
}
