package genai

import (
	"fmt"
	"strings"
)

func quoteWords(words []string, limit int) []string {
	out := []string{}
	for _, w := range words {
		if len(out) == limit {
			break
		}
		w = strings.Trim(strings.TrimSpace(w), `'"`)
		if w != "" {
			out = append(out, "'"+w+"'")
		}
	}
	return out
}

func buildCoachingPrompt(req CoachingRequest) string {
	var parts []string

	parts = append(parts, "You are a warm, encouraging music teacher having a conversation with a student.")
	parts = append(parts, "Give friendly, practical advice focused on the musical experience.")
	parts = append(parts, "Keep your response conversational: 2-3 short sentences, under 280 characters total.")

	parts = append(parts, "\nRULES:")
	parts = append(parts, "- Talk about the song, the melody, the feel - NOT technical note names or numbers")
	parts = append(parts, "- Reference the lyrics or song sections when giving feedback")
	parts = append(parts, "- Use musical language: 'that upward jump', 'the chorus melody', 'where it goes higher'")
	parts = append(parts, "- Be encouraging but honest - suggest one concrete thing to work on")
	parts = append(parts, "- Never mention MIDI numbers, note names like 'B flat', or scale degrees")
	parts = append(parts, "- Sound like a human teacher, not a robot analyzer")

	parts = append(parts, fmt.Sprintf("\nSong: '%s'", req.Title))
	parts = append(parts, fmt.Sprintf("Performance accuracy: %.0f%%", req.Accuracy))

	if req.Accuracy < 95 {
		if spots := quoteWords(req.LyricContext, 2); len(spots) > 0 {
			parts = append(parts, fmt.Sprintf("Trouble spots near: %s", strings.Join(spots, ", ")))
		}
	}

	switch {
	case req.Accuracy >= 90:
		parts = append(parts, "Performance was very strong, just minor polish needed.")
	case req.Accuracy >= 70:
		parts = append(parts, "Decent attempt with some pitch challenges to work on.")
	case req.Accuracy >= 50:
		parts = append(parts, "Several parts need work - focus on the melody shape and flow.")
	default:
		parts = append(parts, "Struggling with pitch accuracy - may need to slow down.")
	}

	parts = append(parts, "\nEXAMPLE GOOD RESPONSES:")
	parts = append(parts, "- 'Nice work on Twinkle Twinkle! The opening was spot-on. Try smoothing out that upward jump in the second line.'")
	parts = append(parts, "- 'You've got the rhythm of Amazing Grace down! Focus on the melody when you sing 'how sweet' - it climbs up then comes back down.'")
	parts = append(parts, "\nEXAMPLE BAD RESPONSES (never do this):")
	parts = append(parts, "- 'You played B flat instead of B natural at measure 3'")
	parts = append(parts, "- 'Scale degree 5 was incorrect, should be degree 6'")

	parts = append(parts, "\nNow give warm, practical feedback about this performance:")

	return strings.Join(parts, "\n")
}

func buildSongPrompt(query string) string {
	var parts []string

	parts = append(parts, "You are a professional music transcription assistant with perfect pitch recall.")
	parts = append(parts, "Given a song title, return the EXACT melody as scale-degree numbers relative to the tonic.")

	parts = append(parts, "\nCRITICAL REQUIREMENTS:")
	parts = append(parts, "1. Return the ACTUAL melody notes, not an approximation.")
	parts = append(parts, "2. Scale degrees: 1=tonic, 2=supertonic, 3=mediant, 4=subdominant, 5=dominant, 6=submediant, 7=leading tone")
	parts = append(parts, "3. Use 'b' for flats (e.g., b3, b7) and '#' for sharps (e.g., #4) when needed")
	parts = append(parts, "4. Alternate lines: Line 1=Lyrics, Line 2=Numbers (one number per syllable), Line 3=Lyrics, Line 4=Numbers")
	parts = append(parts, "5. Match rhythm: use dots (...) for held notes, dashes (---) for rests")
	parts = append(parts, "6. One number per sung syllable")

	parts = append(parts, "\nResponse format (valid JSON only):")
	parts = append(parts, `{"found": true, "confidence": "high|medium|low", "key": "C", "mode": "major", "time_signature": "4/4", "tempo_bpm": 90,`)
	parts = append(parts, ` "lines": ["Lyric line with syllables", "1 1 5 5 6 6 5", "Next lyric line", "1 2 3 4 5"],`)
	parts = append(parts, ` "notes": "Context about transcription accuracy and any uncertainties"}`)

	parts = append(parts, "\nIf you're not confident about the exact melody, set confidence to 'low' and explain in 'notes'. Do not guess.")
	parts = append(parts, fmt.Sprintf("\nTranscribe this song accurately: %s", query))

	return strings.Join(parts, "\n")
}

func buildRecordingPrompt(title string) string {
	var parts []string

	parts = append(parts, "You are a music transcription assistant. The attached audio is a person singing or humming a melody.")
	parts = append(parts, fmt.Sprintf("The recording is titled: %s", title))
	parts = append(parts, "Identify the key and mode, then transcribe the sung melody as scale-degree numbers relative to the tonic.")
	parts = append(parts, "Use 'b' for flats and '#' for sharps (e.g., b3, #4). One number per sung note.")

	parts = append(parts, "\nResponse format (valid JSON only):")
	parts = append(parts, `{"found": true, "key": "C", "mode": "major", "numbers": ["1", "2", "3"], "tempo_bpm": 100, "confidence": "high|medium|low", "notes": "anything uncertain"}`)
	parts = append(parts, "If no clear melody can be heard, return {\"found\": false, \"notes\": \"reason\"}.")

	return strings.Join(parts, "\n")
}
