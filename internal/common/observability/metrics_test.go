package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservability_ExportsCounters(t *testing.T) {
	reg := promclient.NewRegistry()
	o := NewWithRegisterer("melodicamate-test", reg)
	t.Cleanup(o.Shutdown)

	ctx := context.Background()
	o.RecordCoachingSession(ctx, 92)
	o.RecordSongLookup(ctx, "library", true)
	o.RecordSpeechSynthesis(ctx, "disabled")
	o.RecordOperationDuration(ctx, "coach", 15*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "coaching_sessions")
	assert.Contains(t, joined, "song_lookups")
	assert.Contains(t, joined, "speech_syntheses")
	assert.Contains(t, joined, "operation_duration")
}

func TestObservability_NilSafe(t *testing.T) {
	var o *Observability
	ctx := context.Background()
	assert.NotPanics(t, func() {
		o.RecordCoachingSession(ctx, 50)
		o.RecordSongLookup(ctx, "gemini", false)
		o.RecordSpeechSynthesis(ctx, "ok")
		o.RecordOperationDuration(ctx, "tts", time.Second)
		o.Shutdown()
	})

	empty := &Observability{}
	assert.NotPanics(t, func() { empty.RecordCoachingSession(ctx, 10) })
}

func TestAccuracyBand(t *testing.T) {
	assert.Equal(t, "excellent", AccuracyBand(90))
	assert.Equal(t, "good", AccuracyBand(75))
	assert.Equal(t, "fair", AccuracyBand(60))
	assert.Equal(t, "developing", AccuracyBand(40))
	assert.Equal(t, "beginner", AccuracyBand(39.99))
}
