package observability

import (
	"context"
	"log"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records domain level metrics (coaching sessions, song
// lookups, syntheses) through an OpenTelemetry meter exported to Prometheus.
// A zero value is safe to use and records nothing.
type Observability struct {
	meterProvider     *metric.MeterProvider
	meter             otelmetric.Meter
	coachingSessions  otelmetric.Int64Counter
	songLookups       otelmetric.Int64Counter
	speechSyntheses   otelmetric.Int64Counter
	operationDuration otelmetric.Float64Histogram
}

// New registers the exporter with the default Prometheus registry and
// installs the provider globally.
func New(serviceName string) *Observability {
	o := NewWithRegisterer(serviceName, promclient.DefaultRegisterer)
	if o.meterProvider != nil {
		otel.SetMeterProvider(o.meterProvider)
	}
	return o
}

// NewWithRegisterer builds an Observability whose exporter registers with reg.
func NewWithRegisterer(serviceName string, reg promclient.Registerer) *Observability {
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	meter := provider.Meter(serviceName)

	coachingSessions, _ := meter.Int64Counter(
		"coaching.sessions",
		otelmetric.WithDescription("Coaching sessions scored, by accuracy band"),
	)

	songLookups, _ := meter.Int64Counter(
		"song.lookups",
		otelmetric.WithDescription("Song lookups by source and result"),
	)

	speechSyntheses, _ := meter.Int64Counter(
		"speech.syntheses",
		otelmetric.WithDescription("Speech synthesis attempts by status"),
	)

	operationDuration, _ := meter.Float64Histogram(
		"operation.duration",
		otelmetric.WithDescription("Domain operation duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:     provider,
		meter:             meter,
		coachingSessions:  coachingSessions,
		songLookups:       songLookups,
		speechSyntheses:   speechSyntheses,
		operationDuration: operationDuration,
	}
}

// RecordCoachingSession counts a scored session in its accuracy band.
func (o *Observability) RecordCoachingSession(ctx context.Context, accuracy float64) {
	if o == nil || o.coachingSessions == nil {
		return
	}
	o.coachingSessions.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("band", AccuracyBand(accuracy)),
	))
}

func (o *Observability) RecordSongLookup(ctx context.Context, source string, found bool) {
	if o == nil || o.songLookups == nil {
		return
	}
	o.songLookups.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("source", source),
		attribute.Bool("found", found),
	))
}

func (o *Observability) RecordSpeechSynthesis(ctx context.Context, status string) {
	if o == nil || o.speechSyntheses == nil {
		return
	}
	o.speechSyntheses.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("status", status),
	))
}

func (o *Observability) RecordOperationDuration(ctx context.Context, operation string, duration time.Duration) {
	if o == nil || o.operationDuration == nil {
		return
	}
	o.operationDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("operation", operation),
	))
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}

// AccuracyBand buckets an accuracy percentage for metric attributes.
func AccuracyBand(accuracy float64) string {
	switch {
	case accuracy >= 90:
		return "excellent"
	case accuracy >= 75:
		return "good"
	case accuracy >= 60:
		return "fair"
	case accuracy >= 40:
		return "developing"
	default:
		return "beginner"
	}
}
