package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	quoteCounter  otelmetric.Int64Counter
	stageDuration otelmetric.Float64Histogram
	taskCounter   otelmetric.Int64Counter
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	quoteCounter, _ := meter.Int64Counter(
		"quotes.built",
		otelmetric.WithDescription("Number of quotes built"),
	)

	stageDuration, _ := meter.Float64Histogram(
		"pipeline.stage.duration",
		otelmetric.WithDescription("Pipeline stage duration"),
		otelmetric.WithUnit("ms"),
	)

	taskCounter, _ := meter.Int64Counter(
		"tasks.priced",
		otelmetric.WithDescription("Number of tasks priced"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		quoteCounter:  quoteCounter,
		stageDuration: stageDuration,
		taskCounter:   taskCounter,
	}
}

func (o *Observability) RecordQuoteBuilt(ctx context.Context, suspicious bool) {
	if o.quoteCounter != nil {
		o.quoteCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.Bool("suspicious", suspicious),
		))
	}
}

func (o *Observability) RecordStageDuration(ctx context.Context, stage string, duration time.Duration) {
	if o.stageDuration != nil {
		o.stageDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("stage", stage),
		))
	}
}

func (o *Observability) RecordTaskPriced(ctx context.Context, category string) {
	if o.taskCounter != nil {
		o.taskCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("category", category),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
