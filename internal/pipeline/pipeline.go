// internal/pipeline/pipeline.go

// Package pipeline wires the five quote-building stages into one forward
// pass: interpret, then estimate, finalize, and score per task, then
// aggregate. No stage re-enters an earlier one, and no stage fails on
// transcript content; the engine always hands back a complete quote.
package pipeline

import (
	"context"
	"strconv"
	"time"

	"renoquote/internal/common/logger"
	"renoquote/internal/common/metrics"
	"renoquote/internal/common/observability"
	"renoquote/internal/models"
	"renoquote/internal/pipeline/aggregate"
	"renoquote/internal/pipeline/confidence"
	"renoquote/internal/pipeline/estimate"
	"renoquote/internal/pipeline/finalize"
	"renoquote/internal/pipeline/interpret"
	"renoquote/internal/rates"
	"renoquote/pkg/catalog"
)

// FallbackLocation labels quotes whose transcript named no known city. Rate
// lookups for it resolve to base rates.
const FallbackLocation = "Generic"

type Engine struct {
	interpreter *interpret.Handler
	estimator   *estimate.Handler
	finalizer   *finalize.Handler
	scorer      *confidence.Handler
	aggregator  *aggregate.Handler
	obs         *observability.Observability
	logger      logger.Logger
}

// NewEngine builds the stage handlers around a shared catalog and provider
// set. The finalizer config carries the margin constants from app config.
func NewEngine(cat *catalog.Catalog, providers rates.Providers, finalizeCfg *finalize.Config, obs *observability.Observability, log logger.Logger) *Engine {
	return &Engine{
		interpreter: interpret.NewHandler(interpret.LoadConfig(), cat, log),
		estimator:   estimate.NewHandler(estimate.LoadConfig(), cat, providers, log),
		finalizer:   finalize.NewHandler(finalizeCfg, providers.VAT, log),
		scorer:      confidence.NewHandler(confidence.LoadConfig(), cat, log),
		aggregator:  aggregate.NewHandler(aggregate.LoadConfig(), log),
		obs:         obs,
		logger:      log.Named("pipeline"),
	}
}

// BuildQuote runs the full pipeline over one transcript. Each call produces
// an independent quote with a fresh identifier; interpretation gaps lower
// confidence instead of failing the run.
func (e *Engine) BuildQuote(ctx context.Context, transcript string) (*models.Quote, error) {
	interpretOut, err := e.runInterpret(ctx, transcript)
	if err != nil {
		return nil, err
	}
	intent := interpretOut.Intent

	cityKnown := intent.City != nil
	location := FallbackLocation
	if cityKnown {
		location = *intent.City
	}

	results := make([]aggregate.TaskResult, 0, len(intent.Tasks))
	for _, task := range intent.Tasks {
		estimateOut, err := e.runEstimate(ctx, task, location)
		if err != nil {
			return nil, err
		}
		est := estimateOut.Estimate

		finalizeOut, err := e.runFinalize(ctx, est.LaborCost+est.MaterialCost, task.Name, location)
		if err != nil {
			return nil, err
		}

		scoreOut, err := e.runScore(ctx, task, cityKnown)
		if err != nil {
			return nil, err
		}

		metrics.TasksPriced.WithLabelValues(string(task.Category)).Inc()
		e.obs.RecordTaskPriced(ctx, string(task.Category))

		results = append(results, aggregate.TaskResult{
			Intent:     task,
			Estimate:   est,
			MarginPct:  finalizeOut.MarginPct,
			PriceExVAT: finalizeOut.PriceExVAT,
			VATRate:    finalizeOut.VATRate,
			VATAmount:  finalizeOut.VATAmount,
			TotalPrice: finalizeOut.TotalPrice,
			Confidence: scoreOut.Confidence,
		})
	}

	aggregateOut, err := e.runAggregate(ctx, transcript, intent.Zone, location, results)
	if err != nil {
		return nil, err
	}
	quote := aggregateOut.Quote

	suspicious := quote.Summary.SuspiciousInput
	metrics.QuotesBuilt.WithLabelValues(strconv.FormatBool(suspicious)).Inc()
	if suspicious {
		metrics.SuspiciousQuotes.Inc()
	}
	e.obs.RecordQuoteBuilt(ctx, suspicious)

	e.logger.Info("quote built", map[string]interface{}{
		"quoteId":    quote.QuoteID,
		"location":   location,
		"taskCount":  len(results),
		"totalPrice": quote.Summary.TotalPrice,
		"suspicious": suspicious,
	})
	return quote, nil
}

func (e *Engine) runInterpret(ctx context.Context, transcript string) (*interpret.Output, error) {
	defer e.observeStage(ctx, interpret.StageName, time.Now())
	return e.interpreter.Execute(ctx, &interpret.Input{Transcript: transcript})
}

func (e *Engine) runEstimate(ctx context.Context, task models.TaskIntent, city string) (*estimate.Output, error) {
	defer e.observeStage(ctx, estimate.StageName, time.Now())
	return e.estimator.Execute(ctx, &estimate.Input{Task: task, City: city})
}

func (e *Engine) runFinalize(ctx context.Context, baseCost float64, taskName, city string) (*finalize.Output, error) {
	defer e.observeStage(ctx, finalize.StageName, time.Now())
	return e.finalizer.Execute(ctx, &finalize.Input{BaseCost: baseCost, TaskName: taskName, City: city})
}

func (e *Engine) runScore(ctx context.Context, task models.TaskIntent, cityKnown bool) (*confidence.Output, error) {
	defer e.observeStage(ctx, confidence.StageName, time.Now())
	return e.scorer.Execute(ctx, &confidence.Input{Task: task, CityKnown: cityKnown})
}

func (e *Engine) runAggregate(ctx context.Context, transcript, zone, location string, tasks []aggregate.TaskResult) (*aggregate.Output, error) {
	defer e.observeStage(ctx, aggregate.StageName, time.Now())
	return e.aggregator.Execute(ctx, &aggregate.Input{
		Transcript: transcript,
		Zone:       zone,
		Location:   location,
		Tasks:      tasks,
	})
}

func (e *Engine) observeStage(ctx context.Context, stage string, start time.Time) {
	elapsed := time.Since(start)
	metrics.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	e.obs.RecordStageDuration(ctx, stage, elapsed)
}
