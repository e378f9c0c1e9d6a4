// cmd/quote-builder/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"renoquote/internal/common/config"
	"renoquote/internal/common/database"
	apperrors "renoquote/internal/common/errors"
	"renoquote/internal/common/logger"
	"renoquote/internal/common/observability"
	"renoquote/internal/common/validation"
	"renoquote/internal/models"
	"renoquote/internal/notify"
	"renoquote/internal/pipeline"
	"renoquote/internal/pipeline/finalize"
	"renoquote/internal/rates"
	"renoquote/pkg/catalog"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	inputPath := flag.String("input", "", "transcript file to price (default: stdin, or use -)")
	outputPath := flag.String("output", "quote.json", "quote JSON destination (use - for stdout)")
	configPath := flag.String("config", "", "config file (default: configs/config.yaml lookup)")
	catalogPath := flag.String("catalog", "", "task catalog override file")
	flag.Parse()

	if err := run(*inputPath, *outputPath, *configPath, *catalogPath); err != nil {
		fmt.Fprintf(os.Stderr, "quote-builder: [%s] %v\n", apperrors.GetCode(err), err)
		os.Exit(apperrors.ExitCode(err))
	}
}

func run(inputPath, outputPath, configPath, catalogPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New("quote-builder")
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transcript, err := readTranscript(inputPath)
	if err != nil {
		return err
	}

	cat, err := loadCatalog(catalogPath)
	if err != nil {
		return err
	}

	providers, cleanup, err := buildProviders(ctx, cfg, zapLog, log)
	if err != nil {
		return err
	}
	defer cleanup()

	finalizeCfg := &finalize.Config{
		DefaultMarginPct: cfg.Pricing.DefaultMarginPct,
		MinMarginPct:     cfg.Pricing.MinMarginPct,
	}

	engine := pipeline.NewEngine(cat, providers, finalizeCfg, obs, log)

	quote, err := engine.BuildQuote(ctx, transcript)
	if err != nil {
		return err
	}

	raw, err := marshalQuote(quote, cfg.Output.Compact)
	if err != nil {
		return err
	}

	if !cfg.Output.SkipValidation {
		if err := validation.ValidateQuoteDocument(raw); err != nil {
			return apperrors.NewSchemaValidationError(err.Error())
		}
	}

	if err := writeQuote(outputPath, raw); err != nil {
		return err
	}

	sendReviewAlert(ctx, cfg, quote, log)

	if outputPath != "-" {
		fmt.Printf("Quote %s written to %s (total %.2f %s)\n",
			quote.QuoteID, outputPath, quote.Summary.TotalPrice, quote.Currency)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			return nil, apperrors.NewConfigInvalidError(err)
		}
		return cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, apperrors.NewConfigInvalidError(err)
	}
	return cfg, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, apperrors.NewCatalogInvalidError(path, err)
	}
	return cat, nil
}

// buildProviders assembles the rate provider chain. The static tables are
// always the terminal fallback; postgres replaces them when enabled, the
// elastic catalog overrides material lookups, and the redis cache wraps
// whatever chain came out below it.
func buildProviders(ctx context.Context, cfg *config.Config, zapLog *zap.Logger, log logger.Logger) (rates.Providers, func(), error) {
	static := rates.NewStatic(cfg.Rates, cfg.Pricing.DefaultVATRate, log)
	providers := rates.Providers{Materials: static, Labor: static, VAT: static}

	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Rates.Postgres.Enabled {
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			cleanup()
			return rates.Providers{}, nil, apperrors.NewProviderUnavailableError("postgres", err)
		}
		closers = append(closers, pg.Close)
		zapLog.Info("PostgreSQL connected successfully")

		pgProvider := rates.NewPostgres(pg.DB, static, config.GetDuration(cfg.Rates.Postgres.Timeout), log)
		providers = rates.Providers{Materials: pgProvider, Labor: pgProvider, VAT: pgProvider}
	}

	if cfg.Rates.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err := retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 5, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			cleanup()
			return rates.Providers{}, nil, apperrors.NewProviderUnavailableError("elasticsearch", err)
		}
		zapLog.Info("Elasticsearch connected successfully")

		providers.Materials = rates.NewElastic(
			esClient.Client,
			providers.Materials,
			cfg.Rates.Elasticsearch.Index,
			config.GetDuration(cfg.Rates.Elasticsearch.Timeout),
			log,
		)
	}

	if cfg.Rates.RedisCache.Enabled {
		var redisClient *database.RedisClient
		err := retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			cleanup()
			return rates.Providers{}, nil, apperrors.NewProviderUnavailableError("redis", err)
		}
		closers = append(closers, redisClient.Close)
		zapLog.Info("Redis connected successfully")

		cached := rates.NewCached(
			redisClient.Client,
			providers,
			config.GetDuration(cfg.Rates.RedisCache.TTL),
			cfg.Rates.RedisCache.KeyPrefix,
			log,
		)
		providers = rates.Providers{Materials: cached, Labor: cached, VAT: cached}
	}

	return providers, cleanup, nil
}

func readTranscript(path string) (string, error) {
	var raw []byte
	var err error
	if path == "" || path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return "", apperrors.NewTranscriptReadError(path, err)
	}
	return string(raw), nil
}

func marshalQuote(q *models.Quote, compact bool) ([]byte, error) {
	if compact {
		return json.Marshal(q)
	}
	return json.MarshalIndent(q, "", "  ")
}

func writeQuote(path string, raw []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(append(raw, '\n'))
		return err
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.NewQuoteWriteError(path, err)
		}
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return apperrors.NewQuoteWriteError(path, err)
	}
	return nil
}

// sendReviewAlert fires the reviewer notification when the quote warrants
// one. Alert problems are logged and swallowed; the quote is already on disk.
func sendReviewAlert(ctx context.Context, cfg *config.Config, q *models.Quote, log logger.Logger) {
	if !cfg.Notify.Enabled {
		return
	}
	if !q.Summary.SuspiciousInput && !cfg.Notify.AlwaysAlert {
		return
	}

	notifier, err := notify.New(notify.FromConfig(cfg.Notify), log)
	if err != nil {
		log.WithError(err).Warn("review notifier unavailable", map[string]interface{}{
			"quoteId": q.QuoteID,
		})
		return
	}
	notifier.SendReviewAlert(ctx, q)
}
