// internal/rates/postgres.go
package rates

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"renoquote/internal/common/logger"
	"renoquote/internal/common/metrics"
)

// PostgresProvider resolves rates from the pricing database. Rows carry the
// final value for their (key, city) pair; a city of '*' is the
// city-independent default row. Missing rows and query failures fall back to
// the static tables, so pricing keeps working when the database is down.
type PostgresProvider struct {
	db       *sql.DB
	fallback *StaticProvider
	timeout  time.Duration
	logger   logger.Logger
}

// NewPostgres wraps an open database handle. The timeout bounds every lookup
// so a slow database cannot stall quote building.
func NewPostgres(db *sql.DB, fallback *StaticProvider, timeout time.Duration, log logger.Logger) *PostgresProvider {
	return &PostgresProvider{
		db:       db,
		fallback: fallback,
		timeout:  timeout,
		logger:   log.Named("rates.postgres"),
	}
}

// MaterialCost resolves the unit cost for sku in city and scales it by qty.
// City-specific rows win over the '*' default row.
func (p *PostgresProvider) MaterialCost(ctx context.Context, sku string, qty float64, city string) float64 {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var unitCost float64
	err := p.db.QueryRowContext(ctx, queryMaterialUnitCost,
		strings.ToLower(sku), strings.ToLower(city)).Scan(&unitCost)
	if err != nil {
		p.fallbackUsed("material", err, map[string]interface{}{
			"sku":  sku,
			"city": city,
		})
		return p.fallback.MaterialCost(ctx, sku, qty, city)
	}
	return unitCost * qty
}

// HourlyRate resolves the labor rate for city.
func (p *PostgresProvider) HourlyRate(ctx context.Context, city string) float64 {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var rate float64
	err := p.db.QueryRowContext(ctx, queryHourlyRate, strings.ToLower(city)).Scan(&rate)
	if err != nil {
		p.fallbackUsed("labor", err, map[string]interface{}{
			"city": city,
		})
		return p.fallback.HourlyRate(ctx, city)
	}
	return rate
}

// VATRate resolves the VAT rate for a task in city. City-specific rows win
// over the '*' default row.
func (p *PostgresProvider) VATRate(ctx context.Context, taskName, city string) float64 {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var rate float64
	err := p.db.QueryRowContext(ctx, queryVATRate,
		strings.ToLower(taskName), strings.ToLower(city)).Scan(&rate)
	if err != nil {
		p.fallbackUsed("vat", err, map[string]interface{}{
			"task": taskName,
			"city": city,
		})
		return p.fallback.VATRate(ctx, taskName, city)
	}
	return rate
}

func (p *PostgresProvider) fallbackUsed(lookup string, err error, fields map[string]interface{}) {
	metrics.ProviderFallbacks.WithLabelValues("postgres", lookup).Inc()
	if errors.Is(err, sql.ErrNoRows) {
		p.logger.Debug("no rate row, using static fallback", fields)
		return
	}
	p.logger.WithError(err).Warn("rate query failed, using static fallback", fields)
}
