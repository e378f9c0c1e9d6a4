// internal/rates/static.go
package rates

import (
	"context"
	"strings"

	"renoquote/internal/common/config"
	"renoquote/internal/common/logger"
)

// StaticProvider serves rates from the in-memory tables loaded from config.
// It is the terminal fallback of every provider chain and the default
// backend when no service is configured.
type StaticProvider struct {
	baseHourly   float64
	materialBase map[string]float64
	cityMult     map[string]float64
	vatOverrides map[string]float64
	defaultVAT   float64
	logger       logger.Logger
}

// NewStatic builds a provider from the configured tables. Table keys are
// stored lowercase; lookups are case-insensitive.
func NewStatic(cfg config.RatesConfig, defaultVAT float64, log logger.Logger) *StaticProvider {
	return &StaticProvider{
		baseHourly:   cfg.BaseHourlyRate,
		materialBase: lowerKeys(cfg.MaterialBaseCosts),
		cityMult:     lowerKeys(cfg.CityMultipliers),
		vatOverrides: lowerKeys(cfg.VATOverrides),
		defaultVAT:   defaultVAT,
		logger:       log.Named("rates.static"),
	}
}

// MaterialCost is base unit cost x qty x city multiplier. Unknown SKUs cost
// nothing; the catalog normally guarantees every SKU has a table entry, so a
// miss means a custom catalog outran the rate tables.
func (p *StaticProvider) MaterialCost(ctx context.Context, sku string, qty float64, city string) float64 {
	base, ok := p.materialBase[strings.ToLower(sku)]
	if !ok {
		p.logger.Warn("unknown material sku, costing zero", map[string]interface{}{
			"sku":  sku,
			"city": city,
		})
		return 0.0
	}
	return base * qty * p.cityMultiplier(city)
}

// HourlyRate is the base rate scaled by the city multiplier. Unknown cities
// get the base rate unchanged.
func (p *StaticProvider) HourlyRate(ctx context.Context, city string) float64 {
	return p.baseHourly * p.cityMultiplier(city)
}

// VATRate returns a per-task override when configured, else the default.
func (p *StaticProvider) VATRate(ctx context.Context, taskName, city string) float64 {
	if rate, ok := p.vatOverrides[strings.ToLower(taskName)]; ok {
		return rate
	}
	return p.defaultVAT
}

func (p *StaticProvider) cityMultiplier(city string) float64 {
	if m, ok := p.cityMult[strings.ToLower(city)]; ok {
		return m
	}
	return 1.0
}

func lowerKeys(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = v
	}
	return out
}
