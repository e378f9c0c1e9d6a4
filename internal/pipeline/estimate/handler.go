// internal/pipeline/estimate/handler.go
package estimate

import (
	"context"
	"errors"
	"math"

	"renoquote/internal/common/logger"
	"renoquote/internal/models"
	"renoquote/internal/rates"
	"renoquote/pkg/catalog"
)

const (
	StageName = "estimate"
)

var (
	ErrNilInput = errors.New("input cannot be nil")
)

type Handler struct {
	config    *Config
	catalog   *catalog.Catalog
	providers rates.Providers
	logger    logger.Logger
}

func NewHandler(config *Config, cat *catalog.Catalog, providers rates.Providers, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		catalog:   cat,
		providers: providers,
		logger:    log.Named(StageName),
	}
}

// Execute turns one task intent into labor hours, labor cost, and material
// lines for the given city. Unknown categories and cities resolve to zero
// hours and base rates, never to errors.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	rate := h.providers.Labor.HourlyRate(ctx, input.City)

	def, ok := h.catalog.Lookup(input.Task.Category)
	if !ok {
		h.logger.Warn("unknown task category, estimating zero cost", map[string]interface{}{
			"category": string(input.Task.Category),
			"task":     input.Task.Name,
		})
		return &Output{Estimate: models.CostEstimate{HourlyRate: rate}}, nil
	}

	hours := estimateHours(def, input.Task.AreaM2)
	materials, materialCost := h.resolveMaterials(ctx, def, input.Task.AreaM2, input.City)

	h.logger.Debug("task estimated", map[string]interface{}{
		"category":     string(def.Category),
		"hours":        hours,
		"laborCost":    hours * rate,
		"materialCost": materialCost,
	})

	return &Output{Estimate: models.CostEstimate{
		Hours:        hours,
		HourlyRate:   rate,
		LaborCost:    hours * rate,
		Materials:    materials,
		MaterialCost: materialCost,
	}}, nil
}

// estimateHours converts a catalog definition into billable hours, rounded
// up to the nearest quarter hour. Contractors bill in 15-minute increments.
func estimateHours(def catalog.TaskDef, area *float64) float64 {
	hours := def.BaseHours
	if def.RequiresArea {
		hours = def.HoursPerM2 * effectiveArea(def.FallbackAreaM2, area)
	}
	return roundUpToQuarterHour(hours)
}

func (h *Handler) resolveMaterials(ctx context.Context, def catalog.TaskDef, area *float64, city string) ([]models.MaterialLine, float64) {
	if len(def.Materials) == 0 {
		// Pure-labor task. Valid outcome, not an error.
		return nil, 0.0
	}

	lines := make([]models.MaterialLine, 0, len(def.Materials))
	total := 0.0
	for _, spec := range def.Materials {
		qty := spec.Qty
		if spec.PerArea {
			qty = effectiveArea(spec.FallbackQty, area)
		}

		unitCost := h.providers.Materials.MaterialCost(ctx, spec.SKU, 1, city)
		lines = append(lines, models.MaterialLine{
			Name:     spec.SKU,
			Qty:      qty,
			UnitCost: unitCost,
			Total:    unitCost * qty,
		})
		total += unitCost * qty
	}
	return lines, total
}

func effectiveArea(fallback float64, area *float64) float64 {
	if area != nil && *area > 0 {
		return *area
	}
	return fallback
}

func roundUpToQuarterHour(hours float64) float64 {
	return math.Ceil(hours*4) / 4
}
