// internal/pipeline/finalize/handler.go
package finalize

import (
	"context"
	"errors"
	"math"

	"renoquote/internal/common/logger"
	"renoquote/internal/rates"
)

const (
	StageName = "finalize"
)

var (
	ErrNilInput = errors.New("input cannot be nil")
)

type Handler struct {
	config *Config
	vat    rates.VATProvider
	logger logger.Logger
}

func NewHandler(config *Config, vat rates.VATProvider, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		vat:    vat,
		logger: log.Named(StageName),
	}
}

// Execute applies margin protection and then VAT to a task's base cost. All
// outputs stay unrounded; rounding happens once at quote assembly.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	marginPct, marginAmount, priceExVAT := h.applyMargin(input.BaseCost)
	vatRate, vatAmount, totalPrice := h.applyVAT(ctx, priceExVAT, input.TaskName, input.City)

	return &Output{
		MarginPct:    marginPct,
		MarginAmount: marginAmount,
		PriceExVAT:   priceExVAT,
		VATRate:      vatRate,
		VATAmount:    vatAmount,
		TotalPrice:   totalPrice,
	}, nil
}

// applyMargin enforces the margin floor. This is a monotonic floor, not a
// conditional choice: with the current constants the default always wins, but
// the floor holds if the default is ever configured below it.
func (h *Handler) applyMargin(baseCost float64) (marginPct, marginAmount, priceExVAT float64) {
	marginPct = math.Max(h.config.DefaultMarginPct, h.config.MinMarginPct)
	marginAmount = baseCost * marginPct
	return marginPct, marginAmount, baseCost + marginAmount
}

func (h *Handler) applyVAT(ctx context.Context, priceExVAT float64, taskName, city string) (vatRate, vatAmount, totalPrice float64) {
	vatRate = h.vat.VATRate(ctx, taskName, city)
	vatAmount = priceExVAT * vatRate
	return vatRate, vatAmount, priceExVAT + vatAmount
}
