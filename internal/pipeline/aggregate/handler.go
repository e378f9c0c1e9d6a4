// internal/pipeline/aggregate/handler.go
package aggregate

import (
	"context"
	"errors"
	"math"

	"renoquote/internal/common/logger"
	"renoquote/internal/models"

	"github.com/google/uuid"
)

const (
	StageName = "aggregate"

	// SuspiciousThreshold marks quotes whose weighted confidence falls below
	// it for human review before use.
	SuspiciousThreshold = 0.6

	quoteIDPrefix = "rq-"
)

var (
	ErrNilInput = errors.New("input cannot be nil")
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.Named(StageName),
	}
}

// Execute assembles the final quote document. Summary totals come from
// full-precision accumulators and are rounded per field at the end, so they
// can differ from the sum of the already-rounded task fields in the last
// cent. Global confidence is the total-price-weighted average of per-task
// confidences, 0.0 when nothing is priced.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	var (
		totalLabor    float64
		totalMaterial float64
		totalVAT      float64
		totalPrice    float64
		totalHours    float64
		weightedConf  float64
		weightedPrice float64
	)

	tasks := make([]models.PricedTask, 0, len(input.Tasks))
	for _, tr := range input.Tasks {
		materials := tr.Estimate.Materials
		if materials == nil {
			materials = []models.MaterialLine{}
		}

		tasks = append(tasks, models.PricedTask{
			TaskName: tr.Intent.Name,
			AreaM2:   tr.Intent.AreaM2,
			Labor: models.Labor{
				Hours:      tr.Estimate.Hours,
				HourlyRate: tr.Estimate.HourlyRate,
				Cost:       tr.Estimate.LaborCost,
			},
			Materials:              materials,
			EstimatedDurationHours: tr.Estimate.Hours,
			VATRate:                tr.VATRate,
			MarginPct:              tr.MarginPct,
			PriceExVAT:             round2(tr.PriceExVAT),
			VATAmount:              round2(tr.VATAmount),
			TotalPrice:             round2(tr.TotalPrice),
			Confidence:             round2(tr.Confidence),
		})

		totalLabor += tr.Estimate.LaborCost
		totalMaterial += tr.Estimate.MaterialCost
		totalVAT += tr.VATAmount
		totalPrice += tr.TotalPrice
		totalHours += tr.Estimate.Hours
		weightedConf += tr.Confidence * tr.TotalPrice
		weightedPrice += tr.TotalPrice
	}

	globalConf := 0.0
	if weightedPrice != 0 {
		globalConf = weightedConf / weightedPrice
	}
	suspicious := globalConf < SuspiciousThreshold

	quote := &models.Quote{
		System:   models.SystemID,
		QuoteID:  newQuoteID(),
		Client:   models.Client{RawTranscript: input.Transcript, Location: input.Location},
		Currency: models.Currency,
		Zones: []models.Zone{
			{ZoneName: input.Zone, Tasks: tasks},
		},
		Summary: models.Summary{
			TotalLaborCost:         round2(totalLabor),
			TotalMaterialCost:      round2(totalMaterial),
			TotalVAT:               round2(totalVAT),
			TotalPrice:             round2(totalPrice),
			EstimatedDurationHours: round2(totalHours),
			ConfidenceScore:        round2(globalConf),
			SuspiciousInput:        suspicious,
		},
	}

	h.logger.Info("quote assembled", map[string]interface{}{
		"quoteId":    quote.QuoteID,
		"taskCount":  len(tasks),
		"totalPrice": quote.Summary.TotalPrice,
		"confidence": quote.Summary.ConfidenceScore,
		"suspicious": suspicious,
	})

	return &Output{Quote: quote}, nil
}

func newQuoteID() string {
	return quoteIDPrefix + uuid.New().String()[:8]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
