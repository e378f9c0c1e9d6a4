// internal/pipeline/aggregate/handler_test.go
package aggregate

import (
	"context"
	"strings"
	"testing"

	"renoquote/internal/common/logger"
	"renoquote/internal/models"
	"renoquote/pkg/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

func simpleTask(name string, laborCost, materialCost, vatAmount, totalPrice, confidence float64) TaskResult {
	return TaskResult{
		Intent: models.TaskIntent{
			Category: catalog.CategoryReplaceToilet,
			Name:     name,
		},
		Estimate: models.CostEstimate{
			Hours:        2,
			HourlyRate:   40,
			LaborCost:    laborCost,
			MaterialCost: materialCost,
		},
		MarginPct:  0.12,
		PriceExVAT: totalPrice - vatAmount,
		VATAmount:  vatAmount,
		VATRate:    0.20,
		TotalPrice: totalPrice,
		Confidence: confidence,
	}
}

// ==========================
// Summary Tests
// ==========================

func TestHandler_Execute_SummaryFromUnroundedAccumulators(t *testing.T) {
	handler := createTestHandler(t)

	// Each task's VAT rounds down to 10.00 on its own line, but the summary
	// accumulates full precision first: 2 x 10.004 = 20.008 -> 20.01.
	input := &Input{
		Transcript: "replace two toilets",
		Zone:       models.ZoneGeneral,
		Location:   "Marseille",
		Tasks: []TaskResult{
			simpleTask("Replace Toilet", 80, 120, 10.004, 100.0, 0.9),
			simpleTask("Replace Toilet", 80, 120, 10.004, 100.0, 0.9),
		},
	}

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	quote := output.Quote
	require.Len(t, quote.Zones, 1)
	require.Len(t, quote.Zones[0].Tasks, 2)

	for _, task := range quote.Zones[0].Tasks {
		assert.InDelta(t, 10.0, task.VATAmount, 1e-9)
	}
	assert.InDelta(t, 20.01, quote.Summary.TotalVAT, 1e-9)

	assert.InDelta(t, 160.0, quote.Summary.TotalLaborCost, 1e-9)
	assert.InDelta(t, 240.0, quote.Summary.TotalMaterialCost, 1e-9)
	assert.InDelta(t, 200.0, quote.Summary.TotalPrice, 1e-9)
	assert.InDelta(t, 4.0, quote.Summary.EstimatedDurationHours, 1e-9)
}

func TestHandler_Execute_WeightedConfidence(t *testing.T) {
	tests := []struct {
		name               string
		tasks              []TaskResult
		expectedConfidence float64
		expectedSuspicious bool
	}{
		{
			name: "high-priced task dominates the average",
			tasks: []TaskResult{
				simpleTask("Replace Toilet", 80, 120, 20, 100.0, 1.0),
				simpleTask("Install Vanity", 120, 180, 60, 300.0, 0.5),
			},
			// (1.0*100 + 0.5*300) / 400 = 0.625
			expectedConfidence: 0.63,
			expectedSuspicious: false,
		},
		{
			name: "confidence at the threshold is not suspicious",
			tasks: []TaskResult{
				simpleTask("Replace Toilet", 80, 120, 20, 100.0, 0.9),
				simpleTask("Install Vanity", 120, 180, 60, 300.0, 0.5),
			},
			// (0.9*100 + 0.5*300) / 400 = 0.6 exactly
			expectedConfidence: 0.6,
			expectedSuspicious: false,
		},
		{
			name: "below the threshold is suspicious",
			tasks: []TaskResult{
				simpleTask("Replace Toilet", 80, 120, 20, 100.0, 0.9),
				simpleTask("Install Vanity", 120, 180, 60, 300.0, 0.45),
			},
			// (0.9*100 + 0.45*300) / 400 = 0.5625
			expectedConfidence: 0.56,
			expectedSuspicious: true,
		},
		{
			name:               "no tasks means zero confidence",
			tasks:              nil,
			expectedConfidence: 0.0,
			expectedSuspicious: true,
		},
		{
			name: "all zero-priced tasks mean zero confidence",
			tasks: []TaskResult{
				simpleTask("Replace Toilet", 0, 0, 0, 0.0, 1.0),
			},
			expectedConfidence: 0.0,
			expectedSuspicious: true,
		},
	}

	handler := createTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), &Input{
				Zone:  models.ZoneGeneral,
				Tasks: tt.tasks,
			})
			require.NoError(t, err)

			summary := output.Quote.Summary
			assert.InDelta(t, tt.expectedConfidence, summary.ConfidenceScore, 0.005)
			assert.Equal(t, tt.expectedSuspicious, summary.SuspiciousInput)
		})
	}
}

// ==========================
// Envelope Tests
// ==========================

func TestHandler_Execute_QuoteEnvelope(t *testing.T) {
	handler := createTestHandler(t)

	input := &Input{
		Transcript: "replace the toilet in Marseille",
		Zone:       models.ZoneBathroom,
		Location:   "Marseille",
		Tasks: []TaskResult{
			simpleTask("Replace Toilet", 80, 120, 44.8, 268.8, 1.0),
		},
	}

	first, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	second, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	quote := first.Quote
	assert.Equal(t, models.SystemID, quote.System)
	assert.Equal(t, models.Currency, quote.Currency)
	assert.Equal(t, "replace the toilet in Marseille", quote.Client.RawTranscript)
	assert.Equal(t, "Marseille", quote.Client.Location)

	require.Len(t, quote.Zones, 1)
	assert.Equal(t, models.ZoneBathroom, quote.Zones[0].ZoneName)

	assert.True(t, strings.HasPrefix(quote.QuoteID, "rq-"))
	assert.Len(t, quote.QuoteID, 11)
	assert.NotEqual(t, quote.QuoteID, second.Quote.QuoteID)
}

func TestHandler_Execute_EmptyTaskList(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Transcript: "hello",
		Zone:       models.ZoneGeneral,
		Location:   "Generic",
	})
	require.NoError(t, err)

	quote := output.Quote
	require.Len(t, quote.Zones, 1)
	assert.NotNil(t, quote.Zones[0].Tasks)
	assert.Empty(t, quote.Zones[0].Tasks)

	assert.Zero(t, quote.Summary.TotalPrice)
	assert.Zero(t, quote.Summary.ConfidenceScore)
	assert.True(t, quote.Summary.SuspiciousInput)
}

func TestHandler_Execute_NilMaterialsBecomeEmptyList(t *testing.T) {
	handler := createTestHandler(t)

	task := simpleTask("Replace Toilet", 80, 0, 20, 120.0, 0.9)
	task.Estimate.Materials = nil

	output, err := handler.Execute(context.Background(), &Input{
		Zone:  models.ZoneGeneral,
		Tasks: []TaskResult{task},
	})
	require.NoError(t, err)

	tasks := output.Quote.Zones[0].Tasks
	require.Len(t, tasks, 1)
	assert.NotNil(t, tasks[0].Materials)
	assert.Empty(t, tasks[0].Materials)
}

func TestHandler_Execute_NilInput(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilInput)
	assert.Nil(t, output)
}
