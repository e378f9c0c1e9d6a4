// internal/pipeline/finalize/handler_test.go
package finalize

import (
	"context"
	"testing"

	"renoquote/internal/common/config"
	"renoquote/internal/common/logger"
	"renoquote/internal/rates"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newVATProvider(overrides map[string]float64) rates.VATProvider {
	return rates.NewStatic(config.RatesConfig{
		VATOverrides: overrides,
	}, 0.20, logger.NewNoOpLogger())
}

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), newVATProvider(nil), logger.NewTestLogger(t))
}

// ==========================
// Margin Tests
// ==========================

func TestHandler_Execute_DefaultMargin(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		BaseCost: 250.0,
		TaskName: "Floor Tiling (ceramic)",
		City:     "Marseille",
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.12, output.MarginPct, 0.0001)
	assert.InDelta(t, 30.0, output.MarginAmount, 0.0001)
	assert.InDelta(t, 280.0, output.PriceExVAT, 0.0001)
}

func TestHandler_Execute_MarginFloorHolds(t *testing.T) {
	handler := NewHandler(&Config{
		DefaultMarginPct: 0.03,
		MinMarginPct:     0.05,
	}, newVATProvider(nil), logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{BaseCost: 100.0})
	require.NoError(t, err)

	assert.InDelta(t, 0.05, output.MarginPct, 0.0001)
	assert.InDelta(t, 5.0, output.MarginAmount, 0.0001)
	assert.InDelta(t, 105.0, output.PriceExVAT, 0.0001)
}

// ==========================
// VAT Tests
// ==========================

func TestHandler_Execute_DefaultVAT(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		BaseCost: 250.0,
		TaskName: "Floor Tiling (ceramic)",
		City:     "Marseille",
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.20, output.VATRate, 0.0001)
	assert.InDelta(t, 56.0, output.VATAmount, 0.0001)
	assert.InDelta(t, 336.0, output.TotalPrice, 0.0001)
}

func TestHandler_Execute_TaskVATOverride(t *testing.T) {
	handler := NewHandler(LoadConfig(), newVATProvider(map[string]float64{
		"Demolition & Disposal": 0.10,
	}), logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		BaseCost: 100.0,
		TaskName: "Demolition & Disposal",
		City:     "Paris",
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.10, output.VATRate, 0.0001)
	assert.InDelta(t, 11.2, output.VATAmount, 0.0001)
	assert.InDelta(t, 123.2, output.TotalPrice, 0.0001)
}

// ==========================
// Edge Case Tests
// ==========================

func TestHandler_Execute_ZeroBaseCost(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{BaseCost: 0.0})
	require.NoError(t, err)

	assert.InDelta(t, 0.12, output.MarginPct, 0.0001)
	assert.Zero(t, output.MarginAmount)
	assert.Zero(t, output.PriceExVAT)
	assert.InDelta(t, 0.20, output.VATRate, 0.0001)
	assert.Zero(t, output.VATAmount)
	assert.Zero(t, output.TotalPrice)
}

func TestHandler_Execute_NilInput(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilInput)
	assert.Nil(t, output)
}
