// internal/pipeline/estimate/handler_test.go
package estimate

import (
	"context"
	"testing"

	"renoquote/internal/common/config"
	"renoquote/internal/common/logger"
	"renoquote/internal/models"
	"renoquote/internal/rates"
	"renoquote/pkg/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func testProviders() rates.Providers {
	static := rates.NewStatic(config.RatesConfig{
		BaseHourlyRate: 40.0,
		MaterialBaseCosts: map[string]float64{
			"tiles_ceramic_m2": 25.0,
			"paint_litre":      15.0,
			"plumbing_parts":   150.0,
			"toilet_standard":  120.0,
			"vanity_basic":     180.0,
			"disposal_fee":     80.0,
		},
		CityMultipliers: map[string]float64{
			"marseille": 1.0,
			"paris":     1.25,
			"lyon":      1.10,
		},
	}, 0.20, logger.NewNoOpLogger())

	return rates.Providers{Materials: static, Labor: static, VAT: static}
}

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), catalog.Default(), testProviders(), logger.NewTestLogger(t))
}

func areaPtr(v float64) *float64 {
	return &v
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_FloorTiling(t *testing.T) {
	tests := []struct {
		name             string
		area             *float64
		city             string
		expectedHours    float64
		expectedLabor    float64
		expectedUnitCost float64
		expectedMaterial float64
	}{
		{
			name:             "measured area in marseille",
			area:             areaPtr(4),
			city:             "Marseille",
			expectedHours:    3.75,
			expectedLabor:    150.0,
			expectedUnitCost: 25.0,
			expectedMaterial: 100.0,
		},
		{
			name:             "missing area falls back to four square meters",
			area:             nil,
			city:             "Marseille",
			expectedHours:    3.75,
			expectedLabor:    150.0,
			expectedUnitCost: 25.0,
			expectedMaterial: 100.0,
		},
		{
			name:             "zero area falls back to four square meters",
			area:             areaPtr(0),
			city:             "Marseille",
			expectedHours:    3.75,
			expectedLabor:    150.0,
			expectedUnitCost: 25.0,
			expectedMaterial: 100.0,
		},
		{
			name:             "larger area in paris",
			area:             areaPtr(10),
			city:             "Paris",
			expectedHours:    9.0,
			expectedLabor:    450.0,
			expectedUnitCost: 31.25,
			expectedMaterial: 312.5,
		},
	}

	handler := createTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), &Input{
				Task: models.TaskIntent{
					Category: catalog.CategoryFloorTiling,
					Name:     "Floor Tiling (ceramic)",
					AreaM2:   tt.area,
				},
				City: tt.city,
			})
			require.NoError(t, err)

			est := output.Estimate
			assert.InDelta(t, tt.expectedHours, est.Hours, 0.0001)
			assert.InDelta(t, tt.expectedLabor, est.LaborCost, 0.0001)
			assert.InDelta(t, tt.expectedMaterial, est.MaterialCost, 0.0001)

			require.Len(t, est.Materials, 1)
			line := est.Materials[0]
			assert.Equal(t, "tiles_ceramic_m2", line.Name)
			assert.InDelta(t, tt.expectedUnitCost, line.UnitCost, 0.0001)
			assert.InDelta(t, line.UnitCost*line.Qty, line.Total, 1e-9)
		})
	}
}

func TestHandler_Execute_FixedDurationTasks(t *testing.T) {
	tests := []struct {
		name             string
		category         catalog.Category
		expectedHours    float64
		expectedSKU      string
		expectedMaterial float64
	}{
		{
			name:             "repaint walls",
			category:         catalog.CategoryRepaintWalls,
			expectedHours:    4.0,
			expectedSKU:      "paint_litre",
			expectedMaterial: 75.0,
		},
		{
			name:             "shower plumbing",
			category:         catalog.CategoryShowerPlumbing,
			expectedHours:    6.0,
			expectedSKU:      "plumbing_parts",
			expectedMaterial: 150.0,
		},
		{
			name:             "replace toilet",
			category:         catalog.CategoryReplaceToilet,
			expectedHours:    2.0,
			expectedSKU:      "toilet_standard",
			expectedMaterial: 120.0,
		},
		{
			name:             "install vanity",
			category:         catalog.CategoryInstallVanity,
			expectedHours:    3.0,
			expectedSKU:      "vanity_basic",
			expectedMaterial: 180.0,
		},
		{
			name:             "demolition and disposal",
			category:         catalog.CategoryDemolition,
			expectedHours:    4.0,
			expectedSKU:      "disposal_fee",
			expectedMaterial: 80.0,
		},
	}

	handler := createTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), &Input{
				Task: models.TaskIntent{Category: tt.category},
				City: "Marseille",
			})
			require.NoError(t, err)

			est := output.Estimate
			assert.InDelta(t, tt.expectedHours, est.Hours, 0.0001)
			assert.InDelta(t, 40.0, est.HourlyRate, 0.0001)
			assert.InDelta(t, tt.expectedHours*40.0, est.LaborCost, 0.0001)
			assert.InDelta(t, tt.expectedMaterial, est.MaterialCost, 0.0001)

			require.Len(t, est.Materials, 1)
			assert.Equal(t, tt.expectedSKU, est.Materials[0].Name)
		})
	}
}

// ==========================
// Rounding Tests
// ==========================

func TestHandler_Execute_HoursRoundUpToQuarter(t *testing.T) {
	tests := []struct {
		name     string
		area     float64
		expected float64
	}{
		{name: "one square meter", area: 1, expected: 1.0},
		{name: "three square meters", area: 3, expected: 2.75},
		{name: "four square meters", area: 4, expected: 3.75},
		{name: "five square meters", area: 5, expected: 4.5},
	}

	handler := createTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), &Input{
				Task: models.TaskIntent{
					Category: catalog.CategoryFloorTiling,
					AreaM2:   areaPtr(tt.area),
				},
				City: "Marseille",
			})
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, output.Estimate.Hours, 0.0001)
		})
	}
}

// ==========================
// Edge Case Tests
// ==========================

func TestHandler_Execute_UnknownCityUsesBaseRate(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Task: models.TaskIntent{Category: catalog.CategoryReplaceToilet},
		City: "Toulouse",
	})
	require.NoError(t, err)
	assert.InDelta(t, 40.0, output.Estimate.HourlyRate, 0.0001)
	assert.InDelta(t, 80.0, output.Estimate.LaborCost, 0.0001)
}

func TestHandler_Execute_UnknownCategoryYieldsZeroEstimate(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Task: models.TaskIntent{Category: catalog.Category("heated_floor"), Name: "Heated Floor"},
		City: "Marseille",
	})
	require.NoError(t, err)

	est := output.Estimate
	assert.Zero(t, est.Hours)
	assert.Zero(t, est.LaborCost)
	assert.Zero(t, est.MaterialCost)
	assert.Empty(t, est.Materials)
	assert.InDelta(t, 40.0, est.HourlyRate, 0.0001)
}

func TestHandler_Execute_NilInput(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilInput)
	assert.Nil(t, output)
}
