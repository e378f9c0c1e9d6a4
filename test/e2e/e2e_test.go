// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renoquote/internal/common/config"
	"renoquote/internal/common/logger"
	"renoquote/internal/common/observability"
	"renoquote/internal/common/validation"
	"renoquote/internal/models"
	"renoquote/internal/pipeline"
	"renoquote/internal/pipeline/finalize"
	"renoquote/internal/rates"
	"renoquote/pkg/catalog"
)

var engine *pipeline.Engine

const bathroomTranscript = "Client wants to renovate a small 4m² bathroom. They'll remove " +
	"the old tiles, redo the plumbing for the shower, replace the toilet, install a vanity, " +
	"repaint the walls, and lay new ceramic floor tiles. Budget-conscious. Located in Marseille."

// TestMain wires the engine exactly as cmd/quote-builder does with default
// configuration: no config file, static rate tables, built-in catalog.
func TestMain(m *testing.M) {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("❌ Failed to load config: %v", err))
	}

	log := logger.NewStructured("error", "json")
	static := rates.NewStatic(cfg.Rates, cfg.Pricing.DefaultVATRate, log)
	providers := rates.Providers{Materials: static, Labor: static, VAT: static}

	engine = pipeline.NewEngine(
		catalog.Default(),
		providers,
		&finalize.Config{
			DefaultMarginPct: cfg.Pricing.DefaultMarginPct,
			MinMarginPct:     cfg.Pricing.MinMarginPct,
		},
		observability.New("e2e"),
		log,
	)

	os.Exit(m.Run())
}

// ==========================
// Full Pipeline Tests
// ==========================

func TestFullQuotePipeline_MarseilleBathroom(t *testing.T) {
	t.Log("🚀 Building quote for the full bathroom renovation transcript...")

	quote, err := engine.BuildQuote(context.Background(), bathroomTranscript)
	require.NoError(t, err)
	require.NotNil(t, quote)

	assert.Equal(t, "renoquote/1.0", quote.System)
	assert.Regexp(t, `^rq-[0-9a-f]{8}$`, quote.QuoteID)
	assert.Equal(t, "EUR", quote.Currency)
	assert.Equal(t, bathroomTranscript, quote.Client.RawTranscript)
	assert.Equal(t, "Marseille", quote.Client.Location)

	require.Len(t, quote.Zones, 1)
	assert.Equal(t, "bathroom", quote.Zones[0].ZoneName)
	tasks := quote.Zones[0].Tasks
	require.Len(t, tasks, 6)

	expected := []struct {
		name       string
		hours      float64
		laborCost  float64
		totalPrice float64
	}{
		{"Floor Tiling (ceramic)", 3.75, 150.0, 336.0},
		{"Repaint Walls", 4.0, 160.0, 315.84},
		{"Shower Plumbing (redo)", 6.0, 240.0, 524.16},
		{"Replace Toilet", 2.0, 80.0, 268.8},
		{"Install Vanity", 3.0, 120.0, 403.2},
		{"Demolition & Disposal", 4.0, 160.0, 322.56},
	}
	for i, want := range expected {
		assert.Equal(t, want.name, tasks[i].TaskName)
		assert.InDelta(t, want.hours, tasks[i].Labor.Hours, 0.0001)
		assert.InDelta(t, want.laborCost, tasks[i].Labor.Cost, 0.0001)
		assert.InDelta(t, 40.0, tasks[i].Labor.HourlyRate, 0.0001)
		assert.InDelta(t, 0.12, tasks[i].MarginPct, 0.0001)
		assert.InDelta(t, 0.20, tasks[i].VATRate, 0.0001)
		assert.InDelta(t, want.totalPrice, tasks[i].TotalPrice, 0.01)
		assert.InDelta(t, 1.0, tasks[i].Confidence, 0.0001)
	}

	summary := quote.Summary
	assert.InDelta(t, 910.0, summary.TotalLaborCost, 0.01)
	assert.InDelta(t, 705.0, summary.TotalMaterialCost, 0.01)
	assert.InDelta(t, 361.76, summary.TotalVAT, 0.01)
	assert.InDelta(t, 2170.56, summary.TotalPrice, 0.01)
	assert.InDelta(t, 22.75, summary.EstimatedDurationHours, 0.0001)
	assert.InDelta(t, 1.0, summary.ConfidenceScore, 0.0001)
	assert.False(t, summary.SuspiciousInput)

	t.Log("✅ Quote totals match the documented rate tables")
}

func TestFullQuotePipeline_ParisStudio(t *testing.T) {
	quote, err := engine.BuildQuote(context.Background(), "Repaint the walls of my 10m2 studio in Paris")
	require.NoError(t, err)

	assert.Equal(t, "Paris", quote.Client.Location)
	require.Len(t, quote.Zones, 1)
	assert.Equal(t, "general", quote.Zones[0].ZoneName)
	require.Len(t, quote.Zones[0].Tasks, 1)

	task := quote.Zones[0].Tasks[0]
	assert.Equal(t, "Repaint Walls", task.TaskName)
	assert.Nil(t, task.AreaM2)
	assert.InDelta(t, 4.0, task.Labor.Hours, 0.0001)
	assert.InDelta(t, 50.0, task.Labor.HourlyRate, 0.0001)
	assert.InDelta(t, 200.0, task.Labor.Cost, 0.0001)

	require.Len(t, task.Materials, 1)
	assert.Equal(t, "paint_litre", task.Materials[0].Name)
	assert.InDelta(t, 18.75, task.Materials[0].UnitCost, 0.0001)
	assert.InDelta(t, 93.75, task.Materials[0].Total, 0.0001)

	assert.InDelta(t, 329.0, task.PriceExVAT, 0.01)
	assert.InDelta(t, 65.8, task.VATAmount, 0.01)
	assert.InDelta(t, 394.8, task.TotalPrice, 0.01)

	assert.InDelta(t, 394.8, quote.Summary.TotalPrice, 0.01)
	assert.InDelta(t, 1.0, quote.Summary.ConfidenceScore, 0.0001)
	assert.False(t, quote.Summary.SuspiciousInput)
}

func TestFullQuotePipeline_EmptyTranscript(t *testing.T) {
	quote, err := engine.BuildQuote(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "Generic", quote.Client.Location)
	require.Len(t, quote.Zones, 1)
	assert.Equal(t, "general", quote.Zones[0].ZoneName)
	assert.NotNil(t, quote.Zones[0].Tasks)
	assert.Empty(t, quote.Zones[0].Tasks)

	assert.Zero(t, quote.Summary.TotalPrice)
	assert.Zero(t, quote.Summary.EstimatedDurationHours)
	assert.Zero(t, quote.Summary.ConfidenceScore)
	assert.True(t, quote.Summary.SuspiciousInput)

	raw, err := json.Marshal(quote)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"tasks":[]`, "empty task list must serialize as [], not null")
	assert.NoError(t, validation.ValidateQuoteDocument(raw))
}

// ==========================
// Output Contract Tests
// ==========================

func TestQuoteJSONContract(t *testing.T) {
	quote, err := engine.BuildQuote(context.Background(), bathroomTranscript)
	require.NoError(t, err)

	raw, err := json.Marshal(quote)
	require.NoError(t, err)

	assert.NoError(t, validation.ValidateQuoteDocument(raw), "quote JSON must satisfy the output schema")

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))

	for _, key := range []string{"system", "quote_id", "client", "currency", "zones", "summary"} {
		assert.Contains(t, doc, key)
	}

	client := doc["client"].(map[string]interface{})
	assert.Contains(t, client, "raw_transcript")
	assert.Contains(t, client, "location")

	zones := doc["zones"].([]interface{})
	require.Len(t, zones, 1)
	zone := zones[0].(map[string]interface{})
	assert.Equal(t, "bathroom", zone["zone_name"])

	tasks := zone["tasks"].([]interface{})
	require.Len(t, tasks, 6)

	tiling := tasks[0].(map[string]interface{})
	assert.Equal(t, 4.0, tiling["area_m2"])
	materials := tiling["materials"].([]interface{})
	require.Len(t, materials, 1)
	line := materials[0].(map[string]interface{})
	assert.Equal(t, "tiles_ceramic_m2", line["name"])
	assert.Equal(t, 4.0, line["qty"])
	assert.Equal(t, 25.0, line["unit_cost"])
	assert.Equal(t, 100.0, line["total"])

	repaint := tasks[1].(map[string]interface{})
	val, present := repaint["area_m2"]
	assert.True(t, present, "area_m2 key must be emitted even when unknown")
	assert.Nil(t, val)

	for _, key := range []string{"task_name", "labor", "materials", "estimated_duration_hours",
		"vat_rate", "margin_pct", "price_ex_vat", "vat_amount", "total_price", "confidence"} {
		assert.Contains(t, tiling, key)
	}

	summary := doc["summary"].(map[string]interface{})
	for _, key := range []string{"total_labor_cost", "total_material_cost", "total_vat",
		"total_price", "estimated_duration_hours", "confidence_score", "suspicious_input"} {
		assert.Contains(t, summary, key)
	}
}

func TestQuoteFileRoundTrip(t *testing.T) {
	quote, err := engine.BuildQuote(context.Background(), bathroomTranscript)
	require.NoError(t, err)

	raw, err := json.MarshalIndent(quote, "", "  ")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "quote.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, raw, 0644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded models.Quote
	require.NoError(t, json.Unmarshal(data, &loaded))

	assert.Equal(t, quote.QuoteID, loaded.QuoteID)
	assert.Equal(t, quote.Summary, loaded.Summary)
	require.Len(t, loaded.Zones, 1)
	assert.Equal(t, quote.Zones[0].Tasks[0].TaskName, loaded.Zones[0].Tasks[0].TaskName)

	t.Log("✅ Quote survives the write/read round trip")
}
