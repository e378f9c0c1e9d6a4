// internal/models/quote.go
package models

import "renoquote/pkg/catalog"

// SystemID identifies the engine in emitted quotes.
const SystemID = "renoquote/1.0"

// Currency is fixed; all amounts are euros.
const Currency = "EUR"

// Zone names emitted by the interpreter.
const (
	ZoneBathroom = "bathroom"
	ZoneGeneral  = "general"
)

// ParsedIntent is the structured reading of one transcript. Built once by the
// interpreter and immutable afterwards.
type ParsedIntent struct {
	Zone       string
	City       *string
	BudgetFlag bool
	AreaM2     *float64
	Tasks      []TaskIntent
}

// TaskIntent is one detected unit of work. Category is the closed catalog
// enum; Name is the catalog display name that appears in the quote. AreaM2 is
// set only for area-scaled categories and stays nil when the transcript gave
// no usable area.
type TaskIntent struct {
	Category catalog.Category
	Name     string
	AreaM2   *float64
}

// MaterialLine is one material row of a priced task. Total is always
// UnitCost * Qty within float rounding.
type MaterialLine struct {
	Name     string  `json:"name"`
	Qty      float64 `json:"qty"`
	UnitCost float64 `json:"unit_cost"`
	Total    float64 `json:"total"`
}

// Labor is the labor block of a priced task.
type Labor struct {
	Hours      float64 `json:"hours"`
	HourlyRate float64 `json:"hourly_rate"`
	Cost       float64 `json:"cost"`
}

// CostEstimate is the estimator's per-task result before margin and VAT.
type CostEstimate struct {
	Hours        float64
	HourlyRate   float64
	LaborCost    float64
	Materials    []MaterialLine
	MaterialCost float64
}

// PricedTask is one fully priced line of the quote. The price fields are
// rounded to 2 decimals at assembly; labor and material amounts keep full
// precision so their product invariants hold exactly. Summary totals never
// read the rounded fields back.
type PricedTask struct {
	TaskName               string         `json:"task_name"`
	AreaM2                 *float64       `json:"area_m2"`
	Labor                  Labor          `json:"labor"`
	Materials              []MaterialLine `json:"materials"`
	EstimatedDurationHours float64        `json:"estimated_duration_hours"`
	VATRate                float64        `json:"vat_rate"`
	MarginPct              float64        `json:"margin_pct"`
	PriceExVAT             float64        `json:"price_ex_vat"`
	VATAmount              float64        `json:"vat_amount"`
	TotalPrice             float64        `json:"total_price"`
	Confidence             float64        `json:"confidence"`
}

// Zone groups the priced tasks of one physical area.
type Zone struct {
	ZoneName string       `json:"zone_name"`
	Tasks    []PricedTask `json:"tasks"`
}

// Client echoes the request back into the quote.
type Client struct {
	RawTranscript string `json:"raw_transcript"`
	Location      string `json:"location"`
}

// Summary carries the quote-level totals. Each field is rounded from its own
// full-precision accumulator, not from the rounded task fields.
type Summary struct {
	TotalLaborCost         float64 `json:"total_labor_cost"`
	TotalMaterialCost      float64 `json:"total_material_cost"`
	TotalVAT               float64 `json:"total_vat"`
	TotalPrice             float64 `json:"total_price"`
	EstimatedDurationHours float64 `json:"estimated_duration_hours"`
	ConfidenceScore        float64 `json:"confidence_score"`
	SuspiciousInput        bool    `json:"suspicious_input"`
}

// Quote is the full output document. Field names are a stable contract with
// downstream consumers; see internal/common/validation for the schema guard.
type Quote struct {
	System   string  `json:"system"`
	QuoteID  string  `json:"quote_id"`
	Client   Client  `json:"client"`
	Currency string  `json:"currency"`
	Zones    []Zone  `json:"zones"`
	Summary  Summary `json:"summary"`
}
