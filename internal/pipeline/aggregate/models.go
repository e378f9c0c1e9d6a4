// internal/pipeline/aggregate/models.go
package aggregate

import "renoquote/internal/models"

// TaskResult carries one task's estimate, pricing, and confidence into quote
// assembly. All monetary values are unrounded.
type TaskResult struct {
	Intent     models.TaskIntent
	Estimate   models.CostEstimate
	MarginPct  float64
	PriceExVAT float64
	VATRate    float64
	VATAmount  float64
	TotalPrice float64
	Confidence float64
}

type Input struct {
	Transcript string
	Zone       string
	Location   string
	Tasks      []TaskResult
}

type Output struct {
	Quote *models.Quote
}
