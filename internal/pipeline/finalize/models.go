// internal/pipeline/finalize/models.go
package finalize

type Input struct {
	BaseCost float64
	TaskName string
	City     string
}

type Output struct {
	MarginPct    float64
	MarginAmount float64
	PriceExVAT   float64
	VATRate      float64
	VATAmount    float64
	TotalPrice   float64
}
