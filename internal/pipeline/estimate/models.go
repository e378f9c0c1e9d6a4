// internal/pipeline/estimate/models.go
package estimate

import "renoquote/internal/models"

type Input struct {
	Task models.TaskIntent
	City string
}

type Output struct {
	Estimate models.CostEstimate
}
