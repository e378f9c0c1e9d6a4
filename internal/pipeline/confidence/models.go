// internal/pipeline/confidence/models.go
package confidence

import "renoquote/internal/models"

type Input struct {
	Task      models.TaskIntent
	CityKnown bool
}

type Output struct {
	Confidence float64
}
