// internal/pipeline/interpret/models.go
package interpret

import "renoquote/internal/models"

type Input struct {
	Transcript string
}

type Output struct {
	Intent models.ParsedIntent
}
