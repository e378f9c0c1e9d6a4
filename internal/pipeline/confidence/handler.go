// internal/pipeline/confidence/handler.go
package confidence

import (
	"context"
	"errors"
	"math"

	"renoquote/internal/common/logger"
	"renoquote/internal/models"
	"renoquote/pkg/catalog"
)

const (
	StageName = "confidence"
)

var (
	ErrNilInput = errors.New("input cannot be nil")
)

type Handler struct {
	config  *Config
	catalog *catalog.Catalog
	logger  logger.Logger
}

func NewHandler(config *Config, cat *catalog.Catalog, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		catalog: cat,
		logger:  log.Named(StageName),
	}
}

// Execute scores how well-supported a task's parsed attributes are by the
// transcript, as a weighted sum of completeness signals capped at 1.0. The
// score is a heuristic explainability aid for human reviewers, not a
// statistical estimate: more extracted information can only raise it, never
// lower it.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	score := h.config.BaselineWeight
	if input.Task.Name != "" {
		score += h.config.TaskNameWeight
	}
	if h.areaSatisfied(input.Task) {
		score += h.config.AreaWeight
	}
	if input.CityKnown {
		score += h.config.CityKnownWeight
	} else {
		score += h.config.CityUnknownWeight
	}

	return &Output{Confidence: math.Min(score, 1.0)}, nil
}

// areaSatisfied grants the area signal when the task either carries a usable
// area or does not need one.
func (h *Handler) areaSatisfied(task models.TaskIntent) bool {
	if def, ok := h.catalog.Lookup(task.Category); ok && !def.RequiresArea {
		return true
	}
	return task.AreaM2 != nil && *task.AreaM2 > 0
}
