// internal/pipeline/interpret/handler.go
package interpret

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"renoquote/internal/common/logger"
	"renoquote/internal/models"
	"renoquote/pkg/catalog"
)

const (
	StageName = "interpret"
)

var (
	ErrNilInput = errors.New("input cannot be nil")
)

// areaPattern matches a whole number immediately followed by a square-meter
// unit, with at most one space between them.
var areaPattern = regexp.MustCompile(`(\d+)\s?m[²2]`)

// trigger binds transcript phrases to the catalog category they emit. One
// trigger appends at most one task; evaluation order is fixed and determines
// task order in the quote.
type trigger struct {
	category catalog.Category
	phrases  []string
}

var triggers = []trigger{
	{catalog.CategoryFloorTiling, []string{"tile"}},
	{catalog.CategoryRepaintWalls, []string{"paint", "repaint"}},
	{catalog.CategoryShowerPlumbing, []string{"plumb"}},
	{catalog.CategoryReplaceToilet, []string{"toilet"}},
	{catalog.CategoryInstallVanity, []string{"vanity"}},
	{catalog.CategoryDemolition, []string{"remove old tile", "remove the old tiles"}},
}

type Handler struct {
	config      *Config
	catalog     *catalog.Catalog
	cityPattern *regexp.Regexp
	logger      logger.Logger
}

func NewHandler(config *Config, cat *catalog.Catalog, log logger.Logger) *Handler {
	return &Handler{
		config:      config,
		catalog:     cat,
		cityPattern: buildCityPattern(config.KnownCities),
		logger:      log.Named(StageName),
	}
}

// Execute extracts structured intent from a free-form transcript. Matching is
// rule-based so every task in the quote traces to an explicit phrase a human
// reviewer can point at. It never fails on content: missing signals become
// nil fields and an empty task list, not errors.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	text := strings.ToLower(input.Transcript)

	intent := models.ParsedIntent{
		Zone:       models.ZoneGeneral,
		BudgetFlag: strings.Contains(text, "budget"),
	}
	if strings.Contains(text, "bathroom") {
		intent.Zone = models.ZoneBathroom
	}

	if m := areaPattern.FindStringSubmatch(text); m != nil {
		if area, err := strconv.ParseFloat(m[1], 64); err == nil {
			intent.AreaM2 = &area
		}
	}

	if h.cityPattern != nil {
		if m := h.cityPattern.FindStringSubmatch(text); m != nil {
			city := capitalize(m[1])
			intent.City = &city
		}
	}

	for _, tr := range triggers {
		if !containsAny(text, tr.phrases) {
			continue
		}
		def, ok := h.catalog.Lookup(tr.category)
		if !ok {
			h.logger.Warn("trigger category missing from catalog", map[string]interface{}{
				"category": string(tr.category),
			})
			continue
		}
		task := models.TaskIntent{
			Category: tr.category,
			Name:     def.DisplayName,
		}
		if def.RequiresArea {
			task.AreaM2 = intent.AreaM2
		}
		intent.Tasks = append(intent.Tasks, task)
	}

	h.logger.Debug("transcript interpreted", map[string]interface{}{
		"zone":       intent.Zone,
		"taskCount":  len(intent.Tasks),
		"cityFound":  intent.City != nil,
		"areaFound":  intent.AreaM2 != nil,
		"budgetFlag": intent.BudgetFlag,
	})

	return &Output{Intent: intent}, nil
}

func buildCityPattern(cities []string) *regexp.Regexp {
	if len(cities) == 0 {
		return nil
	}
	quoted := make([]string, len(cities))
	for i, c := range cities {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(c))
	}
	return regexp.MustCompile("(" + strings.Join(quoted, "|") + ")")
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
