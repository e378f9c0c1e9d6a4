// pkg/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Category identifies a renovation task type. The set is closed: the
// interpreter only emits these values and the estimator only dispatches on
// them, so a quote can never contain a task the pricing tables do not know.
type Category string

const (
	CategoryFloorTiling    Category = "floor_tiling"
	CategoryRepaintWalls   Category = "repaint_walls"
	CategoryShowerPlumbing Category = "shower_plumbing"
	CategoryReplaceToilet  Category = "replace_toilet"
	CategoryInstallVanity  Category = "install_vanity"
	CategoryDemolition     Category = "demolition_disposal"
)

// MaterialSpec describes one material line a task consumes. PerArea lines take
// their quantity from the task's parsed area with FallbackQty covering the
// no-area case; fixed lines always use Qty.
type MaterialSpec struct {
	SKU         string  `json:"sku"`
	Qty         float64 `json:"qty"`
	PerArea     bool    `json:"perArea"`
	FallbackQty float64 `json:"fallbackQty,omitempty"`
}

// TaskDef is the pricing definition for one task category.
type TaskDef struct {
	Category       Category       `json:"category"`
	DisplayName    string         `json:"displayName"`
	BaseHours      float64        `json:"baseHours"`
	HoursPerM2     float64        `json:"hoursPerM2,omitempty"`
	RequiresArea   bool           `json:"requiresArea"`
	FallbackAreaM2 float64        `json:"fallbackAreaM2,omitempty"`
	Materials      []MaterialSpec `json:"materials"`
}

// Catalog is the full set of task definitions the engine prices against.
type Catalog struct {
	Version     string    `json:"version"`
	LastUpdated string    `json:"lastUpdated"`
	Tasks       []TaskDef `json:"tasks"`

	index map[Category]int
}

// Default returns the built-in catalog. Durations and material quantities are
// the documented defaults the rate providers and tests rely on.
func Default() *Catalog {
	c := &Catalog{
		Version:     "1.0.0",
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Tasks: []TaskDef{
			{
				Category:       CategoryFloorTiling,
				DisplayName:    "Floor Tiling (ceramic)",
				HoursPerM2:     0.9,
				RequiresArea:   true,
				FallbackAreaM2: 4,
				Materials: []MaterialSpec{
					{SKU: "tiles_ceramic_m2", PerArea: true, FallbackQty: 4},
				},
			},
			{
				Category:    CategoryRepaintWalls,
				DisplayName: "Repaint Walls",
				BaseHours:   4,
				Materials: []MaterialSpec{
					{SKU: "paint_litre", Qty: 5},
				},
			},
			{
				Category:    CategoryShowerPlumbing,
				DisplayName: "Shower Plumbing (redo)",
				BaseHours:   6,
				Materials: []MaterialSpec{
					{SKU: "plumbing_parts", Qty: 1},
				},
			},
			{
				Category:    CategoryReplaceToilet,
				DisplayName: "Replace Toilet",
				BaseHours:   2,
				Materials: []MaterialSpec{
					{SKU: "toilet_standard", Qty: 1},
				},
			},
			{
				Category:    CategoryInstallVanity,
				DisplayName: "Install Vanity",
				BaseHours:   3,
				Materials: []MaterialSpec{
					{SKU: "vanity_basic", Qty: 1},
				},
			},
			{
				Category:    CategoryDemolition,
				DisplayName: "Demolition & Disposal",
				BaseHours:   4,
				Materials: []MaterialSpec{
					{SKU: "disposal_fee", Qty: 1},
				},
			},
		},
	}
	c.buildIndex()
	return c
}

// Load reads a catalog file, validates it against the embedded schema and the
// semantic rules, and returns it ready for lookups.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := ValidateDocument(data); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	c.buildIndex()
	return &c, nil
}

// Save writes the catalog as indented JSON, creating parent directories.
func Save(c *Catalog, path string) error {
	c.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Validate applies the semantic rules the JSON schema cannot express.
func (c *Catalog) Validate() error {
	if len(c.Tasks) == 0 {
		return fmt.Errorf("catalog contains no tasks")
	}
	seen := make(map[Category]bool)
	for _, t := range c.Tasks {
		if t.Category == "" {
			return fmt.Errorf("task missing category")
		}
		if seen[t.Category] {
			return fmt.Errorf("duplicate task category: %s", t.Category)
		}
		seen[t.Category] = true

		if t.DisplayName == "" {
			return fmt.Errorf("task %s missing displayName", t.Category)
		}
		if t.BaseHours < 0 || t.HoursPerM2 < 0 {
			return fmt.Errorf("task %s has negative hours", t.Category)
		}
		if t.BaseHours == 0 && t.HoursPerM2 == 0 {
			return fmt.Errorf("task %s has no duration", t.Category)
		}
		if t.RequiresArea && t.FallbackAreaM2 <= 0 {
			return fmt.Errorf("task %s requires area but has no fallback", t.Category)
		}
		for _, m := range t.Materials {
			if m.SKU == "" {
				return fmt.Errorf("task %s has a material without a sku", t.Category)
			}
			if m.PerArea && m.FallbackQty <= 0 {
				return fmt.Errorf("task %s material %s is per-area but has no fallback qty", t.Category, m.SKU)
			}
			if !m.PerArea && m.Qty <= 0 {
				return fmt.Errorf("task %s material %s has non-positive qty", t.Category, m.SKU)
			}
		}
	}
	return nil
}

// Lookup returns the definition for a category.
func (c *Catalog) Lookup(cat Category) (TaskDef, bool) {
	if c.index == nil {
		c.buildIndex()
	}
	i, ok := c.index[cat]
	if !ok {
		return TaskDef{}, false
	}
	return c.Tasks[i], true
}

// Categories returns the categories in catalog order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		out = append(out, t.Category)
	}
	return out
}

func (c *Catalog) buildIndex() {
	c.index = make(map[Category]int, len(c.Tasks))
	for i, t := range c.Tasks {
		c.index[t.Category] = i
	}
}
