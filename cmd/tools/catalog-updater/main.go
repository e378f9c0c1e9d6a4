// cmd/tools/catalog-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"renoquote/pkg/catalog"
)

var catalogPath string

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	setCmd := flag.NewFlagSet("set", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// Export command flags
	exportCmd.StringVar(&catalogPath, "path", "configs/task-catalog.json", "Destination for the catalog file")

	// List command flags
	listCmd.StringVar(&catalogPath, "path", "", "Catalog file to list (default: built-in catalog)")

	// Set command flags
	categorySet := setCmd.String("category", "", "Task category to update (e.g., floor_tiling)")
	field := setCmd.String("field", "", "Field to update (displayName, baseHours, hoursPerM2, requiresArea, fallbackAreaM2)")
	value := setCmd.String("value", "", "New value for the field")
	setCmd.StringVar(&catalogPath, "path", "configs/task-catalog.json", "Path to catalog file")

	// Validate command flags
	validateCmd.StringVar(&catalogPath, "path", "configs/task-catalog.json", "Path to catalog file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		if err := exportCatalog(); err != nil {
			fmt.Printf("Error exporting catalog: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote built-in catalog to %s\n", catalogPath)

	case "list":
		listCmd.Parse(os.Args[2:])
		if err := listCatalog(); err != nil {
			fmt.Printf("Error listing catalog: %v\n", err)
			os.Exit(1)
		}

	case "set":
		setCmd.Parse(os.Args[2:])
		if *categorySet == "" || *field == "" || *value == "" {
			fmt.Println("Error: category, field, and value are required for set.")
			setCmd.Usage()
			os.Exit(1)
		}
		if err := setTaskField(*categorySet, *field, *value); err != nil {
			fmt.Printf("Error updating catalog: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated task %s, field %s to %s\n", *categorySet, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateCatalog(); err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Catalog validation passed.")

	case "help":
		fallthrough
	default:
		help()
	}
}

func exportCatalog() error {
	return catalog.Save(catalog.Default(), catalogPath)
}

func listCatalog() error {
	c, err := loadCatalog()
	if err != nil {
		return err
	}

	fmt.Printf("Catalog version %s (%d tasks)\n", c.Version, len(c.Tasks))
	for _, t := range c.Tasks {
		duration := fmt.Sprintf("%.2g h", t.BaseHours)
		if t.RequiresArea {
			duration = fmt.Sprintf("%.2g h/m² (fallback %.2g m²)", t.HoursPerM2, t.FallbackAreaM2)
		}
		fmt.Printf("  %-20s %-25s %s, %d material(s)\n", t.Category, t.DisplayName, duration, len(t.Materials))
	}
	return nil
}

func setTaskField(category, field, value string) error {
	c, err := loadCatalog()
	if err != nil {
		return err
	}

	found := false
	for i := range c.Tasks {
		if c.Tasks[i].Category == catalog.Category(category) {
			found = true
			switch field {
			case "displayName":
				c.Tasks[i].DisplayName = value
			case "baseHours":
				hours, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return fmt.Errorf("invalid baseHours value: %w", err)
				}
				c.Tasks[i].BaseHours = hours
			case "hoursPerM2":
				hours, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return fmt.Errorf("invalid hoursPerM2 value: %w", err)
				}
				c.Tasks[i].HoursPerM2 = hours
			case "requiresArea":
				requires, err := strconv.ParseBool(value)
				if err != nil {
					return fmt.Errorf("invalid requiresArea value: %w", err)
				}
				c.Tasks[i].RequiresArea = requires
			case "fallbackAreaM2":
				area, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return fmt.Errorf("invalid fallbackAreaM2 value: %w", err)
				}
				c.Tasks[i].FallbackAreaM2 = area
			default:
				return fmt.Errorf("unknown field: %s", field)
			}
			break
		}
	}

	if !found {
		return fmt.Errorf("task with category %s not found", category)
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("catalog invalid after update: %w", err)
	}
	return catalog.Save(c, catalogPath)
}

func validateCatalog() error {
	_, err := catalog.Load(catalogPath)
	return err
}

// loadCatalog reads the configured file, or starts from the built-in catalog
// when no path was given or the file does not exist yet.
func loadCatalog() (*catalog.Catalog, error) {
	if catalogPath == "" {
		return catalog.Default(), nil
	}
	if _, err := os.Stat(catalogPath); os.IsNotExist(err) {
		return catalog.Default(), nil
	}
	return catalog.Load(catalogPath)
}

func help() {
	fmt.Print(`
Usage: catalog-updater <command> [flags]

Commands:
  export   Write the built-in task catalog to a file
  list     List the tasks in a catalog file
  set      Update a field of one task definition
  validate Validate a catalog file
  help     Show this help message

Examples:
  catalog-updater export -path configs/task-catalog.json
  catalog-updater set -category floor_tiling -field hoursPerM2 -value 1.1
  catalog-updater validate -path configs/task-catalog.json

Use 'catalog-updater <command> -h' for more information about a command.

`)
}
