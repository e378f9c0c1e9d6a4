// cmd/tools/stage-generator/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// StageData feeds the scaffold templates for one pipeline stage.
type StageData struct {
	Name         string
	PackageName  string
	InputFields  []Field
	OutputFields []Field
}

// Field is one struct field on the generated Input or Output.
type Field struct {
	GoName string
	Type   string
}

func main() {
	name := flag.String("name", "", "Stage name, lowercase (e.g. discount)")
	inputs := flag.String("inputs", "", "Comma-separated input fields as name:type (e.g. task:models.TaskIntent,city:string)")
	outputs := flag.String("outputs", "", "Comma-separated output fields as name:type")
	outputDir := flag.String("output-dir", "internal/pipeline", "Directory the stage package is created under")
	force := flag.Bool("force", false, "Overwrite an existing stage directory")
	flag.Parse()

	if *name == "" {
		fmt.Println("Error: -name is required")
		flag.Usage()
		os.Exit(1)
	}

	pkg := strings.ToLower(strings.ReplaceAll(*name, "-", ""))
	if !validPackageName(pkg) {
		fmt.Printf("Error: %q does not reduce to a valid package name\n", *name)
		os.Exit(1)
	}

	inputFields, err := parseFields(*inputs)
	if err != nil {
		fmt.Printf("Error parsing -inputs: %v\n", err)
		os.Exit(1)
	}
	outputFields, err := parseFields(*outputs)
	if err != nil {
		fmt.Printf("Error parsing -outputs: %v\n", err)
		os.Exit(1)
	}

	// Prepare data for templates
	data := StageData{
		Name:         *name,
		PackageName:  pkg,
		InputFields:  inputFields,
		OutputFields: outputFields,
	}

	stageDir := filepath.Join(*outputDir, pkg)
	if _, err := os.Stat(stageDir); err == nil && !*force {
		fmt.Printf("Error: %s already exists (use -force to overwrite)\n", stageDir)
		os.Exit(1)
	}
	if err := os.MkdirAll(stageDir, 0755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	// Create templates with functions
	funcMap := template.FuncMap{
		"fieldLines":  fieldLines,
		"needsModels": needsModels,
	}

	// Generate files
	templates := map[string]string{
		"config.go":       configTemplate,
		"models.go":       modelsTemplate,
		"handler.go":      handlerTemplate,
		"handler_test.go": testTemplate,
	}

	for filename, tmplStr := range templates {
		tmpl, err := template.New(filename).Funcs(funcMap).Parse(tmplStr)
		if err != nil {
			fmt.Printf("Error parsing template %s: %v\n", filename, err)
			continue
		}

		filePath := filepath.Join(stageDir, filename)
		file, err := os.Create(filePath)
		if err != nil {
			fmt.Printf("Error creating file %s: %v\n", filePath, err)
			continue
		}

		if err := tmpl.Execute(file, data); err != nil {
			fmt.Printf("Error executing template for %s: %v\n", filename, err)
		}
		file.Close()

		fmt.Printf("✓ Generated %s\n", filePath)
	}

	fmt.Printf("\n✅ Stage scaffold generated at: %s\n", stageDir)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Fill in the stage logic in handler.go\n")
	fmt.Printf("  2. Flesh out Input and Output in models.go\n")
	fmt.Printf("  3. Wire the handler into internal/pipeline/pipeline.go\n")
	fmt.Printf("  4. Extend the tests in handler_test.go\n")
}

// parseFields turns "area:float64,city:string" into struct fields. Field
// names are lowerCamel on the command line and exported in the output.
func parseFields(spec string) ([]Field, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}

	var fields []Field
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		nameType := strings.SplitN(part, ":", 2)
		if len(nameType) != 2 || strings.TrimSpace(nameType[0]) == "" || strings.TrimSpace(nameType[1]) == "" {
			return nil, fmt.Errorf("field %q must be name:type", part)
		}
		fields = append(fields, Field{
			GoName: upperFirst(strings.TrimSpace(nameType[0])),
			Type:   strings.TrimSpace(nameType[1]),
		})
	}
	return fields, nil
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// needsModels reports whether any field references the shared models package,
// so the generated models.go only imports it when used.
func needsModels(data StageData) bool {
	for _, f := range data.InputFields {
		if strings.Contains(f.Type, "models.") {
			return true
		}
	}
	for _, f := range data.OutputFields {
		if strings.Contains(f.Type, "models.") {
			return true
		}
	}
	return false
}

// fieldLines renders struct fields with gofmt-style name alignment.
func fieldLines(fields []Field) string {
	width := 0
	for _, f := range fields {
		if len(f.GoName) > width {
			width = len(f.GoName)
		}
	}

	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, "\t%-*s %s\n", width, f.GoName, f.Type)
	}
	return strings.TrimRight(b.String(), "\n")
}

func validPackageName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r >= 'a' && r <= 'z' {
			continue
		}
		if r >= '0' && r <= '9' && i > 0 {
			continue
		}
		return false
	}
	return true
}

const configTemplate = `// internal/pipeline/{{ .PackageName }}/config.go
package {{ .PackageName }}

type Config struct {
	// Add stage-specific tuning knobs here.
}

func LoadConfig() *Config {
	return &Config{}
}
`

const modelsTemplate = `// internal/pipeline/{{ .PackageName }}/models.go
package {{ .PackageName }}
{{- if needsModels . }}

import "renoquote/internal/models"
{{- end }}

type Input struct {
{{- if .InputFields }}
{{ fieldLines .InputFields }}
{{- else }}
	// Add the stage inputs here.
{{- end }}
}

type Output struct {
{{- if .OutputFields }}
{{ fieldLines .OutputFields }}
{{- else }}
	// Add the stage outputs here.
{{- end }}
}
`

const handlerTemplate = `// internal/pipeline/{{ .PackageName }}/handler.go
package {{ .PackageName }}

import (
	"context"
	"errors"

	"renoquote/internal/common/logger"
)

const (
	StageName = "{{ .PackageName }}"
)

var (
	ErrNilInput = errors.New("input cannot be nil")
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.Named(StageName),
	}
}

// Execute runs the {{ .Name }} stage for a single task.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	output := &Output{
		// Fill the stage outputs here.
	}

	return output, nil
}
`

const testTemplate = `// internal/pipeline/{{ .PackageName }}/handler_test.go
package {{ .PackageName }}

import (
	"context"
	"testing"

	"renoquote/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

// ==========================
// Execute Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.NotNil(t, output)
}

func TestHandler_Execute_NilInput(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), nil)

	assert.ErrorIs(t, err, ErrNilInput)
	assert.Nil(t, output)
}
`
