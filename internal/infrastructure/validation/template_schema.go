// Package validation checks raw mapping template documents against a JSON Schema.
package validation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	integrationapp "github.com/obralink/backend/internal/application/integration"
)

const templateSchemaURL = "https://obralink.local/schemas/mapping_template.schema.json"

//go:embed schemas/mapping_template.schema.json
var defaultTemplateSchema []byte

// TemplateSchemaValidator validates template documents before they are decoded
type TemplateSchemaValidator struct {
	schema *jsonschema.Schema
}

// NewTemplateSchemaValidator compiles the schema at path, or the built-in one when path is empty
func NewTemplateSchemaValidator(path string) (*TemplateSchemaValidator, error) {
	source := defaultTemplateSchema
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("template schema load failed: %w", err)
		}
		source = raw
	}
	return compileTemplateSchema(source)
}

func compileTemplateSchema(source []byte) (*TemplateSchemaValidator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(templateSchemaURL, bytes.NewReader(source)); err != nil {
		return nil, fmt.Errorf("template schema load failed: %w", err)
	}
	compiled, err := c.Compile(templateSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("template schema compile failed: %w", err)
	}
	return &TemplateSchemaValidator{schema: compiled}, nil
}

// ValidateDocument returns one message per schema violation, sorted by location
func (v *TemplateSchemaValidator) ValidateDocument(doc []byte) []string {
	var instance interface{}
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	if err := dec.Decode(&instance); err != nil {
		return []string{fmt.Sprintf("Template document is not valid JSON: %v", err)}
	}

	err := v.schema.Validate(instance)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []string{err.Error()}
	}

	var msgs []string
	collectLeaves(verr, &msgs)
	sort.Strings(msgs)
	return msgs
}

// collectLeaves keeps the innermost causes, which name the failing keyword
func collectLeaves(verr *jsonschema.ValidationError, out *[]string) {
	if len(verr.Causes) == 0 {
		location := verr.InstanceLocation
		if location == "" {
			location = "/"
		}
		*out = append(*out, location+": "+strings.TrimSpace(verr.Message))
		return
	}
	for _, cause := range verr.Causes {
		collectLeaves(cause, out)
	}
}

var _ integrationapp.TemplateDocumentValidator = (*TemplateSchemaValidator)(nil)
