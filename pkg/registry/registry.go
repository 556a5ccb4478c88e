// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

func LoadRegistry(path string) (*TemplateRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg TemplateRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Find returns the template with the given ID
func (r *TemplateRegistry) Find(id string) (*Template, bool) {
	for i := range r.Templates {
		if r.Templates[i].ID == id {
			return &r.Templates[i], true
		}
	}
	return nil, false
}

// ValidatePayload checks an assessment creation payload against the
// template's JSON schema. Templates without a schema accept anything.
func (t *Template) ValidatePayload(payload map[string]interface{}) error {
	if len(t.PayloadSchema) == 0 {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(t.PayloadSchema)
	documentLoader := gojsonschema.NewGoLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validate template payload: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("payload does not match template %s: %s",
			t.ID, strings.Join(problems, "; "))
	}
	return nil
}
