// pkg/registry/schema.go
package registry

// TemplateRegistry is the versioned catalog of assessment templates loaded
// from configuration.
type TemplateRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Templates   []Template `json:"templates"`
}

// Template describes one reusable assessment blueprint. PayloadSchema is a
// JSON Schema that assessment creation payloads built from this template
// must satisfy.
type Template struct {
	ID                 string                 `json:"id"`
	DisplayName        string                 `json:"displayName"`
	Description        string                 `json:"description"`
	Skill              string                 `json:"skill"`
	Category           string                 `json:"category"`
	Version            string                 `json:"version"`
	DurationMinutes    int                    `json:"durationMinutes"`
	PassingScore       int                    `json:"passingScore"`
	PayloadSchema      map[string]interface{} `json:"payloadSchema"`
	ProctoringDefaults map[string]interface{} `json:"proctoringDefaults"`
	Tags               []string               `json:"tags"`
}
