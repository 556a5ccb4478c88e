// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"hiresphere-backend/pkg/registry"
)

var registryPath string

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// Add command flags
	idAdd := addCmd.String("id", "", "Template ID (e.g., golang-backend-core)")
	displayName := addCmd.String("displayName", "", "Display Name (e.g., Go Backend Fundamentals)")
	description := addCmd.String("description", "", "Description")
	skill := addCmd.String("skill", "", "Assessed skill (e.g., golang)")
	category := addCmd.String("category", "", "Category (e.g., engineering)")
	version := addCmd.String("version", "1.0.0", "Version")
	duration := addCmd.Int("duration", 60, "Duration in minutes")
	passingScore := addCmd.Int("passingScore", 70, "Passing score (0-100)")
	tags := addCmd.String("tags", "", "Comma-separated tags")
	addCmd.StringVar(&registryPath, "path", "configs/assessment-templates.json", "Path to registry file")

	// Update command flags
	idUpdate := updateCmd.String("id", "", "Template ID to update")
	field := updateCmd.String("field", "", "Field to update (displayName, description, skill, category, version, duration, passingScore)")
	value := updateCmd.String("value", "", "New value for the field")
	updateCmd.StringVar(&registryPath, "path", "configs/assessment-templates.json", "Path to registry file")

	// Validate command flags
	validateCmd.StringVar(&registryPath, "path", "configs/assessment-templates.json", "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *displayName == "" || *skill == "" {
			fmt.Println("Error: id, displayName, and skill are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		template := registry.Template{
			ID:                 *idAdd,
			DisplayName:        *displayName,
			Description:        *description,
			Skill:              *skill,
			Category:           *category,
			Version:            *version,
			DurationMinutes:    *duration,
			PassingScore:       *passingScore,
			PayloadSchema:      map[string]interface{}{},
			ProctoringDefaults: map[string]interface{}{},
			Tags:               splitTags(*tags),
		}
		err := addTemplate(&template)
		if err != nil {
			fmt.Printf("Error adding template: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added template: %s\n", *idAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		err := updateTemplate(*idUpdate, *field, *value)
		if err != nil {
			fmt.Printf("Error updating template: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated template %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		err := validateRegistry()
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Registry validation passed.")

	case "help":
		fallthrough
	default:
		help()
	}
}

func splitTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func addTemplate(template *registry.Template) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		// If file doesn't exist, create new registry
		if os.IsNotExist(err) {
			reg = &registry.TemplateRegistry{
				Version:     "1.0.0",
				LastUpdated: time.Now().Format(time.RFC3339),
				Templates:   []registry.Template{},
			}
		} else {
			return fmt.Errorf("failed to load registry: %w", err)
		}
	}

	// Check if template already exists
	for _, existing := range reg.Templates {
		if existing.ID == template.ID {
			return fmt.Errorf("template with ID %s already exists", template.ID)
		}
	}

	reg.Templates = append(reg.Templates, *template)
	reg.LastUpdated = time.Now().Format(time.RFC3339)

	return saveRegistry(reg, registryPath)
}

func updateTemplate(id, field, value string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	found := false
	for i := range reg.Templates {
		if reg.Templates[i].ID == id {
			found = true
			switch field {
			case "displayName":
				reg.Templates[i].DisplayName = value
			case "description":
				reg.Templates[i].Description = value
			case "skill":
				reg.Templates[i].Skill = value
			case "category":
				reg.Templates[i].Category = value
			case "version":
				reg.Templates[i].Version = value
			case "duration":
				minutes, err := strconv.Atoi(value)
				if err != nil {
					return fmt.Errorf("invalid duration value: %w", err)
				}
				reg.Templates[i].DurationMinutes = minutes
			case "passingScore":
				score, err := strconv.Atoi(value)
				if err != nil {
					return fmt.Errorf("invalid passingScore value: %w", err)
				}
				reg.Templates[i].PassingScore = score
			default:
				return fmt.Errorf("unknown field: %s", field)
			}
			break
		}
	}

	if !found {
		return fmt.Errorf("template with ID %s not found", id)
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return saveRegistry(reg, registryPath)
}

func validateRegistry() error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	if len(reg.Templates) == 0 {
		return fmt.Errorf("registry contains no templates")
	}

	ids := make(map[string]bool)
	for _, template := range reg.Templates {
		if ids[template.ID] {
			return fmt.Errorf("duplicate template ID: %s", template.ID)
		}
		ids[template.ID] = true

		if template.ID == "" {
			return fmt.Errorf("template missing required field: ID")
		}
		if template.DisplayName == "" {
			return fmt.Errorf("template %s missing required field: DisplayName", template.ID)
		}
		if template.Skill == "" {
			return fmt.Errorf("template %s missing required field: Skill", template.ID)
		}
		if template.PassingScore < 0 || template.PassingScore > 100 {
			return fmt.Errorf("template %s has passing score outside 0-100: %d", template.ID, template.PassingScore)
		}
		if template.DurationMinutes <= 0 {
			return fmt.Errorf("template %s has non-positive duration: %d", template.ID, template.DurationMinutes)
		}
	}

	fmt.Printf("Registry validation passed. Found %d templates.\n", len(reg.Templates))
	return nil
}

// saveRegistry handles saving the registry to file
func saveRegistry(reg *registry.TemplateRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	err = os.WriteFile(path, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}

	return nil
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new assessment template to the registry
  update   Update an existing template's field
  validate Validate the registry file
  help     Show this help message

Examples:
  registry-updater add -id golang-backend-core -displayName "Go Backend Fundamentals" -skill golang -category engineering -duration 90 -passingScore 70
  registry-updater update -id golang-backend-core -field passingScore -value 75
  registry-updater validate -path configs/assessment-templates.json

Use 'registry-updater <command> -h' for more information about a command.`)
}
