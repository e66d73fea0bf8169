package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed personas.yaml
var defaultPersonas []byte

var knownPersonaTypes = map[string]bool{"nice": true, "neutral": true, "mean": true}

// LoadCatalog loads the persona catalog from filename, or the embedded
// default when filename is empty.
func LoadCatalog(filename string) (*Catalog, error) {
	data := defaultPersonas
	if filename != "" {
		var err error
		data, err = os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", filename, err)
		}
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := validateCatalog(&catalog); err != nil {
		return nil, fmt.Errorf("validating catalog: %w", err)
	}

	return &catalog, nil
}

// validateCatalog checks the catalog only offers styles the backend accepts.
func validateCatalog(catalog *Catalog) error {
	if len(catalog.Personas) == 0 {
		return fmt.Errorf("personas must not be empty")
	}

	seen := make(map[string]bool, len(catalog.Personas))
	for i, p := range catalog.Personas {
		if !knownPersonaTypes[p.Type] {
			return fmt.Errorf("persona %d has unknown type %q", i, p.Type)
		}
		if seen[p.Type] {
			return fmt.Errorf("persona type %q declared twice", p.Type)
		}
		seen[p.Type] = true

		if p.Label == "" {
			return fmt.Errorf("persona %q must have a label", p.Type)
		}
		if p.Name == "" {
			catalog.Personas[i].Name = p.Label
		}
	}

	if catalog.DefaultPersona != "" && !seen[catalog.DefaultPersona] {
		return fmt.Errorf("default_persona %q is not declared", catalog.DefaultPersona)
	}

	return nil
}
