package config

// Catalog describes the interviewer personas offered on the setup page.
type Catalog struct {
	DefaultPersona string    `yaml:"default_persona"`
	Personas       []Persona `yaml:"personas"`
}

// Persona is one interviewer style the backend understands.
type Persona struct {
	Type        string `yaml:"type"` // wire value: nice, neutral, mean
	Label       string `yaml:"label"`
	Name        string `yaml:"name"` // label used in lists and headers
	Icon        string `yaml:"icon"`
	Description string `yaml:"description"`
}

// Find returns the persona with the given wire type.
func (c *Catalog) Find(personaType string) (Persona, bool) {
	for _, p := range c.Personas {
		if p.Type == personaType {
			return p, true
		}
	}
	return Persona{}, false
}

// Types returns the wire values in catalog order.
func (c *Catalog) Types() []string {
	types := make([]string, 0, len(c.Personas))
	for _, p := range c.Personas {
		types = append(types, p.Type)
	}
	return types
}

// DisplayName returns the list label for a style, falling back to the raw value.
func (c *Catalog) DisplayName(personaType string) string {
	if p, ok := c.Find(personaType); ok {
		return p.Icon + " " + p.Name
	}
	return personaType
}
