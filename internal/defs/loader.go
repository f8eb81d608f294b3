// internal/defs/loader.go
package defs

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed themes.yaml
var defaultThemesYAML []byte

// ThemeLibrary is a map holding all arena theme definitions, keyed by ID.
var ThemeLibrary map[string]ArenaThemeDefinition

// LoadThemeDefinitions reads the theme configuration file and populates the
// ThemeLibrary. With an empty path the embedded defaults are used.
func LoadThemeDefinitions(path string) error {
	data := defaultThemesYAML
	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read theme definitions file: %w", err)
		}
		data = file
	}

	var themeDefs []ArenaThemeDefinition
	if err := yaml.Unmarshal(data, &themeDefs); err != nil {
		return fmt.Errorf("failed to unmarshal theme definitions: %w", err)
	}

	ThemeLibrary = make(map[string]ArenaThemeDefinition)
	for _, def := range themeDefs {
		if def.ID == "" {
			return fmt.Errorf("theme definition without id")
		}
		if n := len(def.Colors); n < 5 || n > 6 {
			return fmt.Errorf("theme %q: palette must have 5-6 colors, got %d", def.ID, n)
		}
		ThemeLibrary[def.ID] = def.withDefaults()
	}

	return nil
}

// Theme возвращает тему по ID, загружая встроенные определения при
// первом обращении.
func Theme(id string) (ArenaThemeDefinition, error) {
	if ThemeLibrary == nil {
		if err := LoadThemeDefinitions(""); err != nil {
			return ArenaThemeDefinition{}, err
		}
	}
	def, ok := ThemeLibrary[id]
	if !ok {
		return ArenaThemeDefinition{}, fmt.Errorf("unknown arena theme %q", id)
	}
	return def, nil
}
