package people

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadOverrides reads the curated metadata file: a JSON object keyed by
// person name with birth_year/death_year corrections.
func LoadOverrides(path string) (map[string]YearsOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open overrides: %w", err)
	}
	var overrides map[string]YearsOverride
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse overrides: %w", err)
	}
	return overrides, nil
}
