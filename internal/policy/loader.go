package policy

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// --------------------------------------------------
// SEED FILE LOADER
// --------------------------------------------------

// SeedFile is a YAML document of policies to upsert for a restaurant,
// used for local development and venue onboarding. Definitions use
// the same tagged shape as the JSON codec.
type SeedFile struct {
	RestaurantID string   `yaml:"restaurant_id"`
	Policies     []Policy `yaml:"policies"`
}

// LoadSeedFile parses a policy seed file. The definition subtree is
// round-tripped through JSON so the tagged condition/action codec
// applies to YAML input too.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy seed %s: %w", path, err)
	}

	var raw struct {
		RestaurantID string           `yaml:"restaurant_id"`
		Policies     []map[string]any `yaml:"policies"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse policy seed %s: %w", path, err)
	}

	out := &SeedFile{RestaurantID: raw.RestaurantID}
	for i, doc := range raw.Policies {
		encoded, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("policy %d in %s: %w", i, path, err)
		}
		var p Policy
		if err := json.Unmarshal(encoded, &p); err != nil {
			return nil, fmt.Errorf("policy %d in %s: %w", i, path, err)
		}
		out.Policies = append(out.Policies, p)
	}
	return out, nil
}
