package config

import (
	"fmt"
	"log"
	"os"

	"lendinghub/internal/core/domain"

	"gopkg.in/yaml.v3"
)

// LoadPolicy overlays the YAML file at path onto base. Keys missing from the file keep base values.
// An empty path returns base unchanged (after validation).
func LoadPolicy(path string, base domain.Policy) (domain.Policy, error) {
	policy := base
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return domain.Policy{}, fmt.Errorf("read policy file: %w", err)
		}
		if err := yaml.Unmarshal(data, &policy); err != nil {
			return domain.Policy{}, fmt.Errorf("parse policy file %s: %w", path, err)
		}
		log.Printf("✅ Lending policy loaded from %s", path)
	}

	if err := policy.Validate(); err != nil {
		return domain.Policy{}, fmt.Errorf("invalid lending policy: %w", err)
	}
	return policy, nil
}
