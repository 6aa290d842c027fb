package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk shape of a custom rule set.
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadFromFile reads a YAML rule set from disk. The file replaces the default
// rules entirely; operators who want the defaults plus extras copy them in.
func LoadFromFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied config path
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	if len(rf.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s contains no rules", path)
	}

	return rf.Rules, nil
}
