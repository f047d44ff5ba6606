package match

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/dispatchware/fleetsync/pkg/errors"
)

// Rules describes which match strategies run and what they key on.
// Rules are loadable from a YAML file so operators can adjust the custom
// field keys per deployment without a rebuild.
type Rules struct {
	// CustomFieldKeys are the custom field names compared by the
	// custom-field strategy, in priority order.
	CustomFieldKeys []string `yaml:"custom_field_keys"`

	// DisablePlate turns off the license-plate strategy.
	DisablePlate bool `yaml:"disable_plate"`

	// DisableName turns off the name strategy.
	DisableName bool `yaml:"disable_name"`
}

// DefaultRules returns the built-in matching rules.
func DefaultRules() *Rules {
	return &Rules{
		CustomFieldKeys: []string{"employeenumber", "fleetno"},
	}
}

// LoadRules reads matching rules from a YAML file. Fields not present in
// the file keep their defaults.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	rules := DefaultRules()
	if err := yaml.Unmarshal(data, rules); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	if len(rules.CustomFieldKeys) == 0 && rules.DisablePlate && rules.DisableName {
		return nil, errors.NewValidationError("rules", path, "all match strategies disabled")
	}

	return rules, nil
}

// Strategies builds the ordered strategy chain described by the rules.
func (r *Rules) Strategies() []Strategy {
	var strategies []Strategy
	if len(r.CustomFieldKeys) > 0 {
		strategies = append(strategies, &CustomFieldStrategy{Keys: r.CustomFieldKeys})
	}
	if !r.DisablePlate {
		strategies = append(strategies, &PlateStrategy{})
	}
	if !r.DisableName {
		strategies = append(strategies, &NameStrategy{})
	}
	return strategies
}
