package fields

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultMaxVariations is how many distinct shape nodes a root
	// lineage may accumulate before demoting to map mode.
	DefaultMaxVariations = 8
	// DefaultCapacityStep is the chunk size store capacity grows by.
	DefaultCapacityStep = 4
)

// Tuning controls the growth policy of one Space.
type Tuning struct {
	MaxVariations int `yaml:"max_variations"`
	CapacityStep  int `yaml:"capacity_step"`
}

func DefaultTuning() Tuning {
	return Tuning{
		MaxVariations: DefaultMaxVariations,
		CapacityStep:  DefaultCapacityStep,
	}
}

// normalized replaces out-of-range fields with their defaults.
func (t Tuning) normalized() Tuning {
	if t.MaxVariations < 1 {
		t.MaxVariations = DefaultMaxVariations
	}
	if t.CapacityStep < 1 {
		t.CapacityStep = DefaultCapacityStep
	}
	return t
}

// LoadTuning reads tuning from a YAML file. Absent keys keep their
// defaults; present keys must be positive.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("parse tuning: %w", err)
	}
	if t.MaxVariations < 1 {
		return t, fmt.Errorf("tuning: max_variations must be positive, got %d", t.MaxVariations)
	}
	if t.CapacityStep < 1 {
		return t, fmt.Errorf("tuning: capacity_step must be positive, got %d", t.CapacityStep)
	}
	return t, nil
}
