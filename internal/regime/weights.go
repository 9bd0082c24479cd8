package regime

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// WeightsConfig holds the top-level component weights. The five weights
// must sum to 1.0 within the configured tolerance; sub-indicator weights
// live with the component definitions.
type WeightsConfig struct {
	Components map[string]float64 `yaml:"components"`
	Validation ValidationConfig   `yaml:"validation"`
}

// ValidationConfig bounds the weight table.
type ValidationConfig struct {
	WeightSumTolerance float64 `yaml:"weight_sum_tolerance"`
	MinWeight          float64 `yaml:"min_weight"`
	MaxWeight          float64 `yaml:"max_weight"`
}

// WeightsLoader handles loading and validation of component weights.
type WeightsLoader struct {
	config *WeightsConfig
}

// NewWeightsLoader creates an empty weights loader.
func NewWeightsLoader() *WeightsLoader {
	return &WeightsLoader{}
}

// LoadFromFile loads component weights from a YAML configuration file.
func (wl *WeightsLoader) LoadFromFile(configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read weights file %s: %w", configPath, err)
	}

	var config WeightsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse weights YAML: %w", err)
	}

	if config.Validation.WeightSumTolerance == 0 {
		config.Validation = defaultValidation()
	}

	if err := validateWeights(&config); err != nil {
		return fmt.Errorf("weights validation failed: %w", err)
	}

	wl.config = &config
	return nil
}

// LoadDefault loads the built-in Playbook v7.1 component weights.
func (wl *WeightsLoader) LoadDefault() error {
	config := &WeightsConfig{
		Components: map[string]float64{
			ComponentVolatility:    0.25,
			ComponentStructure:     0.20,
			ComponentVolumeBreadth: 0.20,
			ComponentMomentum:      0.20,
			ComponentInstitutional: 0.15,
		},
		Validation: defaultValidation(),
	}

	if err := validateWeights(config); err != nil {
		return fmt.Errorf("default weights validation failed: %w", err)
	}

	wl.config = config
	return nil
}

// Weight returns the configured weight for a component.
func (wl *WeightsLoader) Weight(component string) (float64, error) {
	if wl.config == nil {
		return 0, fmt.Errorf("weights not loaded - call LoadFromFile or LoadDefault first")
	}

	w, ok := wl.config.Components[component]
	if !ok {
		return 0, fmt.Errorf("unknown component: %s", component)
	}
	return w, nil
}

// Weights returns a copy of the full component weight table.
func (wl *WeightsLoader) Weights() map[string]float64 {
	if wl.config == nil {
		return nil
	}

	out := make(map[string]float64, len(wl.config.Components))
	for name, w := range wl.config.Components {
		out[name] = w
	}
	return out
}

func defaultValidation() ValidationConfig {
	return ValidationConfig{
		WeightSumTolerance: 0.001,
		MinWeight:          0.05,
		MaxWeight:          0.60,
	}
}

func validateWeights(config *WeightsConfig) error {
	for _, name := range ComponentNames {
		if _, ok := config.Components[name]; !ok {
			return fmt.Errorf("missing required component weight: %s", name)
		}
	}

	sum := 0.0
	for name, w := range config.Components {
		if w <= 0 {
			return fmt.Errorf("component %s has non-positive weight: %.3f", name, w)
		}
		if w < config.Validation.MinWeight {
			return fmt.Errorf("component %s weight (%.3f) below minimum (%.3f)",
				name, w, config.Validation.MinWeight)
		}
		if w > config.Validation.MaxWeight {
			return fmt.Errorf("component %s weight (%.3f) above maximum (%.3f)",
				name, w, config.Validation.MaxWeight)
		}
		sum += w
	}

	if math.Abs(sum-1.0) > config.Validation.WeightSumTolerance {
		return fmt.Errorf("component weights sum to %.4f, expected 1.0 ± %.3f",
			sum, config.Validation.WeightSumTolerance)
	}

	return nil
}

// GetDefaultConfigPath returns the default weights file location.
func GetDefaultConfigPath() string {
	return filepath.Join("config", "component_weights.yaml")
}
