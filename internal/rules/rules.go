// Package rules holds the declarative weight/threshold table consumed by
// the artifact detector and the verdict synthesizer. The table is loaded
// once at construction time and treated as immutable afterwards. A missing
// or malformed rules file is never an error: the built-in defaults are
// substituted and the cause is reported for logging only.
package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dmaloney/deepscan/internal/domain"
)

// ArtifactRule configures a single scored artifact kind.
type ArtifactRule struct {
	Weight float64 `yaml:"weight"`
}

// Thresholds hold the classification cut points on the combined score.
type Thresholds struct {
	High      float64 `yaml:"high_confidence_threshold"`
	Moderate  float64 `yaml:"moderate_confidence_threshold"`
	Uncertain float64 `yaml:"uncertain_threshold"`
}

// Rules is the full detection rule table.
type Rules struct {
	Visual     map[string]ArtifactRule `yaml:"visual_rules"`
	Temporal   map[string]ArtifactRule `yaml:"temporal_rules"`
	Confidence Thresholds              `yaml:"confidence_calculation"`
}

// Default returns the built-in rule table. It matches the values shipped
// with the default agent definition.
func Default() Rules {
	return Rules{
		Visual: map[string]ArtifactRule{
			domain.ArtifactFacialSmoothing:       {Weight: 0.25},
			domain.ArtifactLightingInconsistency: {Weight: 0.20},
			domain.ArtifactBoundaryArtifacts:     {Weight: 0.20},
		},
		Temporal: map[string]ArtifactRule{
			"motion_continuity":  {Weight: 0.30},
			"temporal_artifacts": {Weight: 0.50},
		},
		Confidence: Thresholds{
			High:      0.75,
			Moderate:  0.55,
			Uncertain: 0.45,
		},
	}
}

// Load reads a rule table from a YAML file. The returned Rules value is
// always usable: on any failure the built-in defaults are returned
// alongside the error so the caller can log the substitution.
func Load(path string) (Rules, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("read rules file %s: %w", path, err)
	}

	var loaded Rules
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return Default(), fmt.Errorf("parse rules file %s: %w", path, err)
	}

	return withDefaults(loaded), nil
}

// withDefaults fills any section the file omitted from the built-in table.
// Weights are deliberately NOT renormalized: the table is allowed to sum to
// anything, and the detector clamps only the final total.
func withDefaults(loaded Rules) Rules {
	def := Default()

	if len(loaded.Visual) == 0 {
		loaded.Visual = def.Visual
	}
	if len(loaded.Temporal) == 0 {
		loaded.Temporal = def.Temporal
	}
	if loaded.Confidence.High == 0 {
		loaded.Confidence.High = def.Confidence.High
	}
	if loaded.Confidence.Moderate == 0 {
		loaded.Confidence.Moderate = def.Confidence.Moderate
	}
	if loaded.Confidence.Uncertain == 0 {
		loaded.Confidence.Uncertain = def.Confidence.Uncertain
	}

	return loaded
}

// VisualWeight returns the configured weight for an artifact kind, or the
// fallback when the kind is absent from the table.
func (r Rules) VisualWeight(kind string, fallback float64) float64 {
	if rule, ok := r.Visual[kind]; ok {
		return rule.Weight
	}
	return fallback
}
