package config

// Config represents the full application configuration.
type Config struct {
	Analysis      AnalysisConfig      `yaml:"analysis"`
	Rules         RulesConfig         `yaml:"rules"`
	Extraction    ExtractionConfig    `yaml:"extraction"`
	Output        OutputConfig        `yaml:"output"`
	Store         StoreConfig         `yaml:"store"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// AnalysisConfig configures frame sampling and analysis concurrency.
type AnalysisConfig struct {
	NumFrames int    `yaml:"numFrames"`
	Sampling  string `yaml:"sampling"`
	Workers   int    `yaml:"workers"`
}

// RulesConfig points at an optional detection rules override file.
type RulesConfig struct {
	Path string `yaml:"path"`
}

// ExtractionConfig configures the external frame extraction tooling.
type ExtractionConfig struct {
	FFprobePath string `yaml:"ffprobePath"`
	FFmpegPath  string `yaml:"ffmpegPath"`
	Timeout     string `yaml:"timeout"`
}

type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// StoreConfig configures the persistence layer.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures structured run logging.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`  // debug, info, error
	Format  string `yaml:"format"` // json, human
}

// Merge combines multiple configuration instances, prioritising the latter ones.
func Merge(configs ...Config) Config {
	result := Config{}
	for _, cfg := range configs {
		result = merge(result, cfg)
	}
	return result
}

func merge(base, overlay Config) Config {
	result := base

	result.Analysis = chooseAnalysis(base.Analysis, overlay.Analysis)
	result.Rules = chooseRules(base.Rules, overlay.Rules)
	result.Extraction = chooseExtraction(base.Extraction, overlay.Extraction)
	result.Output = chooseOutput(base.Output, overlay.Output)
	result.Store = chooseStore(base.Store, overlay.Store)
	result.Observability = chooseObservability(base.Observability, overlay.Observability)

	return result
}

func chooseAnalysis(base, overlay AnalysisConfig) AnalysisConfig {
	result := base
	if overlay.NumFrames != 0 {
		result.NumFrames = overlay.NumFrames
	}
	if overlay.Sampling != "" {
		result.Sampling = overlay.Sampling
	}
	if overlay.Workers != 0 {
		result.Workers = overlay.Workers
	}
	return result
}

func chooseRules(base, overlay RulesConfig) RulesConfig {
	if overlay.Path != "" {
		return overlay
	}
	return base
}

func chooseExtraction(base, overlay ExtractionConfig) ExtractionConfig {
	result := base
	if overlay.FFprobePath != "" {
		result.FFprobePath = overlay.FFprobePath
	}
	if overlay.FFmpegPath != "" {
		result.FFmpegPath = overlay.FFmpegPath
	}
	if overlay.Timeout != "" {
		result.Timeout = overlay.Timeout
	}
	return result
}

func chooseOutput(base, overlay OutputConfig) OutputConfig {
	if overlay.Directory != "" {
		return overlay
	}
	return base
}

func chooseStore(base, overlay StoreConfig) StoreConfig {
	if overlay.Enabled || overlay.Path != "" {
		return overlay
	}
	return base
}

func chooseObservability(base, overlay ObservabilityConfig) ObservabilityConfig {
	result := base
	if overlay.Logging.Enabled || overlay.Logging.Level != "" || overlay.Logging.Format != "" {
		result.Logging = overlay.Logging
	}
	return result
}
