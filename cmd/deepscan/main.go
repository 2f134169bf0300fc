package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dmaloney/deepscan/internal/adapter/cli"
	"github.com/dmaloney/deepscan/internal/adapter/observability"
	"github.com/dmaloney/deepscan/internal/adapter/output/json"
	"github.com/dmaloney/deepscan/internal/adapter/output/text"
	"github.com/dmaloney/deepscan/internal/adapter/store/sqlite"
	"github.com/dmaloney/deepscan/internal/adapter/video"
	"github.com/dmaloney/deepscan/internal/analysis"
	"github.com/dmaloney/deepscan/internal/config"
	"github.com/dmaloney/deepscan/internal/rules"
	"github.com/dmaloney/deepscan/internal/sampler"
	"github.com/dmaloney/deepscan/internal/synthesis"
	"github.com/dmaloney/deepscan/internal/usecase/detect"
	"github.com/dmaloney/deepscan/internal/version"
)

func main() {
	if err := run(); err != nil {
		var status *cli.ExitStatus
		if errors.As(err, &status) {
			os.Exit(status.Code)
		}
		log.Println(err)
		os.Exit(cli.ExitFailure)
	}
}

func run() error {
	// Create cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "deepscan",
		EnvPrefix:   "DEEPSCAN",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	detectionRules := loadRules(cfg.Rules.Path)

	prober := video.NewProber()
	prober.FFprobePath = cfg.Extraction.FFprobePath

	extractor := video.NewExtractor()
	extractor.FFmpegPath = cfg.Extraction.FFmpegPath
	extractor.Workers = cfg.Analysis.Workers
	if cfg.Extraction.Timeout != "" {
		if parsed, err := time.ParseDuration(cfg.Extraction.Timeout); err == nil {
			extractor.Timeout = parsed
		} else {
			log.Printf("warning: invalid extraction timeout %q, using default", cfg.Extraction.Timeout)
		}
	}

	jsonWriter := json.NewWriter(time.Now, version.Value())
	textWriter := text.NewWriter(time.Now, version.Value())

	var logger detect.Logger
	if cfg.Observability.Logging.Enabled {
		logger = buildLogger(cfg.Observability.Logging)
	}

	// Initialize store if enabled; detection proceeds without persistence on
	// any store failure.
	var runStore detect.Store
	if cfg.Store.Enabled {
		storeDir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(storeDir, 0755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else {
			sqliteStore, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				log.Printf("warning: failed to initialize store: %v", err)
			} else {
				runStore = sqliteStore
				defer runStore.Close()
			}
		}
	}

	registry := sampler.NewRegistry()
	if err := registry.RegisterHook(sampler.NewSceneTransitionHook(), false); err != nil {
		log.Printf("warning: failed to register scene transition hook: %v", err)
	}

	orchestrator := detect.NewOrchestrator(detect.OrchestratorDeps{
		Prober:      prober,
		Extractor:   extractor,
		Detector:    analysis.NewDetector(detectionRules),
		Motion:      analysis.NewTemporalAnalyzer(),
		Synthesizer: synthesis.NewSynthesizer(detectionRules),
		Registry:    registry,
		JSON:        jsonWriter,
		Text:        textWriter,
		Store:       runStore,
		Logger:      logger,
		Workers:     cfg.Analysis.Workers,
	})

	root := cli.NewRootCommand(cli.Dependencies{
		Scanner: orchestrator,
		Defaults: cli.Defaults{
			OutputDir: cfg.Output.Directory,
			NumFrames: cfg.Analysis.NumFrames,
			Sampling:  cfg.Analysis.Sampling,
		},
		Version: version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return err
	}
	return nil
}

// loadRules reads threshold overrides when configured, falling back to the
// built-in defaults on any failure.
func loadRules(path string) rules.Rules {
	if path == "" {
		return rules.Default()
	}
	loaded, err := rules.Load(path)
	if err != nil {
		log.Printf("warning: failed to load rules from %s, using defaults: %v", path, err)
		return rules.Default()
	}
	return loaded
}

func buildLogger(cfg config.LoggingConfig) detect.Logger {
	level, err := observability.ParseLevel(cfg.Level)
	if err != nil {
		log.Printf("warning: %v, using info", err)
	}
	format, err := observability.ParseFormat(cfg.Format)
	if err != nil {
		log.Printf("warning: %v, using human", err)
	}
	return observability.NewDetectionLogger(level, format)
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "deepscan"))
	}
	return paths
}

// Compile-time interface compliance checks
var _ detect.MetadataProber = (*video.Prober)(nil)
var _ detect.FrameExtractor = (*video.Extractor)(nil)
var _ detect.ArtifactDetector = (*analysis.Detector)(nil)
var _ detect.MotionAnalyzer = (*analysis.TemporalAnalyzer)(nil)
var _ detect.VerdictSynthesizer = (*synthesis.Synthesizer)(nil)
var _ detect.JSONWriter = (*json.Writer)(nil)
var _ detect.TextWriter = (*text.Writer)(nil)
var _ detect.Store = (*sqlite.Store)(nil)
var _ cli.VideoScanner = (*detect.Orchestrator)(nil)
