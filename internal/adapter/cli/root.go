package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmaloney/deepscan/internal/adapter/output/text"
	"github.com/dmaloney/deepscan/internal/domain"
	"github.com/dmaloney/deepscan/internal/usecase/detect"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// Process exit codes derived from the final classification.
const (
	ExitReal      = 0
	ExitFake      = 1
	ExitUncertain = 2
	ExitFailure   = 3
)

// ExitStatus carries a non-zero exit code determined by the scan verdict.
// It is an error so it can flow out of the command tree to the host process.
type ExitStatus struct {
	Code int
}

func (e *ExitStatus) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// VideoScanner defines the dependency required to run the scan commands.
type VideoScanner interface {
	Detect(ctx context.Context, req detect.Request) (detect.Result, error)
	DetectBatch(ctx context.Context, reqs []detect.Request) ([]detect.BatchEntry, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Defaults holds scan defaults resolved from config.
type Defaults struct {
	OutputDir string
	NumFrames int
	Sampling  string
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Scanner  VideoScanner
	Args     Arguments
	Defaults Defaults
	Version  string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "deepscan",
		Short: "Deepfake detection CLI using visual and temporal heuristics",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(scanCommand(deps.Scanner, deps.Defaults, versionString))
	root.AddCommand(batchCommand(deps.Scanner, deps.Defaults))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func scanCommand(scanner VideoScanner, defaults Defaults, version string) *cobra.Command {
	var numFrames int
	var sampling string
	var workers int
	var jsonPath string
	var textPath string
	var outputDir string
	var detailed bool
	var quiet bool

	cmd := &cobra.Command{
		Use:   "scan <video>",
		Short: "Analyze a single video for deepfake indicators",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			result, err := scanner.Detect(ctx, detect.Request{
				VideoPath: args[0],
				NumFrames: numFrames,
				Sampling:  sampling,
				OutputDir: outputDir,
				JSONPath:  jsonPath,
				TextPath:  textPath,
				WriteJSON: jsonPath != "",
				WriteText: textPath != "",
				Detailed:  detailed,
				Workers:   workers,
			})
			if err != nil {
				return err
			}

			if !quiet {
				printReport(cmd.OutOrStdout(), result, sampling, detailed, version)
			}
			if result.JSONPath != "" && !quiet {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Saved JSON results to: %s\n", result.JSONPath)
			}
			if result.TextPath != "" && !quiet {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Saved text report to: %s\n", result.TextPath)
			}

			return exitStatusFor(result.Verdict.Classification)
		},
	}

	addScanFlags(cmd, &numFrames, &sampling, defaults)
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent frame analyses (0 uses the configured default)")
	cmd.Flags().StringVarP(&jsonPath, "output", "o", "", "Path to save JSON results (optional)")
	cmd.Flags().StringVar(&textPath, "output-txt", "", "Path to save text report (optional)")
	cmd.Flags().StringVar(&outputDir, "output-dir", defaults.OutputDir, "Directory for generated reports")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Show detailed analysis report")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress console output (still saves files if specified)")

	return cmd
}

func batchCommand(scanner VideoScanner, defaults Defaults) *cobra.Command {
	var numFrames int
	var sampling string
	var outputDir string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "batch <video>...",
		Short: "Analyze multiple videos and print a summary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			videoPaths, err := expandPatterns(args)
			if err != nil {
				return err
			}
			if len(videoPaths) == 0 {
				return fmt.Errorf("no videos found matching the specified patterns")
			}

			// Progress line only makes sense on an interactive terminal.
			if !quiet && detect.IsOutputTerminal() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Processing %d videos...\n", len(videoPaths))
			}

			reqs := make([]detect.Request, 0, len(videoPaths))
			for _, path := range videoPaths {
				reqs = append(reqs, detect.Request{
					VideoPath: path,
					NumFrames: numFrames,
					Sampling:  sampling,
					OutputDir: outputDir,
					WriteJSON: outputDir != "",
				})
			}

			entries, err := scanner.DetectBatch(ctx, reqs)
			if err != nil {
				return err
			}

			if !quiet {
				printBatchSummary(cmd.OutOrStdout(), entries)
			}
			if outputDir != "" && !quiet {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Results saved to: %s\n", outputDir)
			}

			return nil
		},
	}

	addScanFlags(cmd, &numFrames, &sampling, defaults)
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory to save per-video JSON results")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress console output (still saves files if specified)")

	return cmd
}

func addScanFlags(cmd *cobra.Command, numFrames *int, sampling *string, defaults Defaults) {
	frames := defaults.NumFrames
	if frames <= 0 {
		frames = 10
	}
	strategy := defaults.Sampling
	if strategy == "" {
		strategy = "uniform"
	}
	cmd.Flags().IntVarP(numFrames, "frames", "f", frames, "Number of frames to extract")
	cmd.Flags().StringVar(sampling, "sampling", strategy, "Frame sampling strategy (uniform, scene, emotion)")
}

// printReport renders the scan result to the console using the same layouts
// the text writer persists to disk.
func printReport(out io.Writer, result detect.Result, sampling string, detailed bool, version string) {
	builder := text.NewWriter(time.Now, version)
	artifact := detect.TextArtifact{
		Metadata: result.Metadata,
		Verdict:  result.Verdict,
		Frames:   result.FrameReports,
		Temporal: result.Temporal,
		Sampling: sampling,
		Detailed: detailed,
	}

	var report string
	if detailed {
		report = builder.BuildDetailedReport(artifact)
	} else {
		report = builder.BuildConsoleReport(artifact)
	}
	_, _ = fmt.Fprintln(out, report)
}

func printBatchSummary(out io.Writer, entries []detect.BatchEntry) {
	banner := strings.Repeat("=", 70)
	_, _ = fmt.Fprintf(out, "\n%s\nBATCH PROCESSING SUMMARY\n%s\n", banner, banner)

	var fakeCount, realCount, uncertainCount, errorCount int
	for _, entry := range entries {
		if entry.Err != nil {
			errorCount++
			verdict := domain.Verdict{Classification: domain.ClassificationError}
			_, _ = fmt.Fprintln(out, text.FormatSummary(filepath.Base(entry.VideoPath), verdict))
			continue
		}

		switch {
		case entry.Result.Verdict.Classification.IsFake():
			fakeCount++
		case entry.Result.Verdict.Classification.IsReal():
			realCount++
		default:
			uncertainCount++
		}
		_, _ = fmt.Fprintln(out, text.FormatSummary(entry.Result.Metadata.Filename, entry.Result.Verdict))
	}

	_, _ = fmt.Fprintf(out, "%s\n\n", banner)
	_, _ = fmt.Fprintf(out, "Total: %d\n", len(entries))
	_, _ = fmt.Fprintf(out, "Fake/Likely Fake: %d\n", fakeCount)
	_, _ = fmt.Fprintf(out, "Real/Likely Real: %d\n", realCount)
	_, _ = fmt.Fprintf(out, "Uncertain: %d\n", uncertainCount)
	_, _ = fmt.Fprintf(out, "Errors: %d\n", errorCount)
}

// expandPatterns resolves glob patterns in batch arguments. Plain paths pass
// through untouched.
func expandPatterns(args []string) ([]string, error) {
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[") {
			paths = append(paths, arg)
			continue
		}
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}

// exitStatusFor maps the final classification to the process exit contract.
// Real verdicts return nil so the process exits zero.
func exitStatusFor(classification domain.Classification) error {
	switch {
	case classification.IsFake():
		return &ExitStatus{Code: ExitFake}
	case classification.IsReal():
		return nil
	default:
		return &ExitStatus{Code: ExitUncertain}
	}
}
