package text

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmaloney/deepscan/internal/usecase/detect"
)

const (
	engineName  = "rule-based-heuristics"
	bannerWidth = 70
)

type clock func() time.Time

// Writer renders detection results into plain-text report files.
type Writer struct {
	now     clock
	version string
}

// NewWriter constructs a text writer with a timestamp supplier.
func NewWriter(now clock, version string) *Writer {
	return &Writer{now: now, version: version}
}

// Write persists a text report to disk. Detailed artifacts get the full
// evidence breakdown; otherwise the compact console layout is used.
func (w *Writer) Write(ctx context.Context, artifact detect.TextArtifact) (string, error) {
	path := artifact.OutputPath
	if path == "" {
		path = filepath.Join(artifact.OutputDir, reportFilename(artifact.Metadata.Filename))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}

	var content string
	if artifact.Detailed {
		content = w.BuildDetailedReport(artifact)
	} else {
		content = w.BuildConsoleReport(artifact)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write text report: %w", err)
	}

	return path, nil
}

// BuildConsoleReport renders the compact report shown after a scan.
func (w *Writer) BuildConsoleReport(artifact detect.TextArtifact) string {
	banner := strings.Repeat("=", bannerWidth)

	lines := []string{
		banner,
		"DEEPFAKE DETECTION ANALYSIS REPORT",
		banner,
		"",
		fmt.Sprintf("Video: %s", artifact.Metadata.Filename),
		fmt.Sprintf("Duration: %.2fs", artifact.Metadata.Duration),
		fmt.Sprintf("Resolution: %s", artifact.Metadata.Resolution),
		fmt.Sprintf("Frames Analyzed: %d", len(artifact.Frames)),
		"",
		fmt.Sprintf("Classification: %s", artifact.Verdict.Classification),
		fmt.Sprintf("Confidence: %d%%", artifact.Verdict.Confidence),
		"",
		"ANALYSIS:",
		"",
		artifact.Verdict.Reasoning,
		"",
		banner,
		fmt.Sprintf("Analysis completed at: %s", w.now().Format("2006-01-02 15:04:05")),
		banner,
	}

	return strings.Join(lines, "\n")
}

// BuildDetailedReport renders the full report with all compiled evidence.
func (w *Writer) BuildDetailedReport(artifact detect.TextArtifact) string {
	banner := strings.Repeat("=", bannerWidth)
	divider := strings.Repeat("-", bannerWidth)
	meta := artifact.Metadata

	frameObservations := artifact.Verdict.Evidence.FrameObservations
	if frameObservations == "" {
		frameObservations = "No frame observations available"
	}
	temporalObservations := artifact.Verdict.Evidence.TemporalObservations
	if temporalObservations == "" {
		temporalObservations = "No temporal observations available"
	}

	lines := []string{
		banner,
		"DEEPFAKE DETECTION - DETAILED ANALYSIS REPORT",
		banner,
		"",
		"VIDEO INFORMATION",
		divider,
		fmt.Sprintf("Filename: %s", meta.Filename),
		fmt.Sprintf("Path: %s", meta.Path),
		fmt.Sprintf("Duration: %.2f seconds", meta.Duration),
		fmt.Sprintf("Resolution: %s", meta.Resolution),
		fmt.Sprintf("Frame Rate: %.2f fps", meta.FPS),
		fmt.Sprintf("Codec: %s", meta.Codec),
		fmt.Sprintf("File Size: %.2f MB", float64(meta.SizeBytes)/1024/1024),
		"",
		"DETECTION RESULTS",
		divider,
		fmt.Sprintf("Classification: %s", artifact.Verdict.Classification),
		fmt.Sprintf("Confidence Level: %d%%", artifact.Verdict.Confidence),
		fmt.Sprintf("Frames Analyzed: %d", len(artifact.Frames)),
		fmt.Sprintf("Sampling Strategy: %s", artifact.Sampling),
		"",
		"FRAME-LEVEL OBSERVATIONS",
		divider,
		frameObservations,
		"",
		"TEMPORAL OBSERVATIONS",
		divider,
		temporalObservations,
		"",
		"FINAL REASONING",
		divider,
		artifact.Verdict.Reasoning,
		"",
		banner,
		fmt.Sprintf("Engine: %s %s", engineName, w.version),
		fmt.Sprintf("Analysis Timestamp: %s", w.now().Format(time.RFC3339)),
		banner,
	}

	return strings.Join(lines, "\n")
}

// reportFilename derives the default report name from the video filename.
func reportFilename(videoFilename string) string {
	stem := strings.TrimSuffix(videoFilename, filepath.Ext(videoFilename))
	if stem == "" {
		stem = "video"
	}
	return stem + "_report.txt"
}
