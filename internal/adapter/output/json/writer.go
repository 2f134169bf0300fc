package json

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmaloney/deepscan/internal/domain"
	"github.com/dmaloney/deepscan/internal/usecase/detect"
)

// engineName identifies the analysis engine in report metadata.
const engineName = "rule-based-heuristics"

type clock func() time.Time

// Writer implements the detect.JSONWriter interface.
type Writer struct {
	now     clock
	version string
}

// NewWriter creates a new JSON writer. The version string is embedded in
// each report's system section.
func NewWriter(now clock, version string) *Writer {
	return &Writer{now: now, version: version}
}

// document is the on-disk report layout.
type document struct {
	VideoPath string               `json:"video_path"`
	Filename  string               `json:"filename"`
	Metadata  domain.VideoMetadata `json:"metadata"`
	Detection detection            `json:"detection"`
	Analysis  analysisSection      `json:"analysis"`
	System    system               `json:"system"`
}

type detection struct {
	Classification    string `json:"classification"`
	Confidence        int    `json:"confidence"`
	NumFramesAnalyzed int    `json:"num_frames_analyzed"`
	SamplingStrategy  string `json:"sampling_strategy"`
}

type analysisSection struct {
	Reasoning string                  `json:"reasoning"`
	Evidence  domain.Evidence         `json:"evidence"`
	Scores    domain.Scores           `json:"scores"`
	Frames    []domain.ArtifactReport `json:"frames"`
	Temporal  domain.TemporalReport   `json:"temporal"`
}

type system struct {
	Engine    string `json:"engine"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// Write persists a detection result to disk as a JSON file. When the
// artifact carries no explicit output path, the report lands next to the
// other reports in the output directory, named after the video.
func (w *Writer) Write(ctx context.Context, artifact detect.JSONArtifact) (string, error) {
	path := artifact.OutputPath
	if path == "" {
		path = filepath.Join(artifact.OutputDir, reportFilename(artifact.Metadata.Filename))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	doc := document{
		VideoPath: artifact.Metadata.Path,
		Filename:  artifact.Metadata.Filename,
		Metadata:  artifact.Metadata,
		Detection: detection{
			Classification:    artifact.Verdict.Classification.String(),
			Confidence:        artifact.Verdict.Confidence,
			NumFramesAnalyzed: len(artifact.Frames),
			SamplingStrategy:  artifact.Sampling,
		},
		Analysis: analysisSection{
			Reasoning: artifact.Verdict.Reasoning,
			Evidence:  artifact.Verdict.Evidence,
			Scores:    artifact.Verdict.Scores,
			Frames:    artifact.Frames,
			Temporal:  artifact.Temporal,
		},
		System: system{
			Engine:    engineName,
			Version:   w.version,
			Timestamp: w.now().Format(time.RFC3339),
		},
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create json file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(doc); err != nil {
		return "", fmt.Errorf("failed to encode report to json: %w", err)
	}

	return path, nil
}

// reportFilename derives the default report name from the video filename.
func reportFilename(videoFilename string) string {
	stem := strings.TrimSuffix(videoFilename, filepath.Ext(videoFilename))
	if stem == "" {
		stem = "video"
	}
	return stem + "_analysis.json"
}
