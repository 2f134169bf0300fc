package text_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmaloney/deepscan/internal/adapter/output/text"
	"github.com/dmaloney/deepscan/internal/domain"
	"github.com/dmaloney/deepscan/internal/usecase/detect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC)
}

func sampleArtifact(outputDir string) detect.TextArtifact {
	return detect.TextArtifact{
		OutputDir: outputDir,
		Metadata: domain.VideoMetadata{
			Filename:   "interview.mp4",
			Path:       "/videos/interview.mp4",
			Duration:   12.5,
			SizeBytes:  2_097_152,
			Resolution: "1280x720",
			Codec:      "h264",
			FPS:        29.97,
		},
		Verdict: domain.Verdict{
			Classification: domain.ClassificationLikelyFake,
			Confidence:     61,
			Reasoning:      "The video exhibits several suspicious characteristics.",
			Evidence: domain.Evidence{
				FrameObservations:    "Frame 0 Analysis:\n  - Low texture variance detected (potential smoothing)",
				TemporalObservations: "Temporal analysis across 2 frames: Motion appears continuous and natural.",
			},
		},
		Frames: []domain.ArtifactReport{
			{FrameIndex: 0}, {FrameIndex: 187},
		},
		Temporal: domain.TemporalReport{FramesExamined: 2},
		Sampling: "uniform",
	}
}

func TestWriterConsoleReport(t *testing.T) {
	tempDir := t.TempDir()
	writer := text.NewWriter(fixedClock, "v1.2.3")

	path, err := writer.Write(context.Background(), sampleArtifact(tempDir))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tempDir, "interview_report.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(data)

	assert.Contains(t, report, "DEEPFAKE DETECTION ANALYSIS REPORT")
	assert.Contains(t, report, "Video: interview.mp4")
	assert.Contains(t, report, "Duration: 12.50s")
	assert.Contains(t, report, "Resolution: 1280x720")
	assert.Contains(t, report, "Frames Analyzed: 2")
	assert.Contains(t, report, "Classification: LIKELY FAKE")
	assert.Contains(t, report, "Confidence: 61%")
	assert.Contains(t, report, "ANALYSIS:")
	assert.Contains(t, report, "The video exhibits several suspicious characteristics.")
	assert.Contains(t, report, "Analysis completed at: 2025-10-20 12:00:00")
	assert.NotContains(t, report, "FRAME-LEVEL OBSERVATIONS")
}

func TestWriterDetailedReport(t *testing.T) {
	tempDir := t.TempDir()
	writer := text.NewWriter(fixedClock, "v1.2.3")

	artifact := sampleArtifact(tempDir)
	artifact.Detailed = true

	path, err := writer.Write(context.Background(), artifact)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(data)

	assert.Contains(t, report, "DEEPFAKE DETECTION - DETAILED ANALYSIS REPORT")
	assert.Contains(t, report, "VIDEO INFORMATION")
	assert.Contains(t, report, "Path: /videos/interview.mp4")
	assert.Contains(t, report, "Duration: 12.50 seconds")
	assert.Contains(t, report, "Frame Rate: 29.97 fps")
	assert.Contains(t, report, "Codec: h264")
	assert.Contains(t, report, "File Size: 2.00 MB")
	assert.Contains(t, report, "DETECTION RESULTS")
	assert.Contains(t, report, "Confidence Level: 61%")
	assert.Contains(t, report, "Sampling Strategy: uniform")
	assert.Contains(t, report, "FRAME-LEVEL OBSERVATIONS")
	assert.Contains(t, report, "Low texture variance detected (potential smoothing)")
	assert.Contains(t, report, "TEMPORAL OBSERVATIONS")
	assert.Contains(t, report, "Motion appears continuous and natural.")
	assert.Contains(t, report, "FINAL REASONING")
	assert.Contains(t, report, "Engine: rule-based-heuristics v1.2.3")
	assert.Contains(t, report, "Analysis Timestamp: 2025-10-20T12:00:00Z")
}

func TestWriterDetailedReportPlaceholders(t *testing.T) {
	writer := text.NewWriter(fixedClock, "dev")

	artifact := sampleArtifact(t.TempDir())
	artifact.Detailed = true
	artifact.Verdict.Evidence = domain.Evidence{}

	report := writer.BuildDetailedReport(artifact)

	assert.Contains(t, report, "No frame observations available")
	assert.Contains(t, report, "No temporal observations available")
}

func TestWriterHonorsOutputPathOverride(t *testing.T) {
	tempDir := t.TempDir()
	writer := text.NewWriter(fixedClock, "dev")

	artifact := sampleArtifact(tempDir)
	artifact.OutputPath = filepath.Join(tempDir, "reports", "custom.txt")

	path, err := writer.Write(context.Background(), artifact)

	require.NoError(t, err)
	assert.Equal(t, artifact.OutputPath, path)
	assert.FileExists(t, path)
}

func TestWriterBannerWidth(t *testing.T) {
	writer := text.NewWriter(fixedClock, "dev")

	report := writer.BuildConsoleReport(sampleArtifact(t.TempDir()))

	lines := strings.Split(report, "\n")
	assert.Equal(t, strings.Repeat("=", 70), lines[0])
}

func TestFormatSummary(t *testing.T) {
	tests := []struct {
		name    string
		verdict domain.Verdict
		want    string
	}{
		{
			name:    "real",
			verdict: domain.Verdict{Classification: domain.ClassificationReal, Confidence: 92},
			want:    "✅ clip.mp4: Real (92% confidence)",
		},
		{
			name:    "likely fake",
			verdict: domain.Verdict{Classification: domain.ClassificationLikelyFake, Confidence: 61},
			want:    "⚠ clip.mp4: Likely Fake (61% confidence)",
		},
		{
			name:    "uncertain",
			verdict: domain.Verdict{Classification: domain.ClassificationUncertain, Confidence: 50},
			want:    "❓ clip.mp4: Uncertain (50% confidence)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, text.FormatSummary("clip.mp4", tt.verdict))
		})
	}
}
