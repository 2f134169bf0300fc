package detect

import (
	"context"
	"time"

	"github.com/dmaloney/deepscan/internal/domain"
)

// MetadataProber abstracts container inspection for a video file.
type MetadataProber interface {
	// Probe returns stream-level metadata for the video at path. The file
	// must exist and carry at least one video stream.
	Probe(ctx context.Context, path string) (domain.VideoMetadata, error)
}

// FrameExtractor decodes specific frames from a video file.
type FrameExtractor interface {
	// Extract returns decoded RGB frames for the requested indices, sorted
	// by frame index. Indices that fail to decode are skipped, so the
	// result may be shorter than the request.
	Extract(ctx context.Context, path string, indices []int, meta domain.VideoMetadata) ([]domain.Frame, error)
}

// ArtifactDetector scores a single frame for visual manipulation artifacts.
type ArtifactDetector interface {
	Detect(frame domain.Frame) (domain.ArtifactReport, error)
}

// MotionAnalyzer scores motion continuity across a frame sequence.
type MotionAnalyzer interface {
	Analyze(frames []domain.Frame) (domain.TemporalReport, error)
}

// VerdictSynthesizer folds frame and temporal reports into a verdict.
type VerdictSynthesizer interface {
	Synthesize(frameReports []domain.ArtifactReport, temporal domain.TemporalReport, meta domain.VideoMetadata) domain.Verdict
}

// JSONArtifact encapsulates the JSON report inputs.
type JSONArtifact struct {
	OutputDir  string
	OutputPath string // Overrides OutputDir naming when set
	Metadata   domain.VideoMetadata
	Verdict    domain.Verdict
	Frames     []domain.ArtifactReport
	Temporal   domain.TemporalReport
	Sampling   string
}

// TextArtifact encapsulates the plain-text report inputs.
type TextArtifact struct {
	OutputDir  string
	OutputPath string // Overrides OutputDir naming when set
	Metadata   domain.VideoMetadata
	Verdict    domain.Verdict
	Frames     []domain.ArtifactReport
	Temporal   domain.TemporalReport
	Sampling   string
	Detailed   bool
}

// JSONWriter persists detection output to disk.
type JSONWriter interface {
	Write(ctx context.Context, artifact JSONArtifact) (string, error)
}

// TextWriter persists detection output to disk.
type TextWriter interface {
	Write(ctx context.Context, artifact TextArtifact) (string, error)
}

// Store defines the outbound port for persisting detection history.
type Store interface {
	CreateRun(ctx context.Context, run StoreRun) error
	SaveFindings(ctx context.Context, findings []StoreFinding) error
	Close() error
}

// StoreRun represents a detection run for persistence.
type StoreRun struct {
	RunID          string
	Timestamp      time.Time
	Video          string
	Sampling       string
	FramesAnalyzed int
	Classification string
	Confidence     int
	CombinedScore  float64
}

// StoreFinding represents a single finding record for persistence.
type StoreFinding struct {
	FindingID   string
	RunID       string
	Source      string // "visual" or "temporal"
	FrameIndex  int    // -1 for temporal findings
	Description string
}
