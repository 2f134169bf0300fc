package domain

import "fmt"

// Frame is a single decoded video frame in RGB24 layout: row-major,
// three bytes per pixel. Index is the frame's position in the original
// video's frame sequence, not its position in the sampled subset.
// Frames are produced by the video adapter and are read-only to the
// analysis core.
type Frame struct {
	Index  int
	Width  int
	Height int
	Pix    []uint8
}

// At returns the R, G, B components of the pixel at (x, y).
func (f Frame) At(x, y int) (r, g, b uint8) {
	off := (y*f.Width + x) * 3
	return f.Pix[off], f.Pix[off+1], f.Pix[off+2]
}

// VideoMetadata describes a probed video file. It is supplied once per
// detection run and never mutated.
type VideoMetadata struct {
	Filename    string  `json:"filename"`
	Path        string  `json:"path"`
	Duration    float64 `json:"duration"`
	SizeBytes   int64   `json:"size_bytes"`
	Bitrate     int64   `json:"bitrate"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Resolution  string  `json:"resolution"`
	Codec       string  `json:"codec"`
	FPS         float64 `json:"fps"`
	TotalFrames int     `json:"total_frames"`
}

// Artifact kinds scored by the visual detector.
const (
	ArtifactFacialSmoothing       = "facial_smoothing"
	ArtifactLightingInconsistency = "lighting_inconsistency"
	ArtifactBoundaryArtifacts     = "boundary_artifacts"
)

// ArtifactReport holds the per-frame visual artifact scores. Every
// individual score and TotalScore are in [0, 1]. Findings preserve
// detection order.
type ArtifactReport struct {
	FrameIndex            int      `json:"frame_index"`
	FacialSmoothing       float64  `json:"facial_smoothing"`
	LightingInconsistency float64  `json:"lighting_inconsistency"`
	BoundaryArtifacts     float64  `json:"boundary_artifacts"`
	Findings              []string `json:"findings"`
	TotalScore            float64  `json:"total_score"`
	Analysis              string   `json:"analysis"`
}

// TemporalReport holds the results of pairwise motion analysis across an
// ordered frame sequence. TemporalScore is always in [0, 1]:
// len(Findings) / max(FramesExamined-1, 1).
type TemporalReport struct {
	FramesExamined int      `json:"num_frames"`
	Findings       []string `json:"temporal_findings"`
	Analysis       string   `json:"analysis"`
	TemporalScore  float64  `json:"temporal_score"`
}

// Classification labels, ordered from most real to most fake.
type Classification string

const (
	ClassificationReal       Classification = "REAL"
	ClassificationLikelyReal Classification = "LIKELY REAL"
	ClassificationUncertain  Classification = "UNCERTAIN"
	ClassificationLikelyFake Classification = "LIKELY FAKE"
	ClassificationFake       Classification = "FAKE"
	ClassificationError      Classification = "ERROR"
)

// IsFake reports whether the label indicates manipulation.
func (c Classification) IsFake() bool {
	return c == ClassificationFake || c == ClassificationLikelyFake
}

// IsReal reports whether the label indicates authentic footage.
func (c Classification) IsReal() bool {
	return c == ClassificationReal || c == ClassificationLikelyReal
}

// Scores carries the raw scalar evidence behind a verdict.
type Scores struct {
	Combined  float64 `json:"combined"`
	VisualAvg float64 `json:"visual_avg"`
	VisualMax float64 `json:"visual_max"`
	Temporal  float64 `json:"temporal"`
}

// Evidence bundles the compiled observations backing a verdict.
type Evidence struct {
	FrameObservations    string `json:"frame_observations"`
	TemporalObservations string `json:"temporal_observations"`
}

// Verdict is the final structured output for one video.
type Verdict struct {
	Classification Classification `json:"classification"`
	Confidence     int            `json:"confidence"`
	Reasoning      string         `json:"reasoning"`
	Evidence       Evidence       `json:"evidence"`
	Scores         Scores         `json:"scores"`
}

// Glyph returns a terminal marker for a classification, used in batch
// summary lines.
func (c Classification) Glyph() string {
	switch c {
	case ClassificationReal:
		return "✅"
	case ClassificationFake:
		return "❌"
	case ClassificationLikelyReal:
		return "✓"
	case ClassificationLikelyFake:
		return "⚠"
	case ClassificationUncertain:
		return "❓"
	default:
		return "❔"
	}
}

func (c Classification) String() string { return string(c) }

// NewFrame allocates a frame filled with a single grey level. Used by
// tests and by the extractor for placeholder construction.
func NewFrame(index, width, height int, fill uint8) Frame {
	pix := make([]uint8, width*height*3)
	for i := range pix {
		pix[i] = fill
	}
	return Frame{Index: index, Width: width, Height: height, Pix: pix}
}

// Validate checks the frame's internal consistency.
func (f Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("frame %d: invalid dimensions %dx%d", f.Index, f.Width, f.Height)
	}
	if len(f.Pix) != f.Width*f.Height*3 {
		return fmt.Errorf("frame %d: pixel buffer is %d bytes, want %d", f.Index, len(f.Pix), f.Width*f.Height*3)
	}
	return nil
}
