package analysis

import (
	"fmt"
	"strings"

	"github.com/dmaloney/deepscan/internal/domain"
	"github.com/dmaloney/deepscan/internal/rules"
)

// Heuristic trigger points, calibrated against 8-bit luminance planes.
const (
	// Texture variance below lowTextureVariance indicates heavy smoothing;
	// below moderateTextureVariance it is merely suspicious.
	lowTextureVariance      = 100.0
	moderateTextureVariance = 200.0

	// Gradient magnitude spread below this indicates unnaturally even light.
	uniformLightingStd = 20.0

	// Edge densities outside this band point at blended boundaries (too few
	// edges) or generation noise (too many).
	lowEdgeDensity  = 0.05
	highEdgeDensity = 0.20

	// Canny hysteresis thresholds.
	cannyLow  = 50.0
	cannyHigh = 150.0
)

// Per-heuristic scores assigned when a trigger fires.
const (
	heavySmoothingScore    = 0.7
	moderateSmoothingScore = 0.4
	uniformLightingScore   = 0.6
	lowEdgeScore           = 0.5
	highEdgeScore          = 0.4
)

// Detector scores individual frames for visual manipulation artifacts. All
// heuristics are deterministic pixel math; a given frame always produces the
// same report.
type Detector struct {
	rules rules.Rules
}

// NewDetector constructs a frame detector using the supplied rule weights.
func NewDetector(r rules.Rules) *Detector {
	return &Detector{rules: r}
}

// Detect analyzes one frame and returns its artifact report. The frame must
// carry a well-formed RGB pixel buffer.
func (d *Detector) Detect(frame domain.Frame) (domain.ArtifactReport, error) {
	if err := frame.Validate(); err != nil {
		return domain.ArtifactReport{}, fmt.Errorf("analyzing frame %d: %w", frame.Index, err)
	}

	gray := grayscale(frame)
	report := domain.ArtifactReport{
		FrameIndex: frame.Index,
		Findings:   []string{},
	}

	// Texture variance. Smoothed or regenerated faces lose high-frequency
	// detail, which the Laplacian response exposes.
	if variance := laplacianVariance(gray, frame.Width, frame.Height); variance < lowTextureVariance {
		report.FacialSmoothing = heavySmoothingScore
		report.Findings = append(report.Findings, "Low texture variance detected (potential smoothing)")
	} else if variance < moderateTextureVariance {
		report.FacialSmoothing = moderateSmoothingScore
		report.Findings = append(report.Findings, "Moderate texture variance (some smoothing possible)")
	}

	// Lighting spread.
	if gradientMagnitudeStd(gray, frame.Width, frame.Height) < uniformLightingStd {
		report.LightingInconsistency = uniformLightingScore
		report.Findings = append(report.Findings, "Uniform lighting detected (potentially artificial)")
	}

	// Edge density band.
	if density := edgeDensity(gray, frame.Width, frame.Height, cannyLow, cannyHigh); density < lowEdgeDensity {
		report.BoundaryArtifacts = lowEdgeScore
		report.Findings = append(report.Findings, "Low edge density (possible boundary blending)")
	} else if density > highEdgeDensity {
		report.BoundaryArtifacts = highEdgeScore
		report.Findings = append(report.Findings, "High edge density (possible artifacts)")
	}

	total := report.FacialSmoothing*d.rules.VisualWeight(domain.ArtifactFacialSmoothing, 0.25) +
		report.LightingInconsistency*d.rules.VisualWeight(domain.ArtifactLightingInconsistency, 0.20) +
		report.BoundaryArtifacts*d.rules.VisualWeight(domain.ArtifactBoundaryArtifacts, 0.20)
	report.TotalScore = clamp01(total)
	report.Analysis = formatFrameAnalysis(frame.Index, report.Findings, report.TotalScore)

	return report, nil
}

// formatFrameAnalysis renders a frame report as the human-readable block
// embedded in detailed output.
func formatFrameAnalysis(frameIndex int, findings []string, totalScore float64) string {
	if len(findings) == 0 {
		return fmt.Sprintf("Frame %d: No significant artifacts detected. Visual quality appears natural.", frameIndex)
	}

	parts := []string{fmt.Sprintf("Frame %d Analysis:", frameIndex)}
	for _, finding := range findings {
		parts = append(parts, "  - "+finding)
	}

	switch {
	case totalScore > 0.6:
		parts = append(parts, fmt.Sprintf("  Overall artifact score: %.2f (HIGH - suspicious)", totalScore))
	case totalScore > 0.3:
		parts = append(parts, fmt.Sprintf("  Overall artifact score: %.2f (MODERATE)", totalScore))
	default:
		parts = append(parts, fmt.Sprintf("  Overall artifact score: %.2f (LOW - appears natural)", totalScore))
	}

	return strings.Join(parts, "\n")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
