package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/dmaloney/deepscan/internal/domain"
)

// Motion score bounds for consecutive-frame luminance differences.
const (
	// Mean absolute difference above this marks a motion discontinuity.
	largeMotionThreshold = 50.0
	// Below this the footage is suspiciously static or frozen.
	lowMotionThreshold = 5.0
)

// TemporalAnalyzer examines motion continuity across a sequence of sampled
// frames. It flags both jarring discontinuities and frozen stretches, since
// splices produce the former and looped or generated footage the latter.
type TemporalAnalyzer struct{}

// NewTemporalAnalyzer constructs a temporal analyzer.
func NewTemporalAnalyzer() *TemporalAnalyzer {
	return &TemporalAnalyzer{}
}

// Analyze compares each consecutive frame pair by mean absolute luminance
// difference. Frames must share dimensions. Fewer than two frames yield an
// empty report with a zero score.
func (a *TemporalAnalyzer) Analyze(frames []domain.Frame) (domain.TemporalReport, error) {
	report := domain.TemporalReport{
		FramesExamined: len(frames),
		Findings:       []string{},
	}

	grays := make([][]float64, len(frames))
	for i, frame := range frames {
		if err := frame.Validate(); err != nil {
			return domain.TemporalReport{}, fmt.Errorf("temporal analysis frame %d: %w", frame.Index, err)
		}
		if i > 0 && (frame.Width != frames[0].Width || frame.Height != frames[0].Height) {
			return domain.TemporalReport{}, fmt.Errorf(
				"temporal analysis frame %d: dimensions %dx%d do not match %dx%d",
				frame.Index, frame.Width, frame.Height, frames[0].Width, frames[0].Height)
		}
		grays[i] = grayscale(frame)
	}

	for i := 0; i < len(frames)-1; i++ {
		motion := meanAbsDiff(grays[i], grays[i+1])
		if motion > largeMotionThreshold {
			report.Findings = append(report.Findings, fmt.Sprintf(
				"Large motion discontinuity between frames %d and %d",
				frames[i].Index, frames[i+1].Index))
		} else if motion < lowMotionThreshold {
			report.Findings = append(report.Findings, fmt.Sprintf(
				"Very low motion between frames %d and %d (potentially static/frozen)",
				frames[i].Index, frames[i+1].Index))
		}
	}

	pairs := len(frames) - 1
	if pairs < 1 {
		pairs = 1
	}
	report.TemporalScore = float64(len(report.Findings)) / float64(pairs)
	report.Analysis = formatTemporalAnalysis(len(frames), report.Findings)

	return report, nil
}

func meanAbsDiff(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum / float64(len(a))
}

func formatTemporalAnalysis(numFrames int, findings []string) string {
	if len(findings) == 0 {
		return fmt.Sprintf("Temporal analysis across %d frames: Motion appears continuous and natural.", numFrames)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Temporal analysis across %d frames:\n", numFrames)
	for _, finding := range findings {
		fmt.Fprintf(&sb, "  - %s\n", finding)
	}
	return sb.String()
}
