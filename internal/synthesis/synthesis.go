package synthesis

import (
	"fmt"
	"strings"

	"github.com/dmaloney/deepscan/internal/domain"
	"github.com/dmaloney/deepscan/internal/rules"
)

// Blend of the per-frame visual average and the temporal score. Visual
// artifacts dominate because most manipulation leaves spatial traces first.
const (
	visualBlendWeight   = 0.6
	temporalBlendWeight = 0.4

	// Combined scores at or above this still count as leaning real.
	likelyRealFloor = 0.25

	// Evidence lists are capped so the reasoning stays readable.
	maxKeyFindings = 5
)

// Synthesizer folds the per-frame artifact reports and the temporal report
// into a single classified verdict. It is pure: the same inputs always
// produce the same verdict.
type Synthesizer struct {
	rules rules.Rules
}

// NewSynthesizer constructs a synthesizer using the supplied thresholds.
func NewSynthesizer(r rules.Rules) *Synthesizer {
	return &Synthesizer{rules: r}
}

// Synthesize computes the combined suspicion score, classifies it against
// the configured thresholds, and assembles evidence plus human-readable
// reasoning. Zero frame reports degrade to a zero visual score rather than
// failing.
func (s *Synthesizer) Synthesize(
	frameReports []domain.ArtifactReport,
	temporal domain.TemporalReport,
	meta domain.VideoMetadata,
) domain.Verdict {
	var visualAvg, visualMax float64
	if len(frameReports) > 0 {
		for _, fr := range frameReports {
			visualAvg += fr.TotalScore
			if fr.TotalScore > visualMax {
				visualMax = fr.TotalScore
			}
		}
		visualAvg /= float64(len(frameReports))
	}

	combined := visualAvg*visualBlendWeight + temporal.TemporalScore*temporalBlendWeight
	classification, confidence := s.classify(combined)

	findings := collectFindings(frameReports, temporal)

	return domain.Verdict{
		Classification: classification,
		Confidence:     confidence,
		Reasoning:      buildReasoning(classification, confidence, combined, findings, len(frameReports), len(temporal.Findings)),
		Evidence: domain.Evidence{
			FrameObservations:    compileFrameEvidence(frameReports),
			TemporalObservations: temporal.Analysis,
		},
		Scores: domain.Scores{
			Combined:  combined,
			VisualAvg: visualAvg,
			VisualMax: visualMax,
			Temporal:  temporal.TemporalScore,
		},
	}
}

// classify maps a combined suspicion score onto the five-way verdict scale.
// Confidence grows linearly with the distance from the nearest threshold and
// is clamped to [0, 100].
func (s *Synthesizer) classify(combined float64) (domain.Classification, int) {
	t := s.rules.Confidence

	switch {
	case combined >= t.High:
		return domain.ClassificationFake, clampConfidence(min95(int(70 + (combined-t.High)*100)))
	case combined >= t.Moderate:
		return domain.ClassificationLikelyFake, clampConfidence(int(55 + (combined-t.Moderate)*75))
	case combined >= t.Uncertain:
		return domain.ClassificationUncertain, 50
	case combined >= likelyRealFloor:
		return domain.ClassificationLikelyReal, clampConfidence(int(55 + (t.Uncertain-combined)*75))
	default:
		return domain.ClassificationReal, clampConfidence(min95(int(70 + (t.Uncertain-combined)*100)))
	}
}

func min95(v int) int {
	if v > 95 {
		return 95
	}
	return v
}

func clampConfidence(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// collectFindings merges frame findings with temporal findings, dropping
// duplicates while preserving first-seen order.
func collectFindings(frameReports []domain.ArtifactReport, temporal domain.TemporalReport) []string {
	var all []string
	seen := make(map[string]bool)

	add := func(finding string) {
		if !seen[finding] {
			seen[finding] = true
			all = append(all, finding)
		}
	}

	for _, fr := range frameReports {
		for _, finding := range fr.Findings {
			add(finding)
		}
	}
	for _, finding := range temporal.Findings {
		add(finding)
	}
	return all
}

// compileFrameEvidence renders per-frame findings as an indented block.
func compileFrameEvidence(frameReports []domain.ArtifactReport) string {
	var parts []string
	for _, fr := range frameReports {
		if len(fr.Findings) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("Frame %d:", fr.FrameIndex))
		for _, finding := range fr.Findings {
			parts = append(parts, "  - "+finding)
		}
	}

	if len(parts) == 0 {
		return "No significant visual artifacts detected across analyzed frames."
	}
	return strings.Join(parts, "\n")
}

// buildReasoning writes the verdict narrative: an opening statement, the key
// evidence, a numeric breakdown, and a closing paragraph matched to the
// classification bucket.
func buildReasoning(
	classification domain.Classification,
	confidence int,
	combined float64,
	findings []string,
	framesAnalyzed int,
	temporalIssues int,
) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Classification: %s (Confidence: %d%%)\n", classification, confidence))
	switch {
	case classification.IsFake():
		parts = append(parts, "The video exhibits multiple characteristics consistent with synthetic generation or manipulation.\n")
	case classification == domain.ClassificationUncertain:
		parts = append(parts, "The analysis reveals mixed signals, making confident classification difficult.\n")
	default:
		parts = append(parts, "The video demonstrates characteristics consistent with authentic, non-manipulated footage.\n")
	}

	if len(findings) > 0 {
		parts = append(parts, "KEY EVIDENCE:")
		top := findings
		if len(top) > maxKeyFindings {
			top = top[:maxKeyFindings]
		}
		for _, finding := range top {
			parts = append(parts, "  - "+finding)
		}
		parts = append(parts, "")
	}

	parts = append(parts, "ANALYSIS BREAKDOWN:")
	parts = append(parts, fmt.Sprintf("  - Visual Artifacts: %d indicators detected", countVisualIndicators(findings)))
	parts = append(parts, fmt.Sprintf("  - Temporal Consistency: %d issues identified", temporalIssues))
	parts = append(parts, fmt.Sprintf("  - Frames Analyzed: %d", framesAnalyzed))
	parts = append(parts, fmt.Sprintf("  - Combined Suspicion Score: %.2f/1.00", combined))
	parts = append(parts, "")

	switch {
	case classification.IsFake():
		parts = append(parts, "CONCLUSION:\n"+
			"The combination of visual and temporal artifacts suggests this video is "+
			"synthetically generated or significantly manipulated. The detection system "+
			"identified multiple indicators consistent with deepfake generation techniques.")
	case classification == domain.ClassificationUncertain:
		parts = append(parts, "CONCLUSION:\n"+
			"The evidence is inconclusive. Some artifacts are present, but they could "+
			"potentially be attributed to video compression, lighting conditions, or other "+
			"non-malicious factors. Further analysis or higher-quality source material "+
			"would be needed for confident classification.")
	default:
		parts = append(parts, "CONCLUSION:\n"+
			"The video shows natural characteristics expected of authentic footage. "+
			"No significant artifacts or temporal inconsistencies were detected that "+
			"would suggest synthetic generation or manipulation.")
	}

	return strings.Join(parts, "\n")
}

// countVisualIndicators counts findings that describe spatial artifacts, as
// opposed to motion issues.
func countVisualIndicators(findings []string) int {
	count := 0
	for _, finding := range findings {
		lower := strings.ToLower(finding)
		if strings.Contains(lower, "texture") ||
			strings.Contains(lower, "smoothing") ||
			strings.Contains(lower, "lighting") {
			count++
		}
	}
	return count
}
