package synthesis_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmaloney/deepscan/internal/domain"
	"github.com/dmaloney/deepscan/internal/rules"
	"github.com/dmaloney/deepscan/internal/synthesis"
)

func newSynthesizer() *synthesis.Synthesizer {
	return synthesis.NewSynthesizer(rules.Default())
}

func TestSynthesizeFakeVerdict(t *testing.T) {
	s := newSynthesizer()

	frameReports := []domain.ArtifactReport{
		{
			FrameIndex: 0,
			TotalScore: 0.9,
			Findings:   []string{"Low texture variance detected (potential smoothing)"},
		},
		{
			FrameIndex: 30,
			TotalScore: 0.8,
			Findings:   []string{"Uniform lighting detected (potentially artificial)"},
		},
	}
	temporal := domain.TemporalReport{
		FramesExamined: 2,
		TemporalScore:  0.7,
		Findings:       []string{"Large motion discontinuity between frames 0 and 30"},
		Analysis:       "Temporal analysis across 2 frames:\n  - Large motion discontinuity between frames 0 and 30\n",
	}

	verdict := s.Synthesize(frameReports, temporal, domain.VideoMetadata{Filename: "clip.mp4"})

	// (0.9+0.8)/2 * 0.6 + 0.7 * 0.4 = 0.79
	assert.Equal(t, domain.ClassificationFake, verdict.Classification)
	assert.Equal(t, 74, verdict.Confidence)
	assert.InDelta(t, 0.79, verdict.Scores.Combined, 1e-9)
	assert.InDelta(t, 0.85, verdict.Scores.VisualAvg, 1e-9)
	assert.Equal(t, 0.9, verdict.Scores.VisualMax)
	assert.Equal(t, 0.7, verdict.Scores.Temporal)

	assert.Contains(t, verdict.Reasoning, "Classification: FAKE (Confidence: 74%)")
	assert.Contains(t, verdict.Reasoning, "The video exhibits multiple characteristics consistent with synthetic generation or manipulation.")
	assert.Contains(t, verdict.Reasoning, "KEY EVIDENCE:")
	assert.Contains(t, verdict.Reasoning, "ANALYSIS BREAKDOWN:")
	assert.Contains(t, verdict.Reasoning, "  - Frames Analyzed: 2")
	assert.Contains(t, verdict.Reasoning, "  - Combined Suspicion Score: 0.79/1.00")
	assert.Contains(t, verdict.Reasoning, "CONCLUSION:")
	assert.Contains(t, verdict.Reasoning, "identified multiple indicators consistent with deepfake generation techniques.")

	assert.Contains(t, verdict.Evidence.FrameObservations, "Frame 0:")
	assert.Contains(t, verdict.Evidence.FrameObservations, "Frame 30:")
	assert.Equal(t, temporal.Analysis, verdict.Evidence.TemporalObservations)
}

func TestSynthesizeNoEvidenceIsReal(t *testing.T) {
	s := newSynthesizer()

	verdict := s.Synthesize(nil, domain.TemporalReport{}, domain.VideoMetadata{})

	assert.Equal(t, domain.ClassificationReal, verdict.Classification)
	assert.Equal(t, 95, verdict.Confidence)
	assert.Equal(t, 0.0, verdict.Scores.Combined)
	assert.Equal(t, "No significant visual artifacts detected across analyzed frames.", verdict.Evidence.FrameObservations)
	assert.Contains(t, verdict.Reasoning, "The video demonstrates characteristics consistent with authentic, non-manipulated footage.")
	assert.NotContains(t, verdict.Reasoning, "KEY EVIDENCE:")
	assert.Contains(t, verdict.Reasoning, "No significant artifacts or temporal inconsistencies were detected")
}

func TestClassificationBands(t *testing.T) {
	s := newSynthesizer()

	// One frame report plus a temporal score steer the combined value:
	// combined = visual*0.6 + temporal*0.4.
	cases := []struct {
		name       string
		visual     float64
		temporal   float64
		class      domain.Classification
		confidence int
	}{
		{"real", 0.0, 0.0, domain.ClassificationReal, 95},
		{"likely real", 0.5, 0.0, domain.ClassificationLikelyReal, 66},
		{"uncertain", 0.8, 0.0, domain.ClassificationUncertain, 50},
		{"likely fake", 1.0, 0.0, domain.ClassificationLikelyFake, 58},
		{"fake", 1.0, 1.0, domain.ClassificationFake, 95},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reports := []domain.ArtifactReport{{FrameIndex: 0, TotalScore: tc.visual}}
			temporal := domain.TemporalReport{FramesExamined: 1, TemporalScore: tc.temporal}

			verdict := s.Synthesize(reports, temporal, domain.VideoMetadata{})
			assert.Equal(t, tc.class, verdict.Classification)
			assert.Equal(t, tc.confidence, verdict.Confidence)
		})
	}
}

func TestConfidenceAlwaysInRange(t *testing.T) {
	s := newSynthesizer()

	for visual := 0.0; visual <= 1.0; visual += 0.05 {
		for temporal := 0.0; temporal <= 1.0; temporal += 0.25 {
			reports := []domain.ArtifactReport{{TotalScore: visual}}
			verdict := s.Synthesize(reports, domain.TemporalReport{TemporalScore: temporal}, domain.VideoMetadata{})

			assert.GreaterOrEqual(t, verdict.Confidence, 0)
			assert.LessOrEqual(t, verdict.Confidence, 100)
			assert.NotEqual(t, domain.ClassificationError, verdict.Classification)
		}
	}
}

func TestKeyEvidenceDedupedAndCapped(t *testing.T) {
	s := newSynthesizer()

	repeated := "Low texture variance detected (potential smoothing)"
	frameReports := []domain.ArtifactReport{
		{FrameIndex: 0, TotalScore: 0.9, Findings: []string{repeated, "finding-b"}},
		{FrameIndex: 1, TotalScore: 0.9, Findings: []string{repeated}},
	}
	temporal := domain.TemporalReport{
		TemporalScore: 1.0,
		Findings:      []string{"finding-c", "finding-d", "finding-e", "finding-f"},
	}

	verdict := s.Synthesize(frameReports, temporal, domain.VideoMetadata{})

	evidence := verdict.Reasoning[strings.Index(verdict.Reasoning, "KEY EVIDENCE:"):strings.Index(verdict.Reasoning, "ANALYSIS BREAKDOWN:")]
	assert.Equal(t, 1, strings.Count(evidence, repeated), "duplicates must collapse")
	assert.Contains(t, evidence, "finding-b")
	assert.Contains(t, evidence, "finding-e")
	assert.NotContains(t, evidence, "finding-f", "evidence is capped at five findings")
}

func TestVisualIndicatorCount(t *testing.T) {
	s := newSynthesizer()

	frameReports := []domain.ArtifactReport{
		{FrameIndex: 0, TotalScore: 0.4, Findings: []string{
			"Low texture variance detected (potential smoothing)",
			"Uniform lighting detected (potentially artificial)",
			"Low edge density (possible boundary blending)",
		}},
	}
	temporal := domain.TemporalReport{
		TemporalScore: 1.0,
		Findings:      []string{"Large motion discontinuity between frames 0 and 1"},
	}

	verdict := s.Synthesize(frameReports, temporal, domain.VideoMetadata{})

	// Edge density and motion findings are not texture or lighting signals.
	assert.Contains(t, verdict.Reasoning, "  - Visual Artifacts: 2 indicators detected")
	assert.Contains(t, verdict.Reasoning, "  - Temporal Consistency: 1 issues identified")
}

func TestUncertainReasoning(t *testing.T) {
	s := newSynthesizer()

	reports := []domain.ArtifactReport{{FrameIndex: 0, TotalScore: 0.8}}
	verdict := s.Synthesize(reports, domain.TemporalReport{FramesExamined: 1}, domain.VideoMetadata{})

	require.Equal(t, domain.ClassificationUncertain, verdict.Classification)
	assert.Contains(t, verdict.Reasoning, "The analysis reveals mixed signals, making confident classification difficult.")
	assert.Contains(t, verdict.Reasoning, "The evidence is inconclusive.")
}

func TestCustomThresholds(t *testing.T) {
	r := rules.Default()
	r.Confidence.High = 0.40
	s := synthesis.NewSynthesizer(r)

	reports := []domain.ArtifactReport{{FrameIndex: 0, TotalScore: 0.8}}
	verdict := s.Synthesize(reports, domain.TemporalReport{}, domain.VideoMetadata{})

	// combined = 0.48, above the lowered high threshold.
	assert.Equal(t, domain.ClassificationFake, verdict.Classification)
}
