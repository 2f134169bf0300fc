package sampler

import (
	"log"

	"github.com/dmaloney/deepscan/internal/domain"
)

// AnalysisHook observes the detection pipeline before and after frame
// analysis. Hooks must not mutate the frames or reports they receive.
type AnalysisHook interface {
	// Name returns the unique hook name used for registry lookup.
	Name() string

	// PreAnalysis runs after frame extraction, before artifact detection.
	PreAnalysis(frames []domain.Frame, meta domain.VideoMetadata)

	// PostAnalysis runs after all frame reports are collected.
	PostAnalysis(reports []domain.ArtifactReport, meta domain.VideoMetadata)
}

// SceneTransitionHook logs suspicion-level changes between consecutive
// analyzed frames, which tend to line up with scene cuts.
type SceneTransitionHook struct{}

// NewSceneTransitionHook constructs the hook.
func NewSceneTransitionHook() *SceneTransitionHook { return &SceneTransitionHook{} }

func (h *SceneTransitionHook) Name() string { return "scene_transition_logger" }

// PreAnalysis announces how many frames are about to be inspected.
func (h *SceneTransitionHook) PreAnalysis(frames []domain.Frame, _ domain.VideoMetadata) {
	log.Printf("[scene-transition] analyzing %d frames for scene transitions", len(frames))
}

// PostAnalysis reports every pair of consecutive frames whose suspicion
// level changed.
func (h *SceneTransitionHook) PostAnalysis(reports []domain.ArtifactReport, _ domain.VideoMetadata) {
	transitions := 0
	for i := 0; i < len(reports)-1; i++ {
		from := suspicionLevel(reports[i].TotalScore)
		to := suspicionLevel(reports[i+1].TotalScore)
		if from != to {
			transitions++
			log.Printf("[scene-transition] frame %d -> %d: %s -> %s",
				reports[i].FrameIndex, reports[i+1].FrameIndex, from, to)
		}
	}
	if transitions == 0 {
		log.Printf("[scene-transition] no significant scene transitions detected")
	}
}

func suspicionLevel(totalScore float64) string {
	switch {
	case totalScore > 0.6:
		return "HIGH"
	case totalScore > 0.3:
		return "MODERATE"
	default:
		return "LOW"
	}
}
