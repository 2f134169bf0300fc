package sampler

import "github.com/dmaloney/deepscan/internal/domain"

// averageSceneSeconds is the assumed average scene length used to estimate
// how many scenes a clip contains when no cut detection is available.
const averageSceneSeconds = 3.0

// SceneSampler emphasizes frames near estimated scene boundaries, where
// lighting and quality shifts make manipulation artifacts most visible.
type SceneSampler struct{}

// NewSceneSampler constructs the scene-weighted strategy.
func NewSceneSampler() *SceneSampler { return &SceneSampler{} }

func (s *SceneSampler) Name() string { return "scene" }

func (s *SceneSampler) Description() string {
	return "Samples frames at likely scene transition boundaries"
}

// Sample estimates a scene count from the clip duration (3-second average
// scene), caps it so two samples fit per scene, samples each scene's start
// and end boundary, then tops up with scene midpoints and a uniform fill.
// The result is always trimmed to the exact requested count.
func (s *SceneSampler) Sample(totalFrames, numFrames int, meta *domain.VideoMetadata) []int {
	if numFrames <= 0 || totalFrames <= 0 {
		return []int{}
	}
	if totalFrames <= numFrames {
		return sequence(totalFrames)
	}

	fps := 30.0
	if meta != nil && meta.FPS > 0 {
		fps = meta.FPS
	}
	duration := float64(totalFrames) / fps
	if meta != nil && meta.Duration > 0 {
		duration = meta.Duration
	}

	estimated := int(duration / averageSceneSeconds)
	if estimated < 2 {
		estimated = 2
	}
	sceneCount := estimated
	if maxScenes := numFrames / 2; maxScenes < sceneCount {
		sceneCount = maxScenes
	}
	if sceneCount < 1 {
		sceneCount = 1
	}

	sceneLength := float64(totalFrames) / float64(sceneCount)

	var indices []int
	for scene := 0; scene < sceneCount; scene++ {
		sceneStart := int(float64(scene) * sceneLength)
		sceneEnd := int(float64(scene+1)*sceneLength) - 1

		offset := int(sceneLength * 0.05)
		if offset > 5 {
			offset = 5
		}

		indices = append(indices, clampIndex(sceneStart+offset, totalFrames))
		if len(indices) < numFrames {
			indices = append(indices, clampIndex(sceneEnd-offset, totalFrames))
		}
	}

	// Scene midpoints when boundary samples fall short of the budget.
	for scene := 0; scene < sceneCount && len(indices) < numFrames; scene++ {
		sceneStart := int(float64(scene) * sceneLength)
		sceneEnd := int(float64(scene+1) * sceneLength)
		mid := (sceneStart + sceneEnd) / 2
		if !contains(indices, mid) {
			indices = append(indices, mid)
		}
	}

	// Uniform fallback for whatever remains.
	if len(indices) < numFrames {
		step := float64(totalFrames) / float64(numFrames)
		for i := 0; i < numFrames && len(indices) < numFrames; i++ {
			idx := int(float64(i) * step)
			if !contains(indices, idx) {
				indices = append(indices, idx)
			}
		}
	}

	indices = sortedUnique(indices)
	if len(indices) > numFrames {
		indices = evenStride(indices, numFrames)
	}
	if len(indices) > numFrames {
		indices = indices[:numFrames]
	}
	return indices
}
