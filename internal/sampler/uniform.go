package sampler

import "github.com/dmaloney/deepscan/internal/domain"

// UniformSampler picks evenly spaced frames across the whole video.
type UniformSampler struct{}

// NewUniformSampler constructs the default sampling strategy.
func NewUniformSampler() *UniformSampler { return &UniformSampler{} }

func (s *UniformSampler) Name() string { return "uniform" }

func (s *UniformSampler) Description() string {
	return "Evenly spaced frames across the whole video"
}

// Sample returns floor(i * totalFrames / numFrames) for i in [0, numFrames).
func (s *UniformSampler) Sample(totalFrames, numFrames int, _ *domain.VideoMetadata) []int {
	if numFrames <= 0 || totalFrames <= 0 {
		return []int{}
	}
	if totalFrames <= numFrames {
		return sequence(totalFrames)
	}

	step := float64(totalFrames) / float64(numFrames)
	indices := make([]int, 0, numFrames)
	for i := 0; i < numFrames; i++ {
		indices = append(indices, int(float64(i)*step))
	}
	return indices
}
