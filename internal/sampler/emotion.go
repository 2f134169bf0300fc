package sampler

import "github.com/dmaloney/deepscan/internal/domain"

// emotionAnchors are the relative positions where facial expressions most
// often transition: the opening expression, four mid-video transitions, and
// the closing expression. Manipulated footage tends to break down around
// expression changes, so samples cluster there.
var emotionAnchors = []float64{0.05, 0.15, 0.35, 0.50, 0.65, 0.85, 0.95}

// EmotionSampler concentrates samples around likely emotional transition
// points instead of spacing them evenly.
type EmotionSampler struct{}

// NewEmotionSampler constructs the emotion-weighted strategy.
func NewEmotionSampler() *EmotionSampler { return &EmotionSampler{} }

func (s *EmotionSampler) Name() string { return "emotion" }

func (s *EmotionSampler) Description() string {
	return "Samples frames at likely emotional transition points"
}

// Sample allocates base + remainder frames per anchor point, spreading
// multi-frame allocations around each anchor, then corrects the count:
// over-allocation trims via an even stride, under-allocation inserts
// midpoints into the largest remaining gaps.
func (s *EmotionSampler) Sample(totalFrames, numFrames int, _ *domain.VideoMetadata) []int {
	if numFrames <= 0 || totalFrames <= 0 {
		return []int{}
	}
	if totalFrames <= numFrames {
		return sequence(totalFrames)
	}

	base := numFrames / len(emotionAnchors)
	remainder := numFrames % len(emotionAnchors)

	var indices []int
	for i, anchor := range emotionAnchors {
		center := int(float64(totalFrames) * anchor)

		count := base
		if i < remainder {
			count++
		}

		switch {
		case count == 0:
			// Fewer requested frames than anchor points; later anchors get nothing.
		case count == 1:
			indices = append(indices, clampIndex(center, totalFrames))
		default:
			spread := totalFrames / 20
			if spread > 10 {
				spread = 10
			}
			for j := 0; j < count; j++ {
				offset := int((float64(j) - float64(count)/2) * float64(spread))
				indices = append(indices, clampIndex(center+offset, totalFrames))
			}
		}
	}

	indices = sortedUnique(indices)

	if len(indices) > numFrames {
		indices = evenStride(indices, numFrames)
	}

	// Fill the shortfall by splitting the largest gap until the target count
	// is reached or no gap admits a distinct midpoint.
	for len(indices) < numFrames {
		bestGap, bestPos := 0, -1
		for i := 0; i < len(indices)-1; i++ {
			gap := indices[i+1] - indices[i]
			if gap >= bestGap {
				bestGap, bestPos = gap, i
			}
		}
		if bestPos < 0 || bestGap < 2 {
			break
		}
		mid := (indices[bestPos] + indices[bestPos+1]) / 2
		indices = append(indices, 0)
		copy(indices[bestPos+2:], indices[bestPos+1:])
		indices[bestPos+1] = mid
	}

	if len(indices) > numFrames {
		indices = indices[:numFrames]
	}
	return indices
}
