// Package sampler chooses which frame indices of a video to examine.
// Strategies trade coverage against analysis cost; all of them honor the
// same contract: the returned indices are distinct, sorted ascending, each
// in [0, totalFrames), with exactly min(numFrames, totalFrames) entries.
// Strategies never fail; degenerate inputs degrade to whatever can be
// constructed, silently capped at numFrames.
package sampler

import (
	"sort"

	"github.com/dmaloney/deepscan/internal/domain"
)

// FrameSampler is a frame sampling strategy. Implementations must be pure
// functions over their inputs.
type FrameSampler interface {
	// Name returns the unique strategy name used for registry lookup.
	Name() string

	// Description returns a one-line human-readable summary.
	Description() string

	// Sample returns the frame indices to extract. Metadata may be nil;
	// strategies that need it fall back to built-in assumptions.
	Sample(totalFrames, numFrames int, meta *domain.VideoMetadata) []int
}

// sequence returns 0..n-1. Used when the video has no more frames than the
// caller asked for, in which case no strategy logic runs.
func sequence(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// sortedUnique sorts the indices and removes duplicates in place.
func sortedUnique(indices []int) []int {
	if len(indices) == 0 {
		return indices
	}
	sort.Ints(indices)
	out := indices[:1]
	for _, v := range indices[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// evenStride trims a sorted index slice to exactly n entries by keeping an
// evenly distributed subset.
func evenStride(indices []int, n int) []int {
	if len(indices) <= n {
		return indices
	}
	step := float64(len(indices)) / float64(n)
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, indices[int(float64(i)*step)])
	}
	return out
}

func contains(indices []int, v int) bool {
	for _, x := range indices {
		if x == v {
			return true
		}
	}
	return false
}

func clampIndex(idx, totalFrames int) int {
	if idx < 0 {
		return 0
	}
	if idx > totalFrames-1 {
		return totalFrames - 1
	}
	return idx
}
