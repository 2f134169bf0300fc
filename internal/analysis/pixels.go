package analysis

import (
	"math"

	"github.com/dmaloney/deepscan/internal/domain"
)

// grayscale converts an RGB frame to an 8-bit luminance plane using the
// ITU-R BT.601 weights. Values are rounded to the nearest integer so the
// downstream integer-difference math is stable across platforms.
func grayscale(frame domain.Frame) []float64 {
	gray := make([]float64, frame.Width*frame.Height)
	for i := 0; i < len(gray); i++ {
		r := float64(frame.Pix[i*3])
		g := float64(frame.Pix[i*3+1])
		b := float64(frame.Pix[i*3+2])
		gray[i] = math.Round(0.299*r + 0.587*g + 0.114*b)
	}
	return gray
}

// reflect mirrors an out-of-range coordinate back into [0, n) without
// repeating the border pixel, so convolution kernels see a seamless edge.
func reflect(i, n int) int {
	if n == 1 {
		return 0
	}
	if i < 0 {
		return -i
	}
	if i >= n {
		return 2*n - i - 2
	}
	return i
}

// at reads a gray value with reflected borders.
func at(gray []float64, w, h, x, y int) float64 {
	return gray[reflect(y, h)*w+reflect(x, w)]
}

// laplacianVariance measures texture by convolving the 4-neighbor Laplacian
// kernel over the luminance plane and returning the population variance of
// the response. Heavily smoothed regions have almost no second-derivative
// energy, so the variance collapses.
func laplacianVariance(gray []float64, w, h int) float64 {
	n := w * h
	if n == 0 {
		return 0
	}

	response := make([]float64, n)
	var sum float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := at(gray, w, h, x, y-1) +
				at(gray, w, h, x, y+1) +
				at(gray, w, h, x-1, y) +
				at(gray, w, h, x+1, y) -
				4*at(gray, w, h, x, y)
			response[y*w+x] = v
			sum += v
		}
	}

	mean := sum / float64(n)
	var variance float64
	for _, v := range response {
		d := v - mean
		variance += d * d
	}
	return variance / float64(n)
}

// sobelGradients computes horizontal and vertical 3x3 Sobel responses with
// reflected borders.
func sobelGradients(gray []float64, w, h int) (gx, gy []float64) {
	gx = make([]float64, w*h)
	gy = make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tl := at(gray, w, h, x-1, y-1)
			tc := at(gray, w, h, x, y-1)
			tr := at(gray, w, h, x+1, y-1)
			ml := at(gray, w, h, x-1, y)
			mr := at(gray, w, h, x+1, y)
			bl := at(gray, w, h, x-1, y+1)
			bc := at(gray, w, h, x, y+1)
			br := at(gray, w, h, x+1, y+1)

			gx[y*w+x] = (tr + 2*mr + br) - (tl + 2*ml + bl)
			gy[y*w+x] = (bl + 2*bc + br) - (tl + 2*tc + tr)
		}
	}
	return gx, gy
}

// gradientMagnitudeStd returns the population standard deviation of the
// Sobel gradient magnitude. Natural lighting produces a wide spread of
// gradient strengths; rendered or relit faces flatten it.
func gradientMagnitudeStd(gray []float64, w, h int) float64 {
	n := w * h
	if n == 0 {
		return 0
	}

	gx, gy := sobelGradients(gray, w, h)
	magnitude := make([]float64, n)
	var sum float64
	for i := 0; i < n; i++ {
		m := math.Hypot(gx[i], gy[i])
		magnitude[i] = m
		sum += m
	}

	mean := sum / float64(n)
	var variance float64
	for _, m := range magnitude {
		d := m - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(n))
}

// edgeDensity runs a Canny-style edge detector (Sobel gradients, non-maximum
// suppression, double-threshold hysteresis) and returns the fraction of
// pixels marked as edges.
func edgeDensity(gray []float64, w, h int, low, high float64) float64 {
	n := w * h
	if n == 0 {
		return 0
	}

	gx, gy := sobelGradients(gray, w, h)
	magnitude := make([]float64, n)
	for i := 0; i < n; i++ {
		magnitude[i] = math.Abs(gx[i]) + math.Abs(gy[i])
	}

	// Non-maximum suppression along the quantized gradient direction.
	const (
		suppressed = 0
		weak       = 1
		strong     = 2
	)
	class := make([]uint8, n)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := magnitude[i]
			if m < low {
				continue
			}

			dx, dy := neighborOffsets(gx[i], gy[i])
			n1 := magnitude[reflect(y+dy, h)*w+reflect(x+dx, w)]
			n2 := magnitude[reflect(y-dy, h)*w+reflect(x-dx, w)]
			if m < n1 || m < n2 {
				continue
			}

			if m >= high {
				class[i] = strong
			} else {
				class[i] = weak
			}
		}
	}

	// Hysteresis: weak edges survive only when connected to a strong edge.
	edges := make([]bool, n)
	stack := make([]int, 0, n/8)
	for i := 0; i < n; i++ {
		if class[i] == strong {
			edges[i] = true
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				j := ny*w + nx
				if class[j] == weak && !edges[j] {
					edges[j] = true
					stack = append(stack, j)
				}
			}
		}
	}

	count := 0
	for _, e := range edges {
		if e {
			count++
		}
	}
	return float64(count) / float64(n)
}

// neighborOffsets quantizes a gradient direction into one of the four
// axis or diagonal neighbor pairs used by non-maximum suppression.
func neighborOffsets(gx, gy float64) (dx, dy int) {
	angle := math.Atan2(gy, gx) * 180 / math.Pi
	if angle < 0 {
		angle += 180
	}
	switch {
	case angle < 22.5 || angle >= 157.5:
		return 1, 0
	case angle < 67.5:
		return 1, 1
	case angle < 112.5:
		return 0, 1
	default:
		return -1, 1
	}
}
