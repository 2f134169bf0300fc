package video

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"sort"
	"sync"
	"time"

	"github.com/dmaloney/deepscan/internal/domain"
)

const (
	// defaultExtractTimeout bounds one ffmpeg invocation for one frame.
	defaultExtractTimeout = 60 * time.Second

	// defaultExtractWorkers bounds concurrent ffmpeg processes.
	defaultExtractWorkers = 4
)

// Extractor decodes individual frames by shelling out to ffmpeg, one
// invocation per frame index. Frames are returned as packed RGB buffers at
// the video's native resolution.
type Extractor struct {
	// FFmpegPath is the ffmpeg binary; defaults to "ffmpeg" on PATH.
	FFmpegPath string

	// Timeout bounds each per-frame invocation; defaults to 60s.
	Timeout time.Duration

	// Workers bounds concurrent ffmpeg processes; defaults to 4.
	Workers int
}

// NewExtractor constructs an extractor with default binary lookup, timeout,
// and worker pool size.
func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) binary() string {
	if e.FFmpegPath != "" {
		return e.FFmpegPath
	}
	return "ffmpeg"
}

func (e *Extractor) timeout() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return defaultExtractTimeout
}

func (e *Extractor) workers() int {
	if e.Workers > 0 {
		return e.Workers
	}
	return defaultExtractWorkers
}

// Extract decodes the requested frame indices, fanning out across a bounded
// worker pool. A frame that fails to decode is logged and skipped rather
// than failing the batch, so the result may be shorter than the request.
// The returned frames are sorted by frame index.
func (e *Extractor) Extract(ctx context.Context, path string, indices []int, meta domain.VideoMetadata) ([]domain.Frame, error) {
	if meta.Width <= 0 || meta.Height <= 0 {
		return nil, fmt.Errorf("cannot extract frames without stream dimensions (got %dx%d)", meta.Width, meta.Height)
	}

	var wg sync.WaitGroup
	resultsChan := make(chan struct {
		frame domain.Frame
		err   error
	}, len(indices))
	sem := make(chan struct{}, e.workers())

	for _, idx := range indices {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			frame, err := e.extractOne(ctx, path, idx, meta)
			resultsChan <- struct {
				frame domain.Frame
				err   error
			}{frame: frame, err: err}
		}(idx)
	}

	wg.Wait()
	close(resultsChan)

	var frames []domain.Frame
	for res := range resultsChan {
		if res.err != nil {
			log.Printf("warning: skipping frame: %v\n", res.err)
			continue
		}
		frames = append(frames, res.frame)
	}

	sort.Slice(frames, func(i, j int) bool { return frames[i].Index < frames[j].Index })
	return frames, nil
}

// extractOne decodes a single frame as packed RGB24 on stdout.
func (e *Extractor) extractOne(ctx context.Context, path string, index int, meta domain.VideoMetadata) (domain.Frame, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, e.binary(),
		"-v", "error",
		"-i", path,
		"-vf", fmt.Sprintf("select=eq(n\\,%d)", index),
		"-vframes", "1",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return domain.Frame{}, fmt.Errorf("ffmpeg failed for frame %d of %s: %w (%s)",
			index, path, err, bytes.TrimSpace(stderr.Bytes()))
	}

	want := meta.Width * meta.Height * 3
	if stdout.Len() != want {
		return domain.Frame{}, fmt.Errorf("frame %d of %s: got %d bytes, want %d",
			index, path, stdout.Len(), want)
	}

	return domain.Frame{
		Index:  index,
		Width:  meta.Width,
		Height: meta.Height,
		Pix:    stdout.Bytes(),
	}, nil
}
