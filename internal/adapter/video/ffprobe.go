package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dmaloney/deepscan/internal/domain"
)

// defaultProbeTimeout bounds a single ffprobe invocation.
const defaultProbeTimeout = 30 * time.Second

// Prober extracts container metadata by shelling out to ffprobe.
type Prober struct {
	// FFprobePath is the ffprobe binary; defaults to "ffprobe" on PATH.
	FFprobePath string

	// Timeout bounds each invocation; defaults to 30s.
	Timeout time.Duration
}

// NewProber constructs a prober with default binary lookup and timeout.
func NewProber() *Prober {
	return &Prober{}
}

func (p *Prober) binary() string {
	if p.FFprobePath != "" {
		return p.FFprobePath
	}
	return "ffprobe"
}

func (p *Prober) timeout() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return defaultProbeTimeout
}

// Probe runs ffprobe against the file and parses the stream and format
// sections into video metadata.
func (p *Prober) Probe(ctx context.Context, path string) (domain.VideoMetadata, error) {
	if err := ValidateFile(path); err != nil {
		return domain.VideoMetadata{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, p.binary(),
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return domain.VideoMetadata{}, fmt.Errorf("ffprobe failed for %s: %w (%s)",
			path, err, strings.TrimSpace(stderr.String()))
	}

	meta, err := parseProbeOutput(stdout.Bytes())
	if err != nil {
		return domain.VideoMetadata{}, fmt.Errorf("parsing ffprobe output for %s: %w", path, err)
	}

	meta.Filename = filepath.Base(path)
	meta.Path = path
	return meta, nil
}

// ffprobe emits format-level numbers as JSON strings.
type probeFormat struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
	BitRate  string `json:"bit_rate"`
}

type probeStream struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
	NBFrames   string `json:"nb_frames"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

// parseProbeOutput converts raw ffprobe JSON into video metadata. It requires
// at least one video stream. Missing numeric fields default to zero; a zero
// frame count is estimated from duration and frame rate when possible.
func parseProbeOutput(raw []byte) (domain.VideoMetadata, error) {
	var out probeOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return domain.VideoMetadata{}, fmt.Errorf("invalid ffprobe JSON: %w", err)
	}

	var stream *probeStream
	for i := range out.Streams {
		if out.Streams[i].CodecType == "video" {
			stream = &out.Streams[i]
			break
		}
	}
	if stream == nil {
		return domain.VideoMetadata{}, fmt.Errorf("no video stream found in file")
	}

	codec := stream.CodecName
	if codec == "" {
		codec = "unknown"
	}

	meta := domain.VideoMetadata{
		Duration:    parseFloat(out.Format.Duration),
		SizeBytes:   parseInt(out.Format.Size),
		Bitrate:     parseInt(out.Format.BitRate),
		Width:       stream.Width,
		Height:      stream.Height,
		Resolution:  fmt.Sprintf("%dx%d", stream.Width, stream.Height),
		Codec:       codec,
		FPS:         parseFPS(stream.RFrameRate),
		TotalFrames: int(parseInt(stream.NBFrames)),
	}

	// Some containers omit nb_frames; estimate from duration and rate.
	if meta.TotalFrames == 0 && meta.Duration > 0 && meta.FPS > 0 {
		meta.TotalFrames = int(meta.Duration * meta.FPS)
	}

	return meta, nil
}

// parseFPS parses a frame rate fraction string such as "30000/1001".
func parseFPS(fraction string) float64 {
	parts := strings.SplitN(fraction, "/", 2)
	if len(parts) != 2 {
		return 0
	}
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0
	}
	return num / den
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
