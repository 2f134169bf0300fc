package video

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProbeJSON = `{
	"streams": [
		{
			"codec_type": "audio",
			"codec_name": "aac"
		},
		{
			"codec_type": "video",
			"codec_name": "h264",
			"width": 1920,
			"height": 1080,
			"r_frame_rate": "30000/1001",
			"nb_frames": "899"
		}
	],
	"format": {
		"duration": "30.030000",
		"size": "5242880",
		"bit_rate": "1396736"
	}
}`

func TestParseProbeOutput(t *testing.T) {
	meta, err := parseProbeOutput([]byte(sampleProbeJSON))
	require.NoError(t, err)

	assert.Equal(t, 30.03, meta.Duration)
	assert.Equal(t, int64(5242880), meta.SizeBytes)
	assert.Equal(t, int64(1396736), meta.Bitrate)
	assert.Equal(t, 1920, meta.Width)
	assert.Equal(t, 1080, meta.Height)
	assert.Equal(t, "1920x1080", meta.Resolution)
	assert.Equal(t, "h264", meta.Codec)
	assert.InDelta(t, 29.97, meta.FPS, 0.001)
	assert.Equal(t, 899, meta.TotalFrames)
}

func TestParseProbeOutputEstimatesFrameCount(t *testing.T) {
	raw := `{
		"streams": [{"codec_type": "video", "codec_name": "vp9", "width": 640, "height": 480, "r_frame_rate": "30/1"}],
		"format": {"duration": "10.0"}
	}`

	meta, err := parseProbeOutput([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, 300, meta.TotalFrames)
}

func TestParseProbeOutputNoVideoStream(t *testing.T) {
	raw := `{"streams": [{"codec_type": "audio"}], "format": {}}`

	_, err := parseProbeOutput([]byte(raw))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no video stream")
}

func TestParseProbeOutputInvalidJSON(t *testing.T) {
	_, err := parseProbeOutput([]byte("not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ffprobe JSON")
}

func TestParseProbeOutputMissingCodecName(t *testing.T) {
	raw := `{"streams": [{"codec_type": "video", "width": 10, "height": 10}], "format": {}}`

	meta, err := parseProbeOutput([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "unknown", meta.Codec)
}

func TestParseFPS(t *testing.T) {
	cases := []struct {
		input string
		want  float64
	}{
		{"30/1", 30.0},
		{"30000/1001", 29.97002997002997},
		{"0/1", 0},
		{"24", 0},
		{"abc/def", 0},
		{"1/0", 0},
		{"", 0},
	}

	for _, tc := range cases {
		assert.InDelta(t, tc.want, parseFPS(tc.input), 1e-9, "parseFPS(%q)", tc.input)
	}
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()

	mp4 := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(mp4, []byte("stub"), 0o644))

	avi := filepath.Join(dir, "clip.avi")
	require.NoError(t, os.WriteFile(avi, []byte("stub"), 0o644))

	t.Run("valid mp4", func(t *testing.T) {
		assert.NoError(t, ValidateFile(mp4))
	})

	t.Run("uppercase extension", func(t *testing.T) {
		upper := filepath.Join(dir, "CLIP.MP4")
		require.NoError(t, os.WriteFile(upper, []byte("stub"), 0o644))
		assert.NoError(t, ValidateFile(upper))
	})

	t.Run("missing file", func(t *testing.T) {
		err := ValidateFile(filepath.Join(dir, "missing.mp4"))
		assert.ErrorContains(t, err, "file not found")
	})

	t.Run("directory", func(t *testing.T) {
		err := ValidateFile(dir)
		assert.ErrorContains(t, err, "not a file")
	})

	t.Run("wrong extension", func(t *testing.T) {
		err := ValidateFile(avi)
		assert.ErrorContains(t, err, "not an MP4 file")
	})
}
