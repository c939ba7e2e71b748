package video

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgs(t *testing.T) {
	got := Args("in.mp4", "frames", "png", 0)
	assert.Equal(t, []string{"-y", "-i", "in.mp4", "-start_number", "1", filepath.Join("frames", "frame%d.png")}, got)

	got = Args("in.mp4", "out", "jpg", 12.5)
	assert.Equal(t, []string{"-y", "-i", "in.mp4", "-vf", "fps=12.5", "-start_number", "1", filepath.Join("out", "frame%d.jpg")}, got)
}

func TestExtractFramesMissingInput(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ExtractFrames(ctx, filepath.Join(t.TempDir(), "missing.mp4"), t.TempDir(), "png", 0)
	assert.Error(t, err)
}

func TestLastLine(t *testing.T) {
	assert.Equal(t, "boom", lastLine("a\nb\nboom\n"))
	assert.Equal(t, "", lastLine(""))
}
