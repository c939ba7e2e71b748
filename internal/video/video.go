package video

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/1F47E/go-bezier-renderer/internal/config"
	"github.com/1F47E/go-bezier-renderer/internal/logger"
)

// Args builds the ffmpeg arguments that split filename into
// dir/frame<N>.<ext>, N starting at 1. fps 0 keeps every frame.
func Args(filename, dir, ext string, fps float64) []string {
	args := []string{"-y", "-i", filename}
	if fps > 0 {
		args = append(args, "-vf", "fps="+strconv.FormatFloat(fps, 'f', -1, 64))
	}
	return append(args, "-start_number", "1", filepath.Join(dir, config.FramePrefix+"%d."+ext))
}

// call ffmpeg to decode the video into frames
func ExtractFrames(ctx context.Context, filename, dir, ext string, fps float64) error {
	args := Args(filename, dir, ext, fps)
	logger.Scope("video").Debugf("Running ffmpeg command: ffmpeg %s", strings.Join(args, " "))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, lastLine(stderr.String()))
	}
	return nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}
