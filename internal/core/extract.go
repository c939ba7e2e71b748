package core

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/1F47E/go-bezier-renderer/internal/logger"
	"github.com/1F47E/go-bezier-renderer/internal/progress"
	"github.com/1F47E/go-bezier-renderer/internal/video"
)

// Extract splits videoFile into numbered frames inside dir and returns how
// many were written.
func (c *Core) Extract(videoFile, dir, ext string, fps float64) (int, error) {
	log := logger.Scope("core extract").WithField("run", c.runID)

	if _, err := os.Stat(videoFile); err != nil {
		return 0, fmt.Errorf("opening video: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating frames dir: %w", err)
	}

	bar := progress.Spinner("Extracting frames...", c.out)
	done := make(chan struct{})
	scanned := make(chan struct{})

	// scan frames folder until the video finishes extracting
	go func() {
		defer close(scanned)
		c.scanFramesDir(dir, bar, done)
	}()

	err := video.ExtractFrames(c.ctx, videoFile, dir, ext, fps)
	close(done)
	<-scanned
	if err != nil {
		return 0, fmt.Errorf("extracting frames: %w", err)
	}

	n, err := countFrames(dir)
	if err != nil {
		return 0, err
	}
	bar.Describe(fmt.Sprintf("Extracted %d frames", n))
	bar.Finish()
	log.Infof("Extracted %d frames to %s", n, dir)
	return n, nil
}

// Extraction progress runner
// NOTE: the total frames count is unknown until ffmpeg exits
func (c *Core) scanFramesDir(dir string, bar *progress.Bar, done <-chan struct{}) {
	log := logger.Scope("core extract")
	ticker := time.NewTicker(time.Second / 10)
	defer ticker.Stop()

	prevCount := 0
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			l, err := countFrames(dir)
			if err != nil {
				log.Warn("scanning dir error: ", err)
				continue
			}
			if l > prevCount {
				prevCount = l
				bar.Describe(fmt.Sprintf("Extracting frames... %d", l))
				bar.Add(1)
			}
		}
	}
}

func countFrames(dir string) (int, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading frames dir: %w", err)
	}
	n := 0
	for _, f := range files {
		if !strings.HasPrefix(f.Name(), ".") {
			n++
		}
	}
	return n, nil
}
