package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/go-bezier-renderer/internal/config"
	"github.com/1F47E/go-bezier-renderer/internal/dims"
	"github.com/1F47E/go-bezier-renderer/internal/storage"
)

func setup(t *testing.T) (config.Config, *storage.Store, *dims.Tracker) {
	t.Helper()
	cfg := config.Default()
	cfg.FrameDir = t.TempDir()
	cfg.Color = "#ff0000"
	return cfg, storage.New(cfg), dims.New()
}

func writeFrame(t *testing.T, s *storage.Store, n int, img image.Image) {
	t.Helper()
	require.NoError(t, imaging.Save(img, s.FramePath(n)))
}

func square(w, h int, r image.Rectangle) *image.NRGBA {
	img := imaging.New(w, h, color.Black)
	return imaging.Paste(img, imaging.New(r.Dx(), r.Dy(), color.White), r.Min)
}

func TestFrameBlank(t *testing.T) {
	cfg, store, tracker := setup(t)
	writeFrame(t, store, 1, imaging.New(64, 48, color.Black))

	exprs, err := New(cfg, store, tracker).Frame(0)
	require.NoError(t, err)
	assert.NotNil(t, exprs)
	assert.Empty(t, exprs)

	w, h := tracker.Size()
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)
	assert.Equal(t, 1, tracker.Frames())
}

func TestFrameSquare(t *testing.T) {
	for _, bilateral := range []bool{false, true} {
		t.Run(fmt.Sprintf("bilateral=%v", bilateral), func(t *testing.T) {
			cfg, store, tracker := setup(t)
			cfg.Bilateral = bilateral
			writeFrame(t, store, 1, square(40, 40, image.Rect(10, 10, 30, 30)))

			exprs, err := New(cfg, store, tracker).Frame(0)
			require.NoError(t, err)
			require.NotEmpty(t, exprs)
			for i, e := range exprs {
				assert.Equal(t, fmt.Sprintf("expr-%d", i+1), e.ID)
				assert.Equal(t, "#ff0000", e.Color)
				assert.True(t, e.Secret)
				assert.NotEmpty(t, e.Latex)
			}
		})
	}
}

func TestFrameDeterministic(t *testing.T) {
	cfg, store, tracker := setup(t)
	writeFrame(t, store, 1, square(50, 30, image.Rect(5, 4, 41, 22)))
	p := New(cfg, store, tracker)

	a, err := p.Frame(0)
	require.NoError(t, err)
	b, err := p.Frame(0)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 2, tracker.Frames())
}

func TestFrameMissing(t *testing.T) {
	cfg, store, tracker := setup(t)

	_, err := New(cfg, store, tracker).Frame(3)
	var de *storage.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, filepath.Join(cfg.FrameDir, "frame4.png"), de.Path)
	assert.Equal(t, 0, tracker.Frames())
}
