// Package pipeline turns one frame file into calculator expressions.
package pipeline

import (
	"fmt"
	"time"

	"github.com/1F47E/go-bezier-renderer/internal/config"
	"github.com/1F47E/go-bezier-renderer/internal/edge"
	"github.com/1F47E/go-bezier-renderer/internal/latex"
	"github.com/1F47E/go-bezier-renderer/internal/logger"
	"github.com/1F47E/go-bezier-renderer/internal/metrics"
	"github.com/1F47E/go-bezier-renderer/internal/storage"
	"github.com/1F47E/go-bezier-renderer/internal/trace"
)

// Expression is one Desmos expression state.
type Expression struct {
	ID     string `json:"id"     cbor:"id"`
	Latex  string `json:"latex"  cbor:"latex"`
	Color  string `json:"color"  cbor:"color"`
	Secret bool   `json:"secret" cbor:"secret"`
}

type Pipeline struct {
	store     *storage.Store
	extractor *edge.Extractor
	color     string
}

func New(cfg config.Config, store *storage.Store, observer edge.Observer) *Pipeline {
	logger.Scope("pipeline").Debugf("edge filters: %s", edge.Backend())
	return &Pipeline{
		store: store,
		extractor: edge.NewExtractor(edge.Options{
			Bilateral:  cfg.Bilateral,
			L2Gradient: cfg.L2Gradient,
		}, observer),
		color: cfg.Color,
	}
}

// Frame processes frame idx (0-based). A frame without contours gives an
// empty, non-nil list.
func (p *Pipeline) Frame(idx int) ([]Expression, error) {
	log := logger.Scope("pipeline")
	start := time.Now()

	img, err := p.store.Decode(idx)
	if err != nil {
		metrics.FramesProcessedTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	observe(start, "decode")

	t := time.Now()
	mask := p.extractor.Extract(img)
	observe(t, "edge")

	var path trace.Path
	if mask.Empty() {
		log.Debugf("frame %d: no edges", idx)
	} else {
		t = time.Now()
		path, err = trace.Trace(trace.NewBitmapFrom(mask.W, mask.H, mask.Pix), trace.DefaultParams)
		if err != nil {
			metrics.FramesProcessedTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("tracing frame %d: %w", idx, err)
		}
		observe(t, "trace")
	}

	lines := latex.Format(path)
	exprs := make([]Expression, len(lines))
	for i, l := range lines {
		exprs[i] = Expression{
			ID:     fmt.Sprintf("expr-%d", i+1),
			Latex:  l,
			Color:  p.color,
			Secret: true,
		}
	}

	metrics.FramesProcessedTotal.WithLabelValues("ok").Inc()
	metrics.ExpressionsTotal.Add(float64(len(exprs)))
	observe(start, "total")
	log.Debugf("frame %d: %d curves, %d expressions in %s", idx, len(path.Curves), len(exprs), time.Since(start))
	return exprs, nil
}

func observe(since time.Time, stage string) {
	metrics.FrameDuration.WithLabelValues(stage).Observe(time.Since(since).Seconds())
}
