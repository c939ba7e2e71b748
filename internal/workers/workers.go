package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/1F47E/go-bezier-renderer/internal/job"
	"github.com/1F47E/go-bezier-renderer/internal/logger"
	"github.com/1F47E/go-bezier-renderer/internal/metrics"
	"github.com/1F47E/go-bezier-renderer/internal/pipeline"
)

var log = logger.Scope("workers")

// Processor turns a frame index into expressions.
type Processor interface {
	Frame(idx int) ([]pipeline.Expression, error)
}

type Worker struct {
	ctx  context.Context
	proc Processor
}

func NewWorker(ctx context.Context, proc Processor) *Worker {
	return &Worker{ctx: ctx, proc: proc}
}

// Run takes jobs until the channel is closed or the context is done. Every
// result goes to resChs[job.Idx]; those channels must be buffered. The first
// failing frame stops the worker and is returned.
func (w *Worker) Run(id int, jobs <-chan job.Job, resChs []chan job.Result) error {
	name := fmt.Sprintf("Worker #%d", id)
	log.Debugf("%s started", name)
	defer log.Debugf("%s finished", name)

	for {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		case j, ok := <-jobs:
			if !ok {
				return nil
			}
			log.Debugf("%s got %s", name, j.Print())

			now := time.Now()
			metrics.ActiveWorkers.Inc()
			exprs, err := w.proc.Frame(j.Idx)
			metrics.ActiveWorkers.Dec()
			if err != nil {
				return fmt.Errorf("frame %d: %w", j.Idx+1, err)
			}
			log.Debugf("%s frame %d done. Took time: %s", name, j.Idx+1, time.Since(now))

			resChs[j.Idx] <- job.Result{Idx: j.Idx, Exprs: exprs}
		}
	}
}
