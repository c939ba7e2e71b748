package core

import (
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/1F47E/go-bezier-renderer/internal/job"
	"github.com/1F47E/go-bezier-renderer/internal/logger"
	"github.com/1F47E/go-bezier-renderer/internal/pipeline"
	"github.com/1F47E/go-bezier-renderer/internal/progress"
	"github.com/1F47E/go-bezier-renderer/internal/workers"
)

// 1. feed frame indexes to the workers
// 2. every worker sends its result to the channel reserved for that index
// 3. read the channels in order, so results keep the frame order
//
// The first failing frame cancels the group and the batch returns only that
// error.
func (c *Core) Batch(total int) ([][]pipeline.Expression, error) {
	log := logger.Scope("core batch").WithField("run", c.runID)
	if total <= 0 {
		return [][]pipeline.Expression{}, nil
	}

	start := time.Now()
	g, ctx := errgroup.WithContext(c.ctx)

	// list of channels to receive results from workers in order
	resChs := make([]chan job.Result, total)
	for i := range resChs {
		resChs[i] = make(chan job.Result, 1)
	}

	jobs := make(chan job.Job, c.workers) // buff by worker count
	worker := workers.NewWorker(ctx, c.proc)
	log.Debugf("Starting %d workers for %d frames", c.workers, total)
	for i := 0; i < c.workers; i++ {
		id := i + 1
		g.Go(func() error {
			return worker.Run(id, jobs, resChs)
		})
	}

	// send all the jobs
	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < total; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case jobs <- job.Job{Idx: i}:
			}
		}
		return nil
	})

	bar := progress.New(total, fmt.Sprintf("Processing %d frames", total), c.out)
	out := make([][]pipeline.Expression, total)

	// ranging over channels because results must be stored in order
collect:
	for i, ch := range resChs {
		select {
		case <-ctx.Done():
			log.Debug("Batch aborted")
			break collect
		case r := <-ch:
			log.Debugf("Got %s", r.Print())
			out[i] = r.Exprs
			bar.Add(1)
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// the caller cancelled while the last workers were finishing
	if err := c.ctx.Err(); err != nil {
		return nil, err
	}
	bar.Finish()
	log.Infof("Processing complete in %.1f seconds", time.Since(start).Seconds())
	return out, nil
}
