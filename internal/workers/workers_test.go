package workers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/go-bezier-renderer/internal/job"
	"github.com/1F47E/go-bezier-renderer/internal/pipeline"
)

type procFunc func(idx int) ([]pipeline.Expression, error)

func (f procFunc) Frame(idx int) ([]pipeline.Expression, error) { return f(idx) }

func channels(n int) []chan job.Result {
	chs := make([]chan job.Result, n)
	for i := range chs {
		chs[i] = make(chan job.Result, 1)
	}
	return chs
}

func TestRunRoutesByIndex(t *testing.T) {
	w := NewWorker(context.Background(), procFunc(func(idx int) ([]pipeline.Expression, error) {
		return make([]pipeline.Expression, idx), nil
	}))
	jobs := make(chan job.Job, 3)
	jobs <- job.Job{Idx: 2}
	jobs <- job.Job{Idx: 0}
	jobs <- job.Job{Idx: 1}
	close(jobs)

	resChs := channels(3)
	require.NoError(t, w.Run(1, jobs, resChs))
	for i, ch := range resChs {
		r := <-ch
		assert.Equal(t, i, r.Idx)
		assert.Len(t, r.Exprs, i)
	}
}

func TestRunStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	w := NewWorker(context.Background(), procFunc(func(idx int) ([]pipeline.Expression, error) {
		calls++
		return nil, boom
	}))
	jobs := make(chan job.Job, 2)
	jobs <- job.Job{Idx: 0}
	jobs <- job.Job{Idx: 1}
	close(jobs)

	err := w.Run(1, jobs, channels(2))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "frame 1")
	assert.Equal(t, 1, calls)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := NewWorker(ctx, procFunc(func(int) ([]pipeline.Expression, error) { return nil, nil }))

	err := w.Run(1, make(chan job.Job), channels(1))
	assert.ErrorIs(t, err, context.Canceled)
}
