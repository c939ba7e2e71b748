package core

import (
	"context"
	"io"
	"os"
	"runtime"

	"github.com/google/uuid"

	"github.com/1F47E/go-bezier-renderer/internal/workers"
)

type Core struct {
	ctx     context.Context
	proc    workers.Processor
	workers int
	runID   string
	out     io.Writer
}

type Option func(*Core)

// WithWorkers sets the worker count, runtime.NumCPU() by default.
func WithWorkers(n int) Option {
	return func(c *Core) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithOutput redirects progress output, os.Stderr by default.
func WithOutput(w io.Writer) Option {
	return func(c *Core) {
		c.out = w
	}
}

func NewCore(ctx context.Context, proc workers.Processor, opts ...Option) *Core {
	c := &Core{
		ctx:     ctx,
		proc:    proc,
		workers: runtime.NumCPU(),
		runID:   uuid.NewString(),
		out:     os.Stderr,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// RunID identifies this process' batch in logs and on /status.
func (c *Core) RunID() string {
	return c.runID
}
