package job

import (
	"fmt"

	"github.com/1F47E/go-bezier-renderer/internal/pipeline"
)

// Job asks a worker to process one frame.
type Job struct {
	Idx int
}

// Result of a Job, sent to the channel reserved for its index.
type Result struct {
	Idx   int
	Exprs []pipeline.Expression
}

func (j Job) Print() string {
	return fmt.Sprintf("Job: frame idx %d (frame%d)", j.Idx, j.Idx+1)
}

func (r Result) Print() string {
	return fmt.Sprintf("Result: frame idx %d, %d expressions", r.Idx, len(r.Exprs))
}
