package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/tarungka/sieve/internal/logger"
	"github.com/tarungka/sieve/internal/metrics"
	"github.com/tarungka/sieve/internal/tuple"
)

// Result is the outcome of one job.
type Result struct {
	Job      string
	Tuples   []*tuple.Tuple
	Duration time.Duration
	Err      error
}

// Runner executes the jobs of a workflow one after another on the calling goroutine.
type Runner struct {
	registry *metrics.Registry
	logger   zerolog.Logger

	// Metrics
	processedJobs uint64
	failedJobs    uint64
}

// NewRunner creates a Runner. registry may be nil.
func NewRunner(registry *metrics.Registry) *Runner {
	return &Runner{registry: registry, logger: logger.GetLogger("runner")}
}

// Run executes every job in order and returns one result per job. A failing job does
// not stop the others; its error is reported in its Result. Jobs not yet started when
// ctx is cancelled fail with ctx's error.
func (r *Runner) Run(ctx context.Context, jobs []*Job) []Result {
	results := make([]Result, 0, len(jobs))
	for _, job := range jobs {
		if r.registry != nil {
			job.Pipeline.RegisterMetrics(r.registry)
		}

		startTime := time.Now()
		tuples, err := r.runJob(ctx, job)
		res := Result{Job: job.Name, Tuples: tuples, Duration: time.Since(startTime), Err: err}
		results = append(results, res)

		if err != nil {
			r.failedJobs++
			r.logger.Error().
				Err(err).
				Str("pipeline", job.Name).
				Dur("duration_ms", res.Duration).
				Msg("Pipeline failed")
			continue
		}
		r.processedJobs++
		r.logger.Debug().
			Str("pipeline", job.Name).
			Int("tuples", len(tuples)).
			Dur("duration_ms", res.Duration).
			Msg("Pipeline finished")
	}
	return results
}

func (r *Runner) runJob(ctx context.Context, job *Job) ([]*tuple.Tuple, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tuples, err := job.Pipeline.Run(ctx)
	if err != nil {
		return nil, err
	}
	if job.Writer != nil {
		if err := job.Writer.Write(ctx, job.Pipeline.Sink().ChartType(), tuples); err != nil {
			return nil, err
		}
	}
	return tuples, nil
}

// RunnerStats holds statistics for the runner.
type RunnerStats struct {
	ProcessedJobs uint64
	FailedJobs    uint64
}

// Stats returns the counts of finished jobs.
func (r *Runner) Stats() RunnerStats {
	return RunnerStats{
		ProcessedJobs: r.processedJobs,
		FailedJobs:    r.failedJobs,
	}
}
