package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"tripsync-service/pkg/logger"
	"tripsync-service/pkg/metrics"
)

// Job is one registered periodic task
type Job struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
	running  atomic.Bool
}

// Registry owns the periodic jobs. Each job runs on its own ticker and
// never overlaps itself; distinct jobs run independently.
type Registry struct {
	jobs    []*Job
	metrics *metrics.Metrics
	logger  logger.Logger
	wg      sync.WaitGroup
}

// NewRegistry creates a new job registry
func NewRegistry(m *metrics.Metrics, log logger.Logger) *Registry {
	return &Registry{metrics: m, logger: log}
}

// Add registers a job under a unique name
func (r *Registry) Add(name string, interval time.Duration, run func(ctx context.Context) error) {
	r.jobs = append(r.jobs, &Job{name: name, interval: interval, run: run})
}

// Start launches every registered job. Each runs once immediately, then
// on its interval, until ctx is cancelled.
func (r *Registry) Start(ctx context.Context) {
	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.loop(ctx, job)
	}
}

// Wait blocks until every job loop has exited
func (r *Registry) Wait() {
	r.wg.Wait()
}

// RunNow triggers one pass of a named job, skipping when it is already
// mid-run
func (r *Registry) RunNow(ctx context.Context, name string) error {
	for _, job := range r.jobs {
		if job.name == name {
			return r.runOnce(ctx, job)
		}
	}
	return fmt.Errorf("no job named %q", name)
}

func (r *Registry) loop(ctx context.Context, job *Job) {
	defer r.wg.Done()

	if err := r.runOnce(ctx, job); err != nil {
		r.logger.Error("Job run failed", "job", job.name, "error", err)
	}

	ticker := time.NewTicker(job.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Job stopped", "job", job.name)
			return
		case <-ticker.C:
			if err := r.runOnce(ctx, job); err != nil {
				r.logger.Error("Job run failed", "job", job.name, "error", err)
			}
		}
	}
}

func (r *Registry) runOnce(ctx context.Context, job *Job) error {
	if !job.running.CompareAndSwap(false, true) {
		r.logger.Warn("Previous run still in progress, skipping", "job", job.name)
		return nil
	}
	defer job.running.Store(false)

	started := time.Now()
	r.logger.Debug("Job starting", "job", job.name)

	err := job.run(ctx)

	r.metrics.JobDuration.WithLabelValues(job.name).Observe(time.Since(started).Seconds())
	r.logger.Debug("Job finished", "job", job.name, "duration", time.Since(started).String())
	return err
}
