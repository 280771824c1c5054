// Package scheduler drives the collectors on fixed intervals. The ticker
// makes no overlap guarantee; collectors stay safe under overlapping runs
// through their idempotent upserts.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ghi-core/backend/pkg/logger"
)

// Collector is one periodic ingestion job.
type Collector interface {
	RunOnce(ctx context.Context) int
}

type job struct {
	name      string
	collector Collector
	interval  time.Duration
}

type Scheduler struct {
	jobs   []job
	cancel context.CancelFunc
	done   chan struct{}
}

func New() *Scheduler {
	return &Scheduler{}
}

// Add registers a collector to run immediately on start and then every
// interval.
func (s *Scheduler) Add(name string, c Collector, interval time.Duration) {
	s.jobs = append(s.jobs, job{name: name, collector: c, interval: interval})
}

// Start launches one goroutine per job. Call Stop to drain them.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		var jobDone []chan struct{}
		for _, j := range s.jobs {
			ch := make(chan struct{})
			jobDone = append(jobDone, ch)
			go s.run(ctx, j, ch)
		}
		for _, ch := range jobDone {
			<-ch
		}
	}()
}

func (s *Scheduler) run(ctx context.Context, j job, done chan struct{}) {
	defer close(done)

	logger.Info("Collector scheduled",
		zap.String("job", j.name), zap.Duration("interval", j.interval))
	j.collector.RunOnce(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.collector.RunOnce(ctx)
		}
	}
}

// Stop cancels all jobs and waits for in-flight cycles to finish.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	logger.Info("Scheduler stopped")
}
