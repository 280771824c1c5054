package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingCollector struct {
	runs atomic.Int32
}

func (c *countingCollector) RunOnce(ctx context.Context) int {
	c.runs.Add(1)
	return 0
}

func TestSchedulerRunsImmediatelyAndOnTicks(t *testing.T) {
	collector := &countingCollector{}
	s := New()
	s.Add("test", collector, 20*time.Millisecond)
	s.Start()

	time.Sleep(70 * time.Millisecond)
	s.Stop()

	runs := collector.runs.Load()
	if runs < 2 {
		t.Errorf("expected immediate run plus at least one tick, got %d", runs)
	}
}

func TestSchedulerStopHalts(t *testing.T) {
	collector := &countingCollector{}
	s := New()
	s.Add("test", collector, 10*time.Millisecond)
	s.Start()
	time.Sleep(25 * time.Millisecond)
	s.Stop()

	after := collector.runs.Load()
	time.Sleep(30 * time.Millisecond)
	if collector.runs.Load() != after {
		t.Error("collector ran after Stop")
	}
}

func TestStopWithoutStart(t *testing.T) {
	s := New()
	s.Stop()
}
