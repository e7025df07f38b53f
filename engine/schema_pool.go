package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

const defaultSupervisorInterval = 500 * time.Millisecond
const readyQueueCapacity = 1 << 16

// PoolSchema shares a bounded pool of worker goroutines across many models,
// instead of giving each its own goroutine the way PerModelSchema does. A
// supervisor goroutine periodically recomputes how many workers the current
// model count justifies and grows the pool toward that goal; workers shrink
// themselves back out when the goal drops, checking their own spawn index
// against the goal on every idle cycle so a shrink can never leave a worker
// running forever with nothing left for it to do.
type PoolSchema struct {
	// TargetPools caps the number of worker goroutines regardless of model
	// count.
	TargetPools int
	// TargetDensity is the number of models each worker is sized to serve;
	// the supervisor grows the pool roughly in proportion to
	// containerCount/TargetDensity.
	TargetDensity int
	// SupervisorInterval controls how often the goal is recomputed.
	SupervisorInterval time.Duration
	// PerformanceInterval is the smoothing window TrackPerformance's rolling
	// mean is computed against.
	PerformanceInterval time.Duration

	once         sync.Once
	ready        chan *poolContainer
	spawnedCount atomic.Int64
	currentGoal  atomic.Int64
	modelCount   atomic.Int64
}

// NewPoolSchema returns a PoolSchema with the given caps and the default
// 500ms supervisor interval.
func NewPoolSchema(targetPools, targetDensity int) *PoolSchema {
	return &PoolSchema{
		TargetPools:         targetPools,
		TargetDensity:       targetDensity,
		SupervisorInterval:  defaultSupervisorInterval,
		PerformanceInterval: defaultPerformanceInterval,
	}
}

func (s *PoolSchema) start() {
	s.once.Do(func() {
		s.ready = make(chan *poolContainer, readyQueueCapacity)
		s.currentGoal.Store(1)
		go s.runSupervisor()
		idx := s.spawnedCount.Add(1) - 1
		go s.runWorker(int(idx))
	})
}

// poolContainer is the Container a PoolSchema hands to each model it hosts.
type poolContainer struct {
	*baseContainer
	model   *Model
	schema  *PoolSchema
	reentry atomic.Int32
}

// StartHost registers m with the pool, starting the supervisor and its
// first worker on first use.
func (s *PoolSchema) StartHost(m *Model) Container {
	s.start()
	c := &poolContainer{
		baseContainer: newBaseContainer(0),
		model:         m,
		schema:        s,
	}
	c.SetPerformanceInterval(s.PerformanceInterval)
	m.setContainer(c)
	s.modelCount.Add(1)
	return c
}

// NotifyWork enqueues c onto the shared ready channel unless it is already
// queued — the 0→1 transition on reentry is what guards against duplicate
// scheduling when multiple senders notify concurrently.
func (c *poolContainer) NotifyWork() {
	if c.reentry.Add(1) > 1 {
		c.reentry.Add(-1)
		return
	}
	c.schema.ready <- c
}

// Kill marks c for termination and queues it once more, so a worker runs its
// last tick and marks it dead even when no further signal arrives.
func (c *poolContainer) Kill() {
	c.baseContainer.Kill()
	if c.Alive() {
		c.NotifyWork()
	}
}

func (s *PoolSchema) computeGoal() int64 {
	density := int64(s.TargetDensity)
	if density <= 0 {
		density = 1
	}
	containers := s.modelCount.Load()
	goal := containers / density
	if containers%density != 0 {
		goal++
	}
	if goal < 1 {
		goal = 1
	}
	if s.TargetPools > 0 && goal > int64(s.TargetPools) {
		goal = int64(s.TargetPools)
	}
	return goal
}

func (s *PoolSchema) runSupervisor() {
	ticker := time.NewTicker(s.SupervisorInterval)
	defer ticker.Stop()
	for range ticker.C {
		goal := s.computeGoal()
		s.currentGoal.Store(goal)
		for s.spawnedCount.Load() < goal {
			idx := s.spawnedCount.Add(1) - 1
			go s.runWorker(int(idx))
		}
	}
}

// runWorker services the shared ready queue until its own spawn index no
// longer fits under currentGoal, at which point it self-terminates and
// decrements spawnedCount so a later goal increase can respawn a
// replacement with a fresh index.
func (s *PoolSchema) runWorker(idx int) {
	defer s.spawnedCount.Add(-1)
	for {
		select {
		case c := <-s.ready:
			if !c.paused.Load() {
				start := time.Now()
				runTick(c.model)
				c.trackPerformance(time.Since(start))
			}
			// Reset only after the tick completes: a NotifyWork that arrives
			// mid-tick must not re-enqueue c while we still hold it, or a
			// second worker could dequeue it and tick the same model
			// concurrently.
			c.reentry.Store(0)
			if c.killed.Load() {
				c.alive.Store(false)
			} else if c.model.Pending() {
				c.NotifyWork()
			}
		case <-time.After(s.SupervisorInterval):
		}
		if int64(idx) >= s.currentGoal.Load() {
			return
		}
	}
}
