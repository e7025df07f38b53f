package engine

import "time"

const defaultGateTimeout = 30 * time.Second

// PerModelSchema gives every model its own dedicated goroutine. It is the
// simplest parallelism schema: correct under any load, but one goroutine
// per model stops scaling once the model count gets large, which is what
// PoolSchema is for.
type PerModelSchema struct {
	// GateTimeout bounds how long an idle model's goroutine sleeps before
	// waking anyway to compact expired signals out of its inbox.
	GateTimeout time.Duration
	// MinimumLoopTime floors how often a container re-ticks its model; a
	// zero value means no throttling beyond what work demands.
	MinimumLoopTime time.Duration
	// PerformanceInterval is the smoothing window TrackPerformance's rolling
	// mean is computed against.
	PerformanceInterval time.Duration
}

// NewPerModelSchema returns a PerModelSchema with the default 30s gate
// timeout and default performance-tracking interval.
func NewPerModelSchema() *PerModelSchema {
	return &PerModelSchema{
		GateTimeout:         defaultGateTimeout,
		PerformanceInterval: defaultPerformanceInterval,
	}
}

// perModelContainer is the Container a PerModelSchema hands to each model.
type perModelContainer struct {
	*baseContainer
	model  *Model
	schema *PerModelSchema
}

// StartHost launches m's dedicated goroutine and returns its container.
func (s *PerModelSchema) StartHost(m *Model) Container {
	c := &perModelContainer{
		baseContainer: newBaseContainer(s.MinimumLoopTime),
		model:         m,
		schema:        s,
	}
	c.SetPerformanceInterval(s.PerformanceInterval)
	m.setContainer(c)
	go c.run()
	return c
}

func (c *perModelContainer) run() {
	timeout := c.schema.GateTimeout
	if timeout <= 0 {
		timeout = defaultGateTimeout
	}
	for {
		woke := c.workGate.Wait(timeout)
		c.workGate.Reset()

		if !c.paused.Load() {
			start := time.Now()
			runTick(c.model)
			elapsed := time.Since(start)

			if min := c.updateRate(); min > elapsed {
				time.Sleep(min - elapsed)
			}
			c.trackPerformance(time.Since(start))
		}

		if !woke {
			c.model.inbox.compactExpired()
		}

		if c.killed.Load() {
			c.alive.Store(false)
			return
		}
	}
}
