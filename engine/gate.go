package engine

import (
	"sync"
	"time"
)

// gate is a manual-reset event, the concurrency primitive the parallelism
// schemas use to put a model's worker goroutine to sleep between ticks and
// wake it the moment new work arrives. It plays the role .NET code would
// give to ManualResetEventSlim: Set latches open until the next Reset,
// and any number of waiters unblock together when that happens.
type gate struct {
	mu   sync.Mutex
	ch   chan struct{}
	open bool
}

func newGate() *gate {
	return &gate{ch: make(chan struct{})}
}

// Set opens the gate, releasing every current and future waiter until the
// next Reset.
func (g *gate) Set() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.open {
		g.open = true
		close(g.ch)
	}
}

// Reset closes the gate again.
func (g *gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open {
		g.open = false
		g.ch = make(chan struct{})
	}
}

// Wait blocks until the gate opens or timeout elapses, returning whether it
// opened (true) or the wait timed out (false).
func (g *gate) Wait(timeout time.Duration) bool {
	g.mu.Lock()
	ch := g.ch
	g.mu.Unlock()

	if timeout <= 0 {
		<-ch
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	}
}
