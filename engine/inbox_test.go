package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSignal(header uint16, ttl time.Duration) *Signal {
	c := newContent(header, "x", false)
	return newSignal(nil, nil, nil, c, ttl)
}

func TestInboxFIFOOrder(t *testing.T) {
	ib := newInbox()
	for i := uint16(0); i < 5; i++ {
		ib.enqueue(newTestSignal(i, 0))
	}
	drained := ib.drain()
	require.Len(t, drained, 5)
	for i, sig := range drained {
		assert.Equal(t, uint16(i), sig.content.Header())
	}
}

func TestInboxGrowsPastInitialCapacity(t *testing.T) {
	ib := newInbox()
	const n = 100
	for i := 0; i < n; i++ {
		ib.enqueue(newTestSignal(uint16(i), 0))
	}
	assert.Equal(t, n, ib.len())
	drained := ib.drain()
	require.Len(t, drained, n)
	for i, sig := range drained {
		assert.Equal(t, uint16(i), sig.content.Header())
	}
}

func TestInboxDrainEmptiesQueue(t *testing.T) {
	ib := newInbox()
	ib.enqueue(newTestSignal(1, 0))
	ib.drain()
	assert.Equal(t, 0, ib.len())
	assert.Nil(t, ib.drain())
}

func TestInboxCompactExpiredPreservesOrder(t *testing.T) {
	ib := newInbox()
	ib.enqueue(newTestSignal(1, time.Millisecond))
	ib.enqueue(newTestSignal(2, 0))
	ib.enqueue(newTestSignal(3, time.Millisecond))
	ib.enqueue(newTestSignal(4, 0))
	time.Sleep(5 * time.Millisecond)

	removed := ib.compactExpired()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 2, ib.len())

	drained := ib.drain()
	require.Len(t, drained, 2)
	assert.Equal(t, uint16(2), drained[0].content.Header())
	assert.Equal(t, uint16(4), drained[1].content.Header())
}

func TestInboxConcurrentEnqueue(t *testing.T) {
	ib := newInbox()
	const goroutines = 20
	const perGoroutine = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				ib.enqueue(newTestSignal(0, 0))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*perGoroutine, ib.len())
}
