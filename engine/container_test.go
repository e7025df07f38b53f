package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBaseContainerLifecycle(t *testing.T) {
	b := newBaseContainer(10 * time.Millisecond)
	assert.True(t, b.Alive())
	assert.False(t, b.Paused())

	b.Pause()
	assert.True(t, b.Paused())
	b.Resume()
	assert.False(t, b.Paused())

	b.trackPerformance(25 * time.Millisecond)
	assert.Equal(t, 25*time.Millisecond, b.ApproximateLoopTime())

	b.SetUpdateRate(50 * time.Millisecond)
	assert.Equal(t, 50*time.Millisecond, b.updateRate())
}

func TestBaseContainerKillWakesGate(t *testing.T) {
	b := newBaseContainer(0)
	done := make(chan bool, 1)
	go func() { done <- b.workGate.Wait(time.Second) }()
	time.Sleep(5 * time.Millisecond)
	b.Kill()

	select {
	case woke := <-done:
		assert.True(t, woke)
	case <-time.After(time.Second):
		t.Fatal("gate never woke after Kill")
	}
}
