package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerModelSchemaDispatchesSignals(t *testing.T) {
	r := NewRouter(RouterOptions{})
	received := make(chan string, 1)
	_, err := RegisterSignalTyped[string](r, "greet", func(_ *Router, _ *Model, _ *Signal, data string) error {
		received <- data
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, r.Build())

	schema := NewPerModelSchema()
	schema.GateTimeout = 20 * time.Millisecond
	m := NewModel(nil, r)
	m.setContainer(schema.StartHost(m))

	require.NoError(t, SendSignal(r, nil, m, "greet", "hi", 0))

	select {
	case data := <-received:
		assert.Equal(t, "hi", data)
	case <-time.After(time.Second):
		t.Fatal("signal was never dispatched")
	}

	m.Container().Kill()
	waitUntil(t, func() bool { return !m.Container().Alive() })
}

func TestPerModelSchemaPauseRejectsSends(t *testing.T) {
	r := newBuiltRouter(t)
	schema := NewPerModelSchema()
	schema.GateTimeout = 10 * time.Millisecond
	m := NewModel(nil, r)
	m.setContainer(schema.StartHost(m))

	m.Container().Pause()
	err := SendSignal(r, nil, m, "_null", "x", 0)
	assert.ErrorIs(t, err, ErrSendRejected)

	m.Container().Kill()
}

func TestPerModelSchemaHonoursMinimumLoopTime(t *testing.T) {
	r := newBuiltRouter(t)
	schema := NewPerModelSchema()
	schema.GateTimeout = 50 * time.Millisecond
	schema.MinimumLoopTime = 10 * time.Millisecond
	m := NewModel(nil, r)
	m.setContainer(schema.StartHost(m))
	defer m.Container().Kill()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		require.NoError(t, SendSignal(r, nil, m, "_null", "x", 0))
		time.Sleep(time.Millisecond)
	}

	loopTime := m.Container().ApproximateLoopTime()
	assert.GreaterOrEqual(t, loopTime, 8*time.Millisecond)
	assert.LessOrEqual(t, loopTime, 15*time.Millisecond)
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never became true")
}
