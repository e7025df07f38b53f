package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	r := NewRouter(DefaultRouterOptions())
	schema := NewPerModelSchema()
	schema.GateTimeout = 20 * time.Millisecond
	p := NewProvider(r, schema)
	require.NoError(t, p.Start())
	return p
}

func TestProviderStartBuildsRouterAndCore(t *testing.T) {
	p := newTestProvider(t)
	assert.True(t, p.Running())
	require.NotNil(t, p.Core())
	assert.True(t, p.Router().Built())
}

func TestProviderNewModelRegisters(t *testing.T) {
	p := newTestProvider(t)
	m := p.NewModel()
	got, ok := p.Registry().Lookup(m.ID())
	assert.True(t, ok)
	assert.Equal(t, m, got)
}

func TestProviderShutdownStopsModels(t *testing.T) {
	p := newTestProvider(t)
	m := p.NewModel()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Shutdown(ctx))

	assert.False(t, p.Running())
	assert.False(t, m.Container().Alive())
}

func TestProviderShutdownIsIdempotent(t *testing.T) {
	p := newTestProvider(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Shutdown(ctx))
	require.NoError(t, p.Shutdown(ctx))
}

type countingSink struct {
	started, stopped, sent, handled, unhandled int
}

func (s *countingSink) SignalSent(string)                  { s.sent++ }
func (s *countingSink) SignalHandled(string, time.Duration) { s.handled++ }
func (s *countingSink) SignalUnhandled(string)              { s.unhandled++ }
func (s *countingSink) SignalDropped(string)                {}
func (s *countingSink) ModelStarted(string)                 { s.started++ }
func (s *countingSink) ModelStopped(string)                 { s.stopped++ }

func TestProviderSurvivesHandlerPanic(t *testing.T) {
	r := NewRouter(DefaultRouterOptions())
	_, err := r.RegisterSignal("boom", func(_ *Router, _ *Model, _ *Signal) error {
		panic("handler exploded")
	})
	require.NoError(t, err)
	received := make(chan string, 1)
	_, err = RegisterSignalTyped[string](r, "survives", func(_ *Router, _ *Model, _ *Signal, data string) error {
		received <- data
		return nil
	})
	require.NoError(t, err)

	schema := NewPerModelSchema()
	schema.GateTimeout = 20 * time.Millisecond
	p := NewProvider(r, schema)
	require.NoError(t, p.Start())
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		p.Shutdown(ctx)
	}()

	m := p.NewModel()
	require.NoError(t, SendSignal(p.Router(), nil, m, "boom", "x", 0))
	require.NoError(t, SendSignal(p.Router(), nil, m, "survives", "still here", 0))

	select {
	case data := <-received:
		assert.Equal(t, "still here", data)
	case <-time.After(time.Second):
		t.Fatal("container did not survive the panic")
	}
}

func TestProviderNotifiesMetricsSinkOnModelStart(t *testing.T) {
	p := newTestProvider(t)
	sink := &countingSink{}
	p.SetMetricsSink(sink)

	p.NewModel()
	assert.Equal(t, 1, sink.started)
}
