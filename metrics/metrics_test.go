package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCollector builds a Collector against a private registry so tests
// don't collide with each other (or with a process-wide NewCollector) on
// prometheus's default registry.
func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	return NewCollectorFor(prometheus.NewRegistry())
}

func TestSignalCounters(t *testing.T) {
	c := newTestCollector(t)

	c.SignalSent("greet")
	c.SignalSent("greet")
	c.SignalHandled("greet", 10*time.Millisecond)
	c.SignalUnhandled("farewell")
	c.SignalDropped("greet")

	assert.Equal(t, float64(2), testutil.ToFloat64(c.signalsSent.WithLabelValues("greet")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.signalsHandled.WithLabelValues("greet")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.signalsUnhandled.WithLabelValues("farewell")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.signalsDropped.WithLabelValues("greet")))
}

func TestModelGauge(t *testing.T) {
	c := newTestCollector(t)

	c.ModelStarted("m1")
	c.ModelStarted("m2")
	c.ModelStopped("m1")

	assert.Equal(t, float64(1), testutil.ToFloat64(c.modelsLive))
}

func TestUpdatePoolStats(t *testing.T) {
	c := newTestCollector(t)

	c.UpdatePoolStats(4, 3)

	assert.Equal(t, float64(4), testutil.ToFloat64(c.poolGoal))
	assert.Equal(t, float64(3), testutil.ToFloat64(c.poolActive))
}

func TestAddr(t *testing.T) {
	require.Equal(t, "0.0.0.0:9090", Addr("0.0.0.0", 9090))
}
