package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoreModelFansExitOutToOtherModels(t *testing.T) {
	p := newTestProvider(t)
	a := p.NewModel()
	b := p.NewModel()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Shutdown(ctx))

	assert.True(t, a.Closing())
	assert.True(t, b.Closing())
	assert.False(t, a.Container().Alive())
	assert.False(t, b.Container().Alive())
}

func TestCoreModelIgnoresNonExitSignals(t *testing.T) {
	p := newTestProvider(t)
	m := p.NewModel()

	require.NoError(t, SendSignal(p.Router(), nil, p.Core(), "_null", "x", 0))
	time.Sleep(20 * time.Millisecond)

	assert.False(t, m.Closing())
	assert.True(t, m.Container().Alive())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Shutdown(ctx))
}
