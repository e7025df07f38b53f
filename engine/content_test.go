package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHeaderRoundTrip(t *testing.T) {
	r := NewRouter(DefaultRouterOptions())
	idx, err := r.RegisterSignal("ping", func(_ *Router, _ *Model, _ *Signal) error { return nil })
	require.NoError(t, err)
	require.NoError(t, r.Build())

	c, err := BuildSignalContent(r, "ping", "payload")
	require.NoError(t, err)
	assert.Equal(t, idx, c.SignalIndex())
	assert.False(t, c.IsNil())
	assert.Equal(t, "payload", c.Data())
	assert.Equal(t, "payload", c.RawData())
}

func TestContentNilData(t *testing.T) {
	r := NewRouter(DefaultRouterOptions())
	_, err := r.RegisterSignal("tick", func(_ *Router, _ *Model, _ *Signal) error { return nil })
	require.NoError(t, err)
	require.NoError(t, r.Build())

	var payload *string
	c, err := BuildSignalContent(r, "tick", payload)
	require.NoError(t, err)
	assert.True(t, c.IsNil())
	assert.Nil(t, c.RawData())
}

func TestEmptyContentRejectsSetData(t *testing.T) {
	ec := NewEmptyContent(7)
	assert.Error(t, ec.SetData("anything"))
	assert.NoError(t, ec.SetData(nil))
}

func TestSetDataTypeMismatch(t *testing.T) {
	c := newContent(uint16(1), "x", false)
	err := c.SetData(42)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestNewPackedContentUntyped(t *testing.T) {
	c := NewPackedContent(5, PackedData{})
	assert.Equal(t, uint16(5), c.Header())
	assert.False(t, c.IsTyped())
}
