package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalExpiry(t *testing.T) {
	r := newBuiltRouter(t)
	m := NewModel(nil, r)
	c, err := BuildSignalContent(r, "_null", "x")
	require.NoError(t, err)

	sig := newSignal(r, nil, m, c, time.Millisecond)
	assert.False(t, sig.IsExpired())
	time.Sleep(5 * time.Millisecond)
	assert.True(t, sig.IsExpired())
}

func TestSignalNeverExpiresByDefault(t *testing.T) {
	r := newBuiltRouter(t)
	m := NewModel(nil, r)
	c, err := BuildSignalContent(r, "_null", "x")
	require.NoError(t, err)

	sig := newSignal(r, nil, m, c, 0)
	assert.False(t, sig.IsExpired())
}

func TestSignalReplyWithoutCompleterIsNoop(t *testing.T) {
	r := newBuiltRouter(t)
	m := NewModel(nil, r)
	c, err := BuildSignalContent(r, "_null", "x")
	require.NoError(t, err)

	sig := newSignal(r, nil, m, c, 0)
	assert.False(t, sig.Reply("reply"))
}

func TestGetDataTypeNarrowing(t *testing.T) {
	r := newBuiltRouter(t)
	m := NewModel(nil, r)
	c, err := BuildSignalContent(r, "_null", 42)
	require.NoError(t, err)
	sig := newSignal(r, nil, m, c, 0)

	v, ok := GetData[int](sig)
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = GetData[string](sig)
	assert.False(t, ok)
}

func TestUnpackDataRoundTrip(t *testing.T) {
	r := newBuiltRouter(t)
	m := NewModel(nil, r)
	c, err := BuildSignalContent(r, "_null", "packed value")
	require.NoError(t, err)
	packed, err := PackContent(r, c)
	require.NoError(t, err)
	sig := newSignal(r, nil, m, packed, 0)

	v, ok := UnpackData[string](r, sig)
	assert.True(t, ok)
	assert.Equal(t, "packed value", v)
}
