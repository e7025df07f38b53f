package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discoveryTarget struct {
	pinged  int
	greeted string
}

func (d *discoveryTarget) OnPing() error {
	d.pinged++
	return nil
}

func (d *discoveryTarget) OnGreet(from string) error {
	d.greeted = from
	return nil
}

// Ignored() has no error return, so RegisterHandlers must skip it.
func (d *discoveryTarget) Ignored() string { return "nope" }

// OnTooMany has more than one payload argument and must be skipped.
func (d *discoveryTarget) OnTooMany(a, b string) error { return nil }

func TestRegisterHandlersDiscoversQualifyingMethods(t *testing.T) {
	r := NewRouter(RouterOptions{})
	descs, err := RegisterHandlers(r, &discoveryTarget{})
	require.NoError(t, err)
	require.NoError(t, r.Build())

	names := make(map[string]bool)
	for _, d := range descs {
		names[d.SignalName] = true
	}
	assert.True(t, names["ping"])
	assert.True(t, names["greet"])
	assert.False(t, names["ignored"])
	assert.False(t, names["toomany"])
}

func TestDiscoveredHandlerDispatchesToModelUserData(t *testing.T) {
	r := NewRouter(RouterOptions{})
	_, err := RegisterHandlers(r, &discoveryTarget{})
	require.NoError(t, err)
	require.NoError(t, r.Build())

	m := NewModel(nil, r)
	target := &discoveryTarget{}
	m.SetUserData(target)

	content, err := BuildSignalContent(r, "greet", "operator")
	require.NoError(t, err)
	sig := newSignal(r, nil, m, content, 0)
	require.True(t, m.ReceiveMessage(sig))
	m.tick()

	assert.Equal(t, "operator", target.greeted)
	assert.True(t, sig.Handled())
}

func TestDiscoveredHandlerSkipsMismatchedUserData(t *testing.T) {
	r := NewRouter(RouterOptions{})
	_, err := RegisterHandlers(r, &discoveryTarget{})
	require.NoError(t, err)
	require.NoError(t, r.Build())

	m := NewModel(nil, r)
	m.SetUserData("not-a-discovery-target")

	content, err := BuildSignalContent(r, "ping", "x")
	require.NoError(t, err)
	sig := newSignal(r, nil, m, content, 0)
	require.True(t, m.ReceiveMessage(sig))
	m.tick()

	assert.False(t, sig.Handled())
}
