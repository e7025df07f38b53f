package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDNonColliding(t *testing.T) {
	seen := make(map[ID]bool)
	for i := 0; i < 10000; i++ {
		id := NewID()
		require.False(t, seen[id], "ID collision at iteration %d: %s", i, id.String())
		seen[id] = true
	}
}

func TestNewIDFormat(t *testing.T) {
	id := NewID()
	s := id.String()
	require.Len(t, s, 8)
	assert.Equal(t, byte('_'), s[0])
}

func TestIDFromStringRoundTrip(t *testing.T) {
	id := IDFromString("abc")
	assert.Equal(t, "abc     ", id.String())

	id2 := IDFromString("exactly8")
	assert.Equal(t, "exactly8", id2.String())

	long := "waytoolongforeightbytes"
	id3 := IDFromString(long)
	assert.Equal(t, long[len(long)-8:], id3.String())
}

func TestIDUint64Consistency(t *testing.T) {
	a := IDFromString("sameval1")
	b := IDFromString("sameval1")
	assert.Equal(t, a.Uint64(), b.Uint64())
	assert.Equal(t, a, b)
}
