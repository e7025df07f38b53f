package wire

import (
	"testing"

	"github.com/najoast/signalmesh/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeHeaderRoundTrip(t *testing.T) {
	header := uint16(0x8007)
	encoded := EncodeHeader(header)
	require.Len(t, encoded, 2)

	decoded, err := DecodeHeader(encoded)
	require.NoError(t, err)
	assert.Equal(t, header, decoded)
}

func TestEncodeDecodeUntyped(t *testing.T) {
	c := engine.NewPackedContent(0x0005, engine.PackedData{})
	data, err := Encode(c)
	require.NoError(t, err)
	assert.Len(t, data, 2)

	decoded, rest, err := Decode(data)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.False(t, decoded.IsTyped())
	assert.Equal(t, uint16(0x0005), decoded.Header())
}

func TestEncodeDecodeString(t *testing.T) {
	packed := engine.PackedData{
		Flags: engine.FlagString,
		Bytes: []byte("hello signalmesh"),
	}
	c := engine.NewPackedContent(0x8001, packed)

	data, err := Encode(c)
	require.NoError(t, err)

	decoded, rest, err := Decode(data)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.True(t, decoded.IsTyped())
	assert.Equal(t, []byte("hello signalmesh"), decoded.Data().Bytes)
}

func TestEncodeDecodeInt(t *testing.T) {
	packed := engine.PackedData{
		Flags: engine.FlagInt,
		Bytes: []byte{0x2A, 0x00, 0x00, 0x00},
	}
	c := engine.NewPackedContent(0x8002, packed)

	data, err := Encode(c)
	require.NoError(t, err)

	decoded, _, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x2A, 0x00, 0x00, 0x00}, decoded.Data().Bytes)
}

func TestEncodeDecodeGenericWithDecoderIndex(t *testing.T) {
	packed := engine.PackedData{
		Flags:        engine.FlagGeneric,
		DecoderIndex: 3,
		Bytes:        []byte{0x01, 0x02, 0x03},
	}
	c := engine.NewPackedContent(0x8003, packed)

	data, err := Encode(c)
	require.NoError(t, err)

	decoded, _, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, int16(3), decoded.Data().DecoderIndex)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, decoded.Data().Bytes)
}

func TestEncodeDecodeGenericWithTypeName(t *testing.T) {
	packed := engine.PackedData{
		Flags:        engine.FlagGeneric,
		DecoderIndex: -1,
		Type:         nil,
		Bytes:        []byte("payload"),
	}
	c := engine.NewPackedContent(0x8004, packed)

	data, err := Encode(c)
	require.NoError(t, err)

	decoded, _, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, int16(-1), decoded.Data().DecoderIndex)
	assert.Equal(t, []byte("payload"), decoded.Data().Bytes)
}

func TestDecodeRejectsShortBuffers(t *testing.T) {
	_, err := DecodeHeader([]byte{0x01})
	assert.ErrorIs(t, err, engine.ErrInvalidData)

	_, _, err = Decode([]byte{0x01, 0x80})
	assert.ErrorIs(t, err, engine.ErrInvalidData)
}
