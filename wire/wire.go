// Package wire implements the bit-exact signal serialization format: a u16
// LE content header followed, when the header's typed-payload bit is set,
// by a flags byte and a flags-specific body (STRING/INT/BYTE/generic).
package wire

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/najoast/signalmesh/engine"
)

const typedPayloadBit = uint16(1) << 15

// EncodeHeader renders header as its 2-byte little-endian wire form.
func EncodeHeader(header uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, header)
	return b
}

// DecodeHeader reads the 2-byte little-endian header prefix off data.
func DecodeHeader(data []byte) (uint16, error) {
	if len(data) < 2 {
		return 0, fmt.Errorf("%w: header needs 2 bytes, got %d", engine.ErrInvalidData, len(data))
	}
	return binary.LittleEndian.Uint16(data), nil
}

// Encode serializes c into the wire format from the external interfaces
// spec: a u16 LE header, and — only when the header's typed-payload bit is
// set — a flags byte followed by a flags-specific body.
func Encode(c engine.Content[engine.PackedData]) ([]byte, error) {
	out := EncodeHeader(c.Header())
	if !c.IsTyped() {
		return out, nil
	}

	packed := c.Data()
	out = append(out, byte(packed.Flags))

	switch {
	case packed.Flags&engine.FlagString != 0:
		out = append(out, encodeLengthPrefixed(packed.Bytes)...)

	case packed.Flags&engine.FlagInt != 0:
		if len(packed.Bytes) < 4 {
			return nil, fmt.Errorf("%w: INT body needs 4 bytes, got %d", engine.ErrInvalidData, len(packed.Bytes))
		}
		out = append(out, packed.Bytes[:4]...)

	case packed.Flags&engine.FlagByte != 0:
		out = append(out, encodeLengthPrefixed(packed.Bytes)...)

	default:
		idxBuf := make([]byte, 2)
		binary.LittleEndian.PutUint16(idxBuf, uint16(packed.DecoderIndex))
		out = append(out, idxBuf...)

		if packed.DecoderIndex < 0 {
			name := ""
			if packed.Type != nil {
				name = packed.Type.String()
			}
			out = append(out, encodeLengthPrefixed([]byte(name))...)
		}

		out = append(out, encodeLengthPrefixed(packed.Bytes)...)
	}

	return out, nil
}

// Decode parses one wire-format frame off the front of data and returns the
// reconstructed Content along with whatever bytes of data followed it.
func Decode(data []byte) (engine.Content[engine.PackedData], []byte, error) {
	header, err := DecodeHeader(data)
	if err != nil {
		return engine.Content[engine.PackedData]{}, nil, err
	}
	rest := data[2:]

	if header&typedPayloadBit == 0 {
		return engine.NewPackedContent(header, engine.PackedData{}), rest, nil
	}

	if len(rest) < 1 {
		return engine.Content[engine.PackedData]{}, nil, fmt.Errorf("%w: missing flags byte", engine.ErrInvalidData)
	}
	flags := engine.PackFlags(rest[0])
	rest = rest[1:]

	var packed engine.PackedData
	packed.Flags = flags

	switch {
	case flags&engine.FlagString != 0:
		b, tail, err := decodeLengthPrefixed(rest)
		if err != nil {
			return engine.Content[engine.PackedData]{}, nil, err
		}
		packed.Bytes = b
		packed.Type = reflect.TypeOf("")
		rest = tail

	case flags&engine.FlagInt != 0:
		if len(rest) < 4 {
			return engine.Content[engine.PackedData]{}, nil, fmt.Errorf("%w: INT body needs 4 bytes", engine.ErrInvalidData)
		}
		packed.Bytes = append([]byte(nil), rest[:4]...)
		packed.Type = reflect.TypeOf(int32(0))
		rest = rest[4:]

	case flags&engine.FlagByte != 0:
		b, tail, err := decodeLengthPrefixed(rest)
		if err != nil {
			return engine.Content[engine.PackedData]{}, nil, err
		}
		packed.Bytes = b
		packed.Type = reflect.TypeOf([]byte{})
		rest = tail

	default:
		if len(rest) < 2 {
			return engine.Content[engine.PackedData]{}, nil, fmt.Errorf("%w: decoder-index needs 2 bytes", engine.ErrInvalidData)
		}
		packed.DecoderIndex = int16(binary.LittleEndian.Uint16(rest))
		rest = rest[2:]

		if packed.DecoderIndex < 0 {
			nameBytes, tail, err := decodeLengthPrefixed(rest)
			if err != nil {
				return engine.Content[engine.PackedData]{}, nil, err
			}
			rest = tail
			_ = nameBytes // the type name is skipped, not resolved: packed.Type stays nil
		}

		b, tail, err := decodeLengthPrefixed(rest)
		if err != nil {
			return engine.Content[engine.PackedData]{}, nil, err
		}
		packed.Bytes = b
		rest = tail
	}

	return engine.NewPackedContent(header, packed), rest, nil
}

func encodeLengthPrefixed(b []byte) []byte {
	lenBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBuf, uint32(len(b)))
	return append(lenBuf, b...)
}

func decodeLengthPrefixed(data []byte) ([]byte, []byte, error) {
	if len(data) < 4 {
		return nil, nil, fmt.Errorf("%w: length prefix needs 4 bytes", engine.ErrInvalidData)
	}
	n := binary.LittleEndian.Uint32(data)
	data = data[4:]
	if uint32(len(data)) < n {
		return nil, nil, fmt.Errorf("%w: need %d bytes, got %d", engine.ErrInvalidData, n, len(data))
	}
	return append([]byte(nil), data[:n]...), data[n:], nil
}
