package engine

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
)

// Int128 is a 128-bit integer represented as two 64-bit halves, since Go has
// no native int128. Hi holds the high-order bits.
type Int128 struct {
	Hi uint64
	Lo uint64
}

// registerDefaultCodecs seeds the router with the §4.1 default encoder/
// decoder set: UTF-8 strings, little-endian fixed-width numerics, Int128,
// raw byte passthrough, and a JSON-over-UTF-8 catch-all for `any`.
func registerDefaultCodecs(r *Router) {
	mustEncoder(RegisterEncoder[string, string](r, func(s string) ([]byte, error) {
		return []byte(s), nil
	}))
	mustDecoder(RegisterDecoder[string](r, func(b []byte) (string, error) {
		return string(b), nil
	}))

	mustEncoder(RegisterEncoder[int32, int32](r, func(v int32) ([]byte, error) {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(v))
		return b, nil
	}))
	mustDecoder(RegisterDecoder[int32](r, func(b []byte) (int32, error) {
		if len(b) < 4 {
			return 0, fmt.Errorf("%w: need 4 bytes, got %d", ErrInvalidData, len(b))
		}
		return int32(binary.LittleEndian.Uint32(b)), nil
	}))

	mustEncoder(RegisterEncoder[int64, int64](r, func(v int64) ([]byte, error) {
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, uint64(v))
		return b, nil
	}))
	mustDecoder(RegisterDecoder[int64](r, func(b []byte) (int64, error) {
		if len(b) < 8 {
			return 0, fmt.Errorf("%w: need 8 bytes, got %d", ErrInvalidData, len(b))
		}
		return int64(binary.LittleEndian.Uint64(b)), nil
	}))

	mustEncoder(RegisterEncoder[uint32, uint32](r, func(v uint32) ([]byte, error) {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, v)
		return b, nil
	}))
	mustDecoder(RegisterDecoder[uint32](r, func(b []byte) (uint32, error) {
		if len(b) < 4 {
			return 0, fmt.Errorf("%w: need 4 bytes, got %d", ErrInvalidData, len(b))
		}
		return binary.LittleEndian.Uint32(b), nil
	}))

	mustEncoder(RegisterEncoder[uint64, uint64](r, func(v uint64) ([]byte, error) {
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, v)
		return b, nil
	}))
	mustDecoder(RegisterDecoder[uint64](r, func(b []byte) (uint64, error) {
		if len(b) < 8 {
			return 0, fmt.Errorf("%w: need 8 bytes, got %d", ErrInvalidData, len(b))
		}
		return binary.LittleEndian.Uint64(b), nil
	}))

	mustEncoder(RegisterEncoder[float32, float32](r, func(v float32) ([]byte, error) {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, math.Float32bits(v))
		return b, nil
	}))
	mustDecoder(RegisterDecoder[float32](r, func(b []byte) (float32, error) {
		if len(b) < 4 {
			return 0, fmt.Errorf("%w: need 4 bytes, got %d", ErrInvalidData, len(b))
		}
		return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
	}))

	mustEncoder(RegisterEncoder[float64, float64](r, func(v float64) ([]byte, error) {
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, math.Float64bits(v))
		return b, nil
	}))
	mustDecoder(RegisterDecoder[float64](r, func(b []byte) (float64, error) {
		if len(b) < 8 {
			return 0, fmt.Errorf("%w: need 8 bytes, got %d", ErrInvalidData, len(b))
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
	}))

	mustEncoder(RegisterEncoder[Int128, Int128](r, func(v Int128) ([]byte, error) {
		b := make([]byte, 16)
		binary.LittleEndian.PutUint64(b[0:8], v.Lo)
		binary.LittleEndian.PutUint64(b[8:16], v.Hi)
		return b, nil
	}))
	mustDecoder(RegisterDecoder[Int128](r, func(b []byte) (Int128, error) {
		if len(b) < 16 {
			return Int128{}, fmt.Errorf("%w: need 16 bytes, got %d", ErrInvalidData, len(b))
		}
		return Int128{Lo: binary.LittleEndian.Uint64(b[0:8]), Hi: binary.LittleEndian.Uint64(b[8:16])}, nil
	}))

	mustEncoder(RegisterEncoder[[]byte, []byte](r, func(v []byte) ([]byte, error) {
		return v, nil
	}))
	mustDecoder(RegisterDecoder[[]byte](r, func(b []byte) ([]byte, error) {
		return b, nil
	}))

	// Generic catch-all: JSON over UTF-8 for arbitrary objects registered
	// against type `any`. Opt-in per §9 design note 2 — callers that want
	// structured payloads without a bespoke codec fall back to this, but it
	// is never assumed to be the normative wire format.
	mustEncoder(RegisterEncoder[any, any](r, func(v any) ([]byte, error) {
		return json.Marshal(v)
	}))
	mustDecoder(RegisterDecoder[any](r, func(b []byte) (any, error) {
		var v any
		err := json.Unmarshal(b, &v)
		return v, err
	}))
}

func mustEncoder(_ int, err error) {
	if err != nil {
		panic("engine: default encoder registration failed: " + err.Error())
	}
}

func mustDecoder(_ int, err error) {
	if err != nil {
		panic("engine: default decoder registration failed: " + err.Error())
	}
}
