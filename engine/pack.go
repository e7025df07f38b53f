package engine

import (
	"fmt"
	"reflect"
)

var byteSliceType = reflect.TypeOf([]byte{})
var anyType = reflect.TypeOf((*any)(nil)).Elem()

// PackContent tries encoder keys in order — the runtime type of the data,
// then T, then `any` — and wraps the first match's output into a
// Content[PackedData] with the typed-payload bit set.
func PackContent[T any](r *Router, c Content[T]) (Content[PackedData], error) {
	t := r.currentTables()
	staticType := reflect.TypeOf((*T)(nil)).Elem()

	var candidates []reflect.Type
	if rt := reflect.TypeOf(c.data); rt != nil {
		candidates = append(candidates, rt)
	}
	if len(candidates) == 0 || candidates[0] != staticType {
		candidates = append(candidates, staticType)
	}
	candidates = append(candidates, anyType)

	var chosen *encoderEntry
	for _, cand := range candidates {
		if idx, ok := t.encoderIndex[cand]; ok {
			chosen = &t.encoders[idx]
			break
		}
	}
	if chosen == nil {
		return Content[PackedData]{}, fmt.Errorf("%w: %s", ErrNoEncoder, staticType)
	}

	encoded, err := chosen.fn(any(c.data))
	if err != nil {
		return Content[PackedData]{}, err
	}

	decoderIdx := int16(-1)
	if idx, ok := t.decoderIndex[chosen.outputType]; ok {
		decoderIdx = int16(idx)
	}

	flags := FlagNone
	if chosen.inputType == anyType && chosen.outputType == anyType {
		flags |= FlagGeneric
	}

	packed := PackedData{
		Flags:        flags,
		DecoderIndex: decoderIdx,
		Type:         chosen.outputType,
		Bytes:        encoded,
	}
	header := c.header | typedPayloadBit
	return newContent(header, packed, false), nil
}

// UnpackContent returns the decoded payload for a packed-data content, or
// nil if the typed-payload bit is clear or the wrapped bytes are empty.
func UnpackContent(r *Router, c Content[PackedData]) (any, error) {
	if !c.IsTyped() {
		return nil, nil
	}
	packed := c.Data()
	if len(packed.Bytes) == 0 {
		return nil, nil
	}
	if packed.Type == byteSliceType {
		return packed.Bytes, nil
	}

	t := r.currentTables()
	if packed.DecoderIndex >= 0 {
		if int(packed.DecoderIndex) >= len(t.decoders) {
			return nil, fmt.Errorf("%w: index %d", ErrNoDecoder, packed.DecoderIndex)
		}
		return t.decoders[packed.DecoderIndex].fn(packed.Bytes)
	}
	if idx, ok := t.decoderIndex[packed.Type]; ok {
		return t.decoders[idx].fn(packed.Bytes)
	}
	if packed.Flags&FlagGeneric != 0 {
		if idx, ok := t.decoderIndex[anyType]; ok {
			return t.decoders[idx].fn(packed.Bytes)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoDecoder, packed.Type)
}

// UnpackAs decodes c and narrows the result to T, returning T's zero value
// (not an error) when the decoded value does not match the requested type —
// "mismatched requested type returns the default/empty value" per §4.1.
func UnpackAs[T any](r *Router, c Content[PackedData]) (T, error) {
	var zero T
	v, err := UnpackContent(r, c)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	if typed, ok := v.(T); ok {
		return typed, nil
	}
	return zero, nil
}
