package engine

import (
	"fmt"
	"reflect"
)

const (
	typedPayloadBit = uint16(1) << 15
	signalIndexMask = uint16(0x7FFF)
)

// anyContent is the common, type-erased view over Content[T] that lets a
// Signal hold an envelope of unknown T.
type anyContent interface {
	Header() uint16
	SignalIndex() uint16
	IsTyped() bool
	IsNil() bool
	RawData() any
}

// Content is the header+payload envelope described in the data model: a
// 16-bit header (bit 15 is the typed-payload flag, bits 0-14 index the
// router's name table) wrapping a value of type T.
type Content[T any] struct {
	header uint16
	data   T
	isNil  bool
}

func newContent[T any](header uint16, data T, isNil bool) Content[T] {
	return Content[T]{header: header, data: data, isNil: isNil}
}

// Header returns the raw 16-bit header.
func (c Content[T]) Header() uint16 { return c.header }

// SignalIndex returns the header's low 15 bits: the index into the router's
// name table.
func (c Content[T]) SignalIndex() uint16 { return c.header & signalIndexMask }

// IsTyped reports whether bit 15 (the typed-payload flag) is set, i.e.
// whether this content wraps a PackedData wrapper rather than a plain value.
func (c Content[T]) IsTyped() bool { return c.header&typedPayloadBit != 0 }

// IsNil reports whether the content carries no payload (a signal with no
// data, per BuildSignalContent's null-data rule).
func (c Content[T]) IsNil() bool { return c.isNil }

// Data returns the wrapped payload value. If IsNil is true, this is T's zero
// value.
func (c Content[T]) Data() T { return c.data }

// RawData exposes the payload as `any`, for code (reflection-driven handler
// discovery, metrics labeling) that cannot know T statically.
func (c Content[T]) RawData() any {
	if c.isNil {
		return nil
	}
	return c.data
}

// SetData assigns obj into the content. A nil obj clears the content; a
// value assignable to T is stored; anything else is a type-mismatch error.
// EmptyContent overrides this to always reject non-nil data.
func (c *Content[T]) SetData(obj any) error {
	if obj == nil {
		var zero T
		c.data = zero
		c.isNil = true
		return nil
	}
	v, ok := obj.(T)
	if !ok {
		return fmt.Errorf("%w: cannot assign %T to content of type %T", ErrTypeMismatch, obj, c.data)
	}
	c.data = v
	c.isNil = false
	return nil
}

// emptyPayload is the payload type behind EmptyContent.
type emptyPayload struct{}

// EmptyContent is a Content[T] specialization that rejects any non-nil
// SetData (there is no payload slot to fill).
type EmptyContent struct {
	Content[emptyPayload]
}

// SetData fails for any non-nil obj: EmptyContent carries no payload. A nil
// obj is accepted as a no-op.
func (c *EmptyContent) SetData(obj any) error {
	if obj == nil {
		return nil
	}
	return fmt.Errorf("%w: empty content does not accept data", ErrArgument)
}

// NewEmptyContent builds an EmptyContent with the given header.
func NewEmptyContent(header uint16) EmptyContent {
	return EmptyContent{Content: newContent(header, emptyPayload{}, true)}
}

// NewPackedContent builds a Content[PackedData] directly from a header and
// payload, bypassing the router name lookup BuildSignalContent normally
// does. This is what lets the wire package reconstruct a Content purely
// from bytes it has decoded, without needing a Router in scope.
func NewPackedContent(header uint16, data PackedData) Content[PackedData] {
	return newContent(header, data, false)
}

// PackFlags tags which shorthand wire encoding a PackedData payload used.
type PackFlags uint8

const (
	FlagNone    PackFlags = 0
	FlagGeneric PackFlags = 1 << 0
	FlagInt     PackFlags = 1 << 1
	FlagString  PackFlags = 1 << 2
	FlagByte    PackFlags = 1 << 3
)

// PackedData is the packed-data payload variant: an encoded byte sequence
// plus enough metadata to decode it without the original static type known
// at the call site.
type PackedData struct {
	Flags        PackFlags
	DecoderIndex int16
	Type         reflect.Type
	Bytes        []byte
}
