package engine

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
)

// maxSignals is the 15-bit cap on registered signals (§4.1 tie-breaks).
const maxSignals = 32767

// reservedNull is the always-present zero-header placeholder: header 0 must
// unambiguously mean "no signal" regardless of whether default-signals mode
// is enabled.
const reservedNull = "_null"

// reservedPlaceholder occupies index 1, the second of the two structurally
// reserved table slots described in §4.1.
const reservedPlaceholder = "_reserved"

// Handler is an untyped signal handler: (router, destination, signal).
type Handler func(r *Router, dest *Model, sig *Signal) error

// signalEntry is one row of the router's parallel {ids, names, handlers}
// tables.
type signalEntry struct {
	name        string
	handler     Handler
	payloadType reflect.Type // nil for untyped handlers
}

// encoderEntry adapts an arbitrary input type to an encoded byte sequence.
type encoderEntry struct {
	inputType  reflect.Type
	outputType reflect.Type
	fn         func(in any) ([]byte, error)
}

// decoderEntry adapts an encoded byte sequence back to a Go value.
type decoderEntry struct {
	outputType reflect.Type
	fn         func([]byte) (any, error)
}

// routerTables is the immutable, published snapshot of everything the
// router needs to dispatch once Build has sealed it. Publishing it
// through an atomic.Pointer makes the read side (post-seal) lock-free, per
// the DESIGN NOTES suggestion for the "write-once-then-read-many" pattern.
type routerTables struct {
	entries      []signalEntry
	nameIndex    map[string]uint16 // lower-cased name -> index
	encoders     []encoderEntry
	encoderIndex map[reflect.Type]int
	decoders     []decoderEntry
	decoderIndex map[reflect.Type]int
}

// RouterOptions controls which built-ins the router seeds before sealing.
type RouterOptions struct {
	// DefaultSignals registers "exit" and "suspend" alongside the always-
	// present "_null"/"_reserved" structural placeholders.
	DefaultSignals bool
	// DefaultCodecs registers the UTF-8/binary/JSON-fallback encoder and
	// decoder set described in §4.1.
	DefaultCodecs bool
}

// DefaultRouterOptions returns the options a Provider uses unless told
// otherwise: both built-in groups enabled.
func DefaultRouterOptions() RouterOptions {
	return RouterOptions{DefaultSignals: true, DefaultCodecs: true}
}

// Router is the write-once registry of signal names and typed
// packers/unpackers, and the dispatch helper that resolves a Content's
// header to a handler.
type Router struct {
	opts RouterOptions

	mu      sync.Mutex // guards the staging fields below, pre-seal only
	built   atomic.Bool
	tables  atomic.Pointer[routerTables]
	staging *routerTables
}

// NewRouter creates an unsealed Router seeded with the requested built-ins.
func NewRouter(opts RouterOptions) *Router {
	r := &Router{
		opts: opts,
		staging: &routerTables{
			nameIndex:    make(map[string]uint16),
			encoderIndex: make(map[reflect.Type]int),
			decoderIndex: make(map[reflect.Type]int),
		},
	}
	r.registerLocked(reservedNull, nil, nil)
	r.registerLocked(reservedPlaceholder, nil, nil)
	if opts.DefaultSignals {
		r.registerLocked("exit", func(_ *Router, dest *Model, _ *Signal) error {
			dest.Container().Kill()
			return nil
		}, nil)
		r.registerLocked("suspend", func(_ *Router, dest *Model, _ *Signal) error {
			dest.Container().Pause()
			return nil
		}, nil)
	}
	if opts.DefaultCodecs {
		registerDefaultCodecs(r)
	}
	return r
}

// registerLocked appends an entry while already holding r.mu (or during
// construction, when no other goroutine can observe r yet).
func (r *Router) registerLocked(name string, handler Handler, payloadType reflect.Type) (uint16, error) {
	key := strings.ToLower(name)
	if _, exists := r.staging.nameIndex[key]; exists {
		return 0, fmt.Errorf("%w: %q", ErrSignalAlreadyExists, name)
	}
	if len(r.staging.entries) >= maxSignals {
		return 0, ErrRegistryFull
	}
	idx := uint16(len(r.staging.entries))
	r.staging.entries = append(r.staging.entries, signalEntry{name: name, handler: handler, payloadType: payloadType})
	r.staging.nameIndex[key] = idx
	return idx, nil
}

// RegisterSignal appends a name/handler pair to the router's tables. Errors:
// ErrSignalAlreadyExists (duplicate name), ErrRegistryFull (cap exceeded),
// ErrRouterAlreadyBuilt (sealed).
func (r *Router) RegisterSignal(name string, handler Handler) (uint16, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.built.Load() {
		return 0, ErrRouterAlreadyBuilt
	}
	return r.registerLocked(name, handler, nil)
}

// RegisterSignalTyped stores handler together with its declared payload
// type T so dispatch can narrow the Signal's data before invocation. Methods
// cannot carry type parameters in Go, so this is a package-level function
// rather than a method on Router.
func RegisterSignalTyped[T any](r *Router, name string, handler func(router *Router, dest *Model, sig *Signal, data T) error) (uint16, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.built.Load() {
		return 0, ErrRouterAlreadyBuilt
	}
	wrapped := func(router *Router, dest *Model, sig *Signal) error {
		data, ok := GetData[T](sig)
		if !ok {
			return nil
		}
		err := handler(router, dest, sig, data)
		if err == nil {
			sig.handled = true
		}
		return err
	}
	return r.registerLocked(name, wrapped, reflect.TypeOf((*T)(nil)).Elem())
}

// RegisterEncoder registers an encoder from I to a byte sequence, declaring
// its output type O so Pack can later look up a matching decoder.
func RegisterEncoder[I, O any](r *Router, fn func(in I) ([]byte, error)) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.built.Load() {
		return 0, ErrRouterAlreadyBuilt
	}
	inType := reflect.TypeOf((*I)(nil)).Elem()
	if _, exists := r.staging.encoderIndex[inType]; exists {
		return 0, fmt.Errorf("%w: %s", ErrEncoderDuplicate, inType)
	}
	outType := reflect.TypeOf((*O)(nil)).Elem()
	entry := encoderEntry{
		inputType:  inType,
		outputType: outType,
		fn: func(in any) ([]byte, error) {
			v, ok := in.(I)
			if !ok {
				return nil, fmt.Errorf("%w: expected %s, got %T", ErrInvalidEncoder, inType, in)
			}
			out, err := fn(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrEncoderCallback, err)
			}
			return out, nil
		},
	}
	idx := len(r.staging.encoders)
	r.staging.encoders = append(r.staging.encoders, entry)
	r.staging.encoderIndex[inType] = idx
	return idx, nil
}

// RegisterDecoder registers a decoder from a byte sequence to O.
func RegisterDecoder[O any](r *Router, fn func([]byte) (O, error)) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.built.Load() {
		return 0, ErrRouterAlreadyBuilt
	}
	outType := reflect.TypeOf((*O)(nil)).Elem()
	if _, exists := r.staging.decoderIndex[outType]; exists {
		return 0, fmt.Errorf("%w: %s", ErrDecoderDuplicate, outType)
	}
	entry := decoderEntry{
		outputType: outType,
		fn: func(b []byte) (any, error) {
			v, err := fn(b)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrDecoderCallback, err)
			}
			return v, nil
		},
	}
	idx := len(r.staging.decoders)
	r.staging.decoders = append(r.staging.decoders, entry)
	r.staging.decoderIndex[outType] = idx
	return idx, nil
}

// Build seals the router: subsequent registration calls fail with
// ErrRouterAlreadyBuilt, and the tables are published lock-free for
// dispatch. Build is idempotent.
func (r *Router) Build() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.built.Load() {
		return nil
	}
	r.tables.Store(r.staging)
	r.built.Store(true)
	return nil
}

// Built reports whether Build has sealed the router.
func (r *Router) Built() bool { return r.built.Load() }

func (r *Router) currentTables() *routerTables {
	if t := r.tables.Load(); t != nil {
		return t
	}
	// Pre-seal reads (e.g. GetHeaderName from a handler that runs before
	// Build, which should not normally happen) fall back to the staging
	// copy under the lock.
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.staging
}

// GetHeaderName resolves a Content header to the signal name registered at
// its index, or ErrUnknownSignal if the index is out of range.
func (r *Router) GetHeaderName(header uint16) (string, error) {
	t := r.currentTables()
	idx := header & signalIndexMask
	if int(idx) >= len(t.entries) {
		return "", fmt.Errorf("%w: index %d", ErrUnknownSignal, idx)
	}
	return t.entries[idx].name, nil
}

// GetSignalProcessor returns the handler stored at header&0x7FFF, or false
// if the index is out of range or has no handler (e.g. the reserved
// placeholders).
func (r *Router) GetSignalProcessor(header uint16) (Handler, bool) {
	t := r.currentTables()
	idx := header & signalIndexMask
	if int(idx) >= len(t.entries) {
		return nil, false
	}
	h := t.entries[idx].handler
	return h, h != nil
}

// InvokeProcessorDynamic resolves and calls the handler for sig's content
// header, marking sig handled on success.
func (r *Router) InvokeProcessorDynamic(dest *Model, sig *Signal) error {
	proc, ok := r.GetSignalProcessor(sig.content.Header())
	if !ok {
		return nil
	}
	if err := proc(r, dest, sig); err != nil {
		return err
	}
	sig.handled = true
	return nil
}

// BuildSignalContent resolves name to its table index and wraps data into a
// typed Content[T]. A nil data value produces a null content (a signal with
// no payload). Unknown names raise ErrUnknownSignal.
func BuildSignalContent[T any](r *Router, name string, data T) (Content[T], error) {
	t := r.currentTables()
	idx, ok := t.nameIndex[strings.ToLower(name)]
	if !ok {
		return Content[T]{}, fmt.Errorf("%w: %q", ErrUnknownSignal, name)
	}
	isNil := isNilValue(data)
	return newContent(idx, data, isNil), nil
}

func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}
