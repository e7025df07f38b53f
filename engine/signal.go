package engine

import "time"

// Signal is one in-flight message: envelope plus routing and lifecycle
// state. A Signal is created by SendSignal or Ask and handed to exactly one
// Model's inbox.
type Signal struct {
	router *Router
	sender *Model // nil for anonymously-sent signals
	dest   *Model

	content anyContent

	handled   bool
	expiresAt time.Time // zero means "never expires"
	completer *completer
}

func newSignal(router *Router, sender, dest *Model, content anyContent, ttl time.Duration) *Signal {
	sig := &Signal{router: router, sender: sender, dest: dest, content: content}
	if ttl > 0 {
		sig.expiresAt = time.Now().Add(ttl)
	}
	return sig
}

// Router returns the router this signal was built against.
func (s *Signal) Router() *Router { return s.router }

// Sender returns the sending model, or nil if the signal was sent
// anonymously.
func (s *Signal) Sender() *Model { return s.sender }

// Destination returns the addressed model.
func (s *Signal) Destination() *Model { return s.dest }

// HeaderName resolves the content header against the router's name table.
func (s *Signal) HeaderName() (string, error) {
	return s.router.GetHeaderName(s.content.Header())
}

// Handled reports whether a handler has already processed this signal.
func (s *Signal) Handled() bool { return s.handled }

// IsExpired reports whether the signal's TTL (if any) has elapsed.
func (s *Signal) IsExpired() bool {
	return !s.expiresAt.IsZero() && time.Now().After(s.expiresAt)
}

// Reply fulfills the signal's pending Ask completer, if one exists. Signals
// raised by SendSignal (rather than Ask) have no completer and Reply is a
// no-op returning false.
func (s *Signal) Reply(data any) bool {
	if s.completer == nil {
		return false
	}
	s.completer.fulfill(data, nil)
	return true
}

// GetData narrows a signal's content to Content[T] and returns its payload.
// Methods cannot carry type parameters in Go, so this is a package-level
// function rather than a method on Signal.
func GetData[T any](s *Signal) (T, bool) {
	var zero T
	typed, ok := s.content.(Content[T])
	if !ok {
		return zero, false
	}
	if typed.IsNil() {
		return zero, false
	}
	return typed.Data(), true
}

// UnpackData narrows a signal's content to Content[PackedData], decodes it
// through r's codec tables, and asserts the result to T.
func UnpackData[T any](r *Router, s *Signal) (T, bool) {
	var zero T
	packed, ok := s.content.(Content[PackedData])
	if !ok {
		return zero, false
	}
	v, err := UnpackContent(r, packed)
	if err != nil || v == nil {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
