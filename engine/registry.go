package engine

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Registry is the live directory of addressable models: everything a
// Provider has started and not yet torn down.
type Registry struct {
	mu     sync.RWMutex
	models map[ID]*Model
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[ID]*Model)}
}

// Register adds m under its own identifier, replacing any prior occupant of
// the same ID.
func (reg *Registry) Register(m *Model) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.models[m.ID()] = m
}

// Unregister removes id from the directory.
func (reg *Registry) Unregister(id ID) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.models, id)
}

// Lookup resolves id to its model.
func (reg *Registry) Lookup(id ID) (*Model, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	m, ok := reg.models[id]
	return m, ok
}

// All returns a snapshot of every currently registered model.
func (reg *Registry) All() []*Model {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]*Model, 0, len(reg.models))
	for _, m := range reg.models {
		out = append(out, m)
	}
	return out
}

// Count reports how many models are currently registered.
func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.models)
}

// defaultModels applies spec §4.4's defaulting rule: a missing destination
// defaults to its sender's provider's Core model, and a missing sender
// defaults to its destination's provider's Core model. At least one of
// sender/dest must be non-nil and carry a provider, or there is no Core to
// default from.
func defaultModels(sender, dest *Model) (*Model, *Model, error) {
	if dest == nil {
		if sender == nil || sender.Provider() == nil || sender.Provider().Core() == nil {
			return nil, nil, fmt.Errorf("%w: no destination and no provider core to default it to", ErrArgument)
		}
		dest = sender.Provider().Core()
	}
	if sender == nil {
		if dest.Provider() != nil && dest.Provider().Core() != nil {
			sender = dest.Provider().Core()
		}
	}
	return sender, dest, nil
}

// SendSignal builds a Content[T] for signalName against router, wraps it
// into a fire-and-forget Signal from sender to dest, and delivers it. A nil
// sender or dest defaults to the other's provider's Core model (see
// defaultModels). ttl <= 0 means the signal never expires. Methods cannot
// carry type parameters in Go, so this is a package-level function rather
// than a method on Registry.
func SendSignal[T any](router *Router, sender, dest *Model, signalName string, data T, ttl time.Duration) error {
	sender, dest, err := defaultModels(sender, dest)
	if err != nil {
		return err
	}
	content, err := BuildSignalContent(router, signalName, data)
	if err != nil {
		return err
	}
	sig := newSignal(router, sender, dest, content, ttl)
	if !dest.ReceiveMessage(sig) {
		return ErrSendRejected
	}
	return nil
}

// Ask sends signalName to dest and blocks until either a handler calls
// Signal.Reply, the context is done, or dest rejects the send outright. A
// nil sender or dest defaults the same way SendSignal does. R is the
// expected reply type; a nil reply resolves to R's zero value, and a reply
// of any other type is an ErrTypeMismatch error.
func Ask[T, R any](ctx context.Context, router *Router, sender, dest *Model, signalName string, data T) (R, error) {
	var zero R
	sender, dest, err := defaultModels(sender, dest)
	if err != nil {
		return zero, err
	}
	content, err := BuildSignalContent(router, signalName, data)
	if err != nil {
		return zero, err
	}
	sig := newSignal(router, sender, dest, content, 0)
	sig.completer = newCompleter()

	if !dest.ReceiveMessage(sig) {
		return zero, ErrSendRejected
	}

	result, err := sig.completer.await(ctx)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(R)
	if !ok {
		return zero, fmt.Errorf("%w: reply was %T, wanted %T", ErrTypeMismatch, result, zero)
	}
	return typed, nil
}
