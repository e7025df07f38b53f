package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ReceiveHook observes a signal as it is accepted into a model's inbox,
// before the model's loop has processed it.
type ReceiveHook func(dest *Model, sig *Signal)

// ReadHook observes a signal as the model's loop pulls it off the inbox for
// processing.
type ReadHook func(dest *Model, sig *Signal)

// Model is one addressable actor: an identity, a mailbox, and whatever
// state/behavior the caller attaches through the router's registered
// handlers. A Model does not run itself — its Container decides when and on
// which goroutine its loop ticks.
type Model struct {
	id       ID
	router   *Router
	provider *Provider
	inbox    *inbox

	container Container

	closing atomic.Bool

	mu            sync.RWMutex
	onReceive     []ReceiveHook
	onRead        []ReadHook
	userData      any
}

// NewModel allocates a model with an auto-generated identifier.
func NewModel(provider *Provider, router *Router) *Model {
	return newModelWithID(NewID(), provider, router)
}

// NewModelWithID allocates a model with an explicit identifier.
func NewModelWithID(id ID, provider *Provider, router *Router) *Model {
	return newModelWithID(id, provider, router)
}

func newModelWithID(id ID, provider *Provider, router *Router) *Model {
	return &Model{
		id:       id,
		router:   router,
		provider: provider,
		inbox:    newInbox(),
	}
}

// ID returns the model's identifier.
func (m *Model) ID() ID { return m.id }

// Router returns the router this model dispatches signals against.
func (m *Model) Router() *Router { return m.router }

// Provider returns the provider hosting this model.
func (m *Model) Provider() *Provider { return m.provider }

// Container returns the schema-specific host running this model's loop. It
// is nil until the schema has started the model.
func (m *Model) Container() Container { return m.container }

func (m *Model) setContainer(c Container) { m.container = c }

// UserData returns caller-attached state, as set by SetUserData.
func (m *Model) UserData() any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userData
}

// SetUserData attaches arbitrary state to the model, e.g. a struct embedding
// application fields that handlers close over through the model pointer.
func (m *Model) SetUserData(v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userData = v
}

// OnReceiveSignal registers a hook fired synchronously when a signal is
// accepted into the inbox (before processing).
func (m *Model) OnReceiveSignal(hook ReceiveHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReceive = append(m.onReceive, hook)
}

// OnReadSignal registers a hook fired synchronously when the loop pulls a
// signal off the inbox for processing, before the router handler runs.
func (m *Model) OnReadSignal(hook ReadHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRead = append(m.onRead, hook)
}

// ReceiveMessage enqueues sig for later processing. It rejects the signal
// (returning false, and the caller should treat this as ErrSendRejected) if
// the model's container is paused, already closing, or the signal has
// already expired — a paused model refuses new work rather than queuing it
// for whenever it resumes. It also returns false without enqueuing if an
// OnReceiveSignal hook already marked the signal handled.
func (m *Model) ReceiveMessage(sig *Signal) bool {
	if m.closing.Load() || sig.IsExpired() || (m.container != nil && m.container.Paused()) {
		if m.provider != nil {
			m.provider.notifySignalDropped(sig)
		}
		return false
	}

	m.mu.RLock()
	hooks := m.onReceive
	m.mu.RUnlock()
	for _, h := range hooks {
		h(m, sig)
	}

	if sig.handled {
		return false
	}

	if m.provider != nil {
		m.provider.notifySignalSent(sig)
	}

	m.inbox.enqueue(sig)
	if m.container != nil {
		m.container.NotifyWork()
	}
	return true
}

// Pending reports whether the model has queued, unprocessed signals.
func (m *Model) Pending() bool {
	return m.inbox.len() > 0
}

// tick drains the inbox and processes every queued signal in FIFO order,
// dispatching each to the router and reporting unhandled signals to the
// provider. It returns the number of signals processed.
func (m *Model) tick() int {
	signals := m.inbox.drain()
	for _, sig := range signals {
		if sig.IsExpired() {
			if m.provider != nil {
				m.provider.notifySignalDropped(sig)
			}
			continue
		}

		m.mu.RLock()
		hooks := m.onRead
		m.mu.RUnlock()
		for _, h := range hooks {
			h(m, sig)
			if sig.handled {
				break
			}
		}

		if sig.handled {
			if m.provider != nil {
				m.provider.notifySignalHandled(sig, 0)
			}
			continue
		}

		start := time.Now()
		// A panicking handler goes to the host-exception sink; the rest of
		// the drained batch is still processed.
		panicked := true
		err := func() error {
			defer func() {
				if r := recover(); r != nil && m.provider != nil {
					m.provider.notifyHostException(m, fmt.Errorf("%v", r))
				}
			}()
			err := m.router.InvokeProcessorDynamic(m, sig)
			panicked = false
			return err
		}()
		if panicked {
			continue
		}
		dur := time.Since(start)
		switch {
		case err != nil:
			if sig.completer != nil {
				sig.completer.fulfill(nil, err)
			}
			if m.provider != nil {
				m.provider.notifyModelException(m, sig, err)
			}
		case !sig.handled:
			if sig.completer != nil {
				sig.completer.fulfill(nil, fmt.Errorf("%w", ErrUnhandledSignal))
			}
			if m.provider != nil {
				m.provider.notifyUnhandledSignal(m, sig)
			}
		default:
			if m.provider != nil {
				m.provider.notifySignalHandled(sig, dur)
			}
		}
	}
	return len(signals)
}

// Close marks the model as no longer accepting new signals. It does not by
// itself stop the container; callers typically pair Close with
// Container().Kill().
func (m *Model) Close() {
	m.closing.Store(true)
}

// Closing reports whether Close has been called.
func (m *Model) Closing() bool {
	return m.closing.Load()
}
