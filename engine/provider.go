package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Schema starts a model's Container — PerModelSchema and PoolSchema are the
// two implementations.
type Schema interface {
	StartHost(m *Model) Container
}

// MetricsSink receives provider-level events. It is defined here, not in
// the metrics package, so that package can depend on engine without engine
// needing to depend on it back; metrics.Collector satisfies this interface
// structurally.
type MetricsSink interface {
	SignalSent(signalName string)
	SignalHandled(signalName string, dur time.Duration)
	SignalUnhandled(signalName string)
	SignalDropped(signalName string)
	ModelStarted(id string)
	ModelStopped(id string)
}

var defaultLogger = slog.Default()

// Provider is the runtime root: it owns the router, the registry of live
// models, the chosen parallelism schema, and the core bootstrap model that
// fans out shutdown to every other model.
type Provider struct {
	router   *Router
	registry *Registry
	schema   Schema
	logger   *slog.Logger
	sink     MetricsSink

	running atomic.Bool
	core    *Model

	closeOnce sync.Once
	closeCh   chan struct{}
}

// NewProvider wires a router and schema into a Provider. The router does
// not need to be built yet; Provider.Start builds it if it isn't.
func NewProvider(router *Router, schema Schema) *Provider {
	return &Provider{
		router:   router,
		registry: NewRegistry(),
		schema:   schema,
		logger:   defaultLogger,
		closeCh:  make(chan struct{}),
	}
}

// SetLogger overrides the provider's logger, the same way
// config.Watcher.SetLogger does. A nil logger is ignored.
func (p *Provider) SetLogger(l *slog.Logger) {
	if l != nil {
		p.logger = l
	}
}

// SetMetricsSink attaches a metrics collector. Nil disables metrics.
func (p *Provider) SetMetricsSink(sink MetricsSink) {
	p.sink = sink
}

// Router returns the provider's router.
func (p *Provider) Router() *Router { return p.router }

// Registry returns the provider's model registry.
func (p *Provider) Registry() *Registry { return p.registry }

// Core returns the bootstrap model created by Start, or nil before Start
// runs.
func (p *Provider) Core() *Model { return p.core }

// Running reports whether Start has run and Shutdown has not yet been
// called.
func (p *Provider) Running() bool { return p.running.Load() }

// Start builds the router if needed, creates the core bootstrap model, and
// marks the provider running.
func (p *Provider) Start() error {
	if !p.router.Built() {
		if err := p.router.Build(); err != nil {
			return err
		}
	}
	p.core = p.newCoreModel()
	p.running.Store(true)
	p.logger.Info("provider started", "core", p.core.ID().String())
	return nil
}

// NewModel creates, registers, and starts the container for a new model
// hosted on this provider's schema.
func (p *Provider) NewModel() *Model {
	m := NewModel(p, p.router)
	p.registry.Register(m)
	m.setContainer(p.schema.StartHost(m))
	if p.sink != nil {
		p.sink.ModelStarted(m.ID().String())
	}
	return m
}

// Shutdown fans exit out to every registered model (via the core model's
// exit-fanout handler, see core.go) and waits for them to stop or ctx to
// expire.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.running.CompareAndSwap(true, false) {
		return nil
	}
	if p.core != nil {
		_ = SendSignal(p.router, nil, p.core, "exit", struct{}{}, 0)
	}
	go func() {
		p.waitAllStopped()
		p.closeOnce.Do(func() { close(p.closeCh) })
	}()
	return p.AwaitClose(ctx)
}

func (p *Provider) waitAllStopped() {
	for _, m := range p.registry.All() {
		c := m.Container()
		if c == nil {
			continue
		}
		for c.Alive() {
			time.Sleep(time.Millisecond)
		}
	}
}

// AwaitClose blocks until Shutdown has fully drained every model or ctx is
// done, whichever comes first.
func (p *Provider) AwaitClose(ctx context.Context) error {
	select {
	case <-p.closeCh:
		return nil
	case <-ctx.Done():
		return ErrAwaitCloseTimeout
	}
}

func (p *Provider) notifyModelException(m *Model, sig *Signal, err error) {
	name, _ := sig.HeaderName()
	p.logger.Error("model handler failed", "model", m.ID().String(), "signal", name, "error", err)
}

// notifyHostException is the host-exception sink spec §4.6 documents
// alongside the model-exception sink: it receives whatever a container's
// worker goroutine recovers from a panic while ticking a model, distinct
// from an ordinary handler error (which goes through notifyModelException
// instead).
func (p *Provider) notifyHostException(m *Model, err error) {
	id := "<unknown>"
	if m != nil {
		id = m.ID().String()
	}
	p.logger.Error("container worker panicked", "model", id, "error", err)
}

func (p *Provider) notifyUnhandledSignal(m *Model, sig *Signal) {
	name, _ := sig.HeaderName()
	p.logger.Warn("signal not handled", "model", m.ID().String(), "signal", name)
	if p.sink != nil {
		p.sink.SignalUnhandled(name)
	}
}

func (p *Provider) notifySignalSent(sig *Signal) {
	if p.sink == nil {
		return
	}
	name, _ := sig.HeaderName()
	p.sink.SignalSent(name)
}

func (p *Provider) notifySignalHandled(sig *Signal, dur time.Duration) {
	if p.sink == nil {
		return
	}
	name, _ := sig.HeaderName()
	p.sink.SignalHandled(name, dur)
}

func (p *Provider) notifySignalDropped(sig *Signal) {
	if p.sink == nil {
		return
	}
	name, _ := sig.HeaderName()
	p.sink.SignalDropped(name)
}
