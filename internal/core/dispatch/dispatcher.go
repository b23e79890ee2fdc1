// Package dispatch routes map operations to provider adapters. Operations
// aimed at a provider that is not ready yet are queued and replayed in issue
// order once the host reports the provider's map as ready.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/ports"
	"github.com/samirrijal/mapbridge/internal/pkg/metrics"
	"github.com/samirrijal/mapbridge/internal/pkg/telemetry"
)

// ErrTornDown is returned for operations issued after Teardown.
var ErrTornDown = errors.New("dispatcher torn down")

// State is a provider's readiness.
type State int

const (
	Unloaded State = iota
	Loading
	Ready
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "unloaded"
	}
}

// Op is an operation bound to a provider. It receives the adapter and the
// native map handle once the provider is ready.
type Op func(ctx context.Context, a ports.ProviderAdapter, h ports.MapHandle) error

type pendingOp struct {
	name string
	op   Op
}

type providerState struct {
	adapter  ports.ProviderAdapter
	state    State
	handle   ports.MapHandle
	pending  []pendingOp
	draining bool
	err      error
}

// Dispatcher tracks per-provider readiness for one session. It is not safe
// for concurrent use; callers serialize access.
type Dispatcher struct {
	session   string
	debug     bool
	logger    *slog.Logger
	tracer    trace.Tracer
	providers map[domain.ProviderID]*providerState
	closed    bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithDebug makes unsupported operations log a warning.
func WithDebug(on bool) Option {
	return func(d *Dispatcher) { d.debug = on }
}

// New creates a dispatcher for session.
func New(session string, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		session:   session,
		logger:    slog.Default(),
		tracer:    telemetry.Tracer(),
		providers: make(map[domain.ProviderID]*providerState),
	}
	for _, o := range opts {
		o(d)
	}
	d.logger = d.logger.With("component", "dispatch", "session", session)
	return d
}

// SetDebug toggles unsupported-operation warnings.
func (d *Dispatcher) SetDebug(on bool) { d.debug = on }

// Register adds a provider in the Unloaded state. Operations issued against
// it are queued until it becomes ready. Registering a known provider is a
// no-op.
func (d *Dispatcher) Register(a ports.ProviderAdapter) {
	if _, ok := d.providers[a.ID()]; ok {
		return
	}
	d.providers[a.ID()] = &providerState{adapter: a}
}

// Select initializes the provider and moves it to Loading. A provider that
// is already Loading or Ready is left alone. An initialization failure is
// permanent and is returned on this and every later call.
func (d *Dispatcher) Select(ctx context.Context, a ports.ProviderAdapter, c ports.Container) error {
	if d.closed {
		return ErrTornDown
	}
	d.Register(a)
	st := d.providers[a.ID()]
	if st.err != nil {
		return st.err
	}
	if st.state != Unloaded {
		return nil
	}

	h, err := st.adapter.Initialize(ctx, c)
	if err != nil {
		if !errors.Is(err, domain.ErrProviderUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
		}
		st.err = fmt.Errorf("initialize %s: %w", a.ID(), err)
		st.pending = nil
		metrics.ProviderInitFailures.WithLabelValues(string(a.ID())).Inc()
		metrics.DispatchQueueDepth.WithLabelValues(string(a.ID())).Set(0)
		d.logger.Error("provider initialization failed", "provider", a.ID(), "error", err)
		return st.err
	}

	st.handle = h
	st.state = Loading
	d.logger.Debug("provider loading", "provider", a.ID(), "map", h, "queued", len(st.pending))
	return nil
}

// Do is the single entry point for provider operations. When the provider is
// ready the operation runs immediately and its error is returned. Otherwise
// it is queued and Do returns nil. A provider whose initialization failed
// yields domain.ErrProviderUnavailable.
func (d *Dispatcher) Do(ctx context.Context, id domain.ProviderID, name string, op Op) error {
	if d.closed {
		return ErrTornDown
	}
	st, ok := d.providers[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownProvider, id)
	}
	if st.err != nil {
		return st.err
	}
	if st.state == Ready {
		return d.run(ctx, id, st, name, op, false)
	}

	st.pending = append(st.pending, pendingOp{name: name, op: op})
	metrics.DispatchOperations.WithLabelValues(string(id), "deferred").Inc()
	metrics.DispatchQueueDepth.WithLabelValues(string(id)).Set(float64(len(st.pending)))
	return nil
}

// MarkReady handles the host's one-shot ready notification. The pending queue
// is drained in FIFO order before the provider is considered ready. Errors
// from individual operations do not stop the replay and are returned joined.
// Calling MarkReady on a ready provider does nothing.
func (d *Dispatcher) MarkReady(ctx context.Context, id domain.ProviderID) error {
	if d.closed {
		return ErrTornDown
	}
	st, ok := d.providers[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownProvider, id)
	}
	if st.err != nil {
		return st.err
	}
	switch {
	case st.state == Ready || st.draining:
		return nil
	case st.state == Unloaded:
		return fmt.Errorf("mark %s ready: provider was never initialized", id)
	}

	ctx, span := d.tracer.Start(ctx, telemetry.SpanReplay, trace.WithAttributes(
		attribute.String(telemetry.AttrSession, d.session),
		attribute.String(telemetry.AttrProvider, string(id)),
		attribute.Int(telemetry.AttrQueued, len(st.pending)),
	))
	defer span.End()

	start := time.Now()
	st.draining = true
	var errs []error
	// ops queued while draining are appended and picked up by this loop
	for i := 0; i < len(st.pending); i++ {
		p := st.pending[i]
		if err := d.run(ctx, id, st, p.name, p.op, true); err != nil {
			metrics.DispatchReplayErrors.WithLabelValues(string(id)).Inc()
			d.logger.Warn("deferred operation failed", "provider", id, "operation", p.name, "error", err)
			errs = append(errs, fmt.Errorf("replay %s: %w", p.name, err))
		}
		if d.closed {
			break
		}
	}
	st.pending = nil
	st.draining = false
	st.state = Ready

	metrics.DispatchQueueDepth.WithLabelValues(string(id)).Set(0)
	metrics.DispatchReplayDuration.WithLabelValues(string(id)).Observe(time.Since(start).Seconds())
	d.logger.Info("provider ready", "provider", id, "replay_errors", len(errs))

	if len(errs) > 0 {
		span.SetStatus(codes.Error, "replay errors")
		return errors.Join(errs...)
	}
	return nil
}

func (d *Dispatcher) run(ctx context.Context, id domain.ProviderID, st *providerState, name string, op Op, deferred bool) error {
	ctx, span := d.tracer.Start(ctx, telemetry.SpanDispatch, trace.WithAttributes(
		attribute.String(telemetry.AttrProvider, string(id)),
		attribute.String(telemetry.AttrOperation, name),
		attribute.Bool(telemetry.AttrDeferred, deferred),
	))
	defer span.End()

	if !deferred {
		metrics.DispatchOperations.WithLabelValues(string(id), "immediate").Inc()
	}

	err := call(ctx, name, op, st.adapter, st.handle)
	if err == nil {
		return nil
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if errors.Is(err, domain.ErrUnsupported) {
		metrics.UnsupportedOperations.WithLabelValues(string(id), name).Inc()
		if d.debug {
			d.logger.Warn("operation not supported by provider", "provider", id, "operation", name)
		}
	}
	return err
}

// call runs op, turning a panic into an error so one bad operation cannot
// stall a replay.
func call(ctx context.Context, name string, op Op, a ports.ProviderAdapter, h ports.MapHandle) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("operation %s panicked: %v", name, r)
		}
	}()
	return op(ctx, a, h)
}

// Teardown discards every pending queue. Later calls fail with ErrTornDown.
func (d *Dispatcher) Teardown() {
	for id, st := range d.providers {
		if n := len(st.pending); n > 0 {
			d.logger.Debug("discarding pending operations", "provider", id, "count", n)
		}
		st.pending = nil
		metrics.DispatchQueueDepth.WithLabelValues(string(id)).Set(0)
	}
	d.closed = true
}

// State returns the readiness of id and the recorded initialization error.
func (d *Dispatcher) State(id domain.ProviderID) (State, error) {
	st, ok := d.providers[id]
	if !ok {
		return Unloaded, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, id)
	}
	return st.state, st.err
}

// Known reports whether id has been registered.
func (d *Dispatcher) Known(id domain.ProviderID) bool {
	_, ok := d.providers[id]
	return ok
}

// Adapter returns the registered adapter for id.
func (d *Dispatcher) Adapter(id domain.ProviderID) (ports.ProviderAdapter, bool) {
	st, ok := d.providers[id]
	if !ok {
		return nil, false
	}
	return st.adapter, true
}

// Handle returns the native map handle of an initialized provider.
func (d *Dispatcher) Handle(id domain.ProviderID) (ports.MapHandle, bool) {
	st, ok := d.providers[id]
	if !ok || st.state == Unloaded {
		return "", false
	}
	return st.handle, true
}

// Pending returns the number of queued operations for id.
func (d *Dispatcher) Pending(id domain.ProviderID) int {
	if st, ok := d.providers[id]; ok {
		return len(st.pending)
	}
	return 0
}

// Providers lists registered provider ids, sorted.
func (d *Dispatcher) Providers() []domain.ProviderID {
	out := make([]domain.ProviderID, 0, len(d.providers))
	for id := range d.providers {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Capability asserts an optional provider interface, returning a
// *domain.UnsupportedError naming operation when a lacks it.
func Capability[T any](a ports.ProviderAdapter, operation string) (T, error) {
	c, ok := a.(T)
	if !ok {
		var zero T
		return zero, &domain.UnsupportedError{Provider: a.ID(), Operation: operation}
	}
	return c, nil
}
