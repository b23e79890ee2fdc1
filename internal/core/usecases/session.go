package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/mapbridge/internal/core/dispatch"
	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/ports"
	"github.com/samirrijal/mapbridge/internal/pkg/geospatial"
	"github.com/samirrijal/mapbridge/internal/pkg/telemetry"
)

var errNoProvider = fmt.Errorf("%w: no provider selected", domain.ErrProviderUnavailable)

// SessionOptions configure a new Session.
type SessionOptions struct {
	Element      string
	Viewport     Viewport
	EqualityMode domain.EqualityMode
	Debug        bool
	Logger       *slog.Logger
}

// Session is one map widget: the active provider, its entities, filters,
// controls and listeners. It is not safe for concurrent use; Manager
// serializes access.
type Session struct {
	id         string
	registry   ports.ProviderRegistry
	dispatcher *dispatch.Dispatcher
	active     domain.ProviderID
	container  ports.Container
	viewport   Viewport

	store   *EntityStore
	filters *FilterSet
	bus     *EventBus

	// canonical view and settings, replayed on swap
	center     domain.GeoPoint
	zoom       int
	viewSet    bool
	mapType    domain.MapType
	mapTypeSet bool
	controls   domain.Controls
	dragging   *bool
	scrollZoom bool

	debug  bool
	closed bool
	logger *slog.Logger
	tracer trace.Tracer
}

// NewSession creates a session with no provider selected. Call Swap to pick
// one.
func NewSession(id string, registry ports.ProviderRegistry, opts SessionOptions) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	vp := opts.Viewport
	if vp.Width <= 0 || vp.Height <= 0 {
		vp = Viewport{Width: 800, Height: 600}
	}
	return &Session{
		id:         id,
		registry:   registry,
		dispatcher: dispatch.New(id, dispatch.WithLogger(logger), dispatch.WithDebug(opts.Debug)),
		container:  ports.Container{Session: id, Element: opts.Element, Width: vp.Width, Height: vp.Height},
		viewport:   vp,
		store:      NewEntityStore(),
		filters:    NewFilterSet(opts.EqualityMode),
		bus:        NewEventBus(logger.With("session", id)),
		mapType:    domain.MapTypeRoad,
		debug:      opts.Debug,
		logger:     logger.With("session", id),
		tracer:     telemetry.Tracer(),
	}
}

func (s *Session) ID() string                  { return s.id }
func (s *Session) Provider() domain.ProviderID { return s.active }
func (s *Session) Events() *EventBus           { return s.bus }
func (s *Session) Store() *EntityStore         { return s.store }
func (s *Session) Viewport() Viewport          { return s.viewport }

// IsLoaded reports whether the active provider is ready.
func (s *Session) IsLoaded() bool {
	_, _, ok := s.live()
	return ok
}

// SetDebug makes unsupported operations log a warning.
func (s *Session) SetDebug(on bool) {
	s.debug = on
	s.dispatcher.SetDebug(on)
}

// live returns the active adapter and map when the provider is ready.
func (s *Session) live() (ports.ProviderAdapter, ports.MapHandle, bool) {
	if s.active == "" {
		return nil, "", false
	}
	if st, _ := s.dispatcher.State(s.active); st != dispatch.Ready {
		return nil, "", false
	}
	a, _ := s.dispatcher.Adapter(s.active)
	h, _ := s.dispatcher.Handle(s.active)
	return a, h, true
}

func (s *Session) do(ctx context.Context, name string, op dispatch.Op) error {
	if s.closed {
		return dispatch.ErrTornDown
	}
	if s.active == "" {
		return errNoProvider
	}
	return s.dispatcher.Do(ctx, s.active, name, op)
}

// --- Provider lifecycle ---

// Swap makes target the active provider. The outgoing view is captured and
// the view, settings and every live entity are replayed against target
// through the dispatch queue. Entities already drawn by target are not drawn
// again, so swapping to a ready provider only re-syncs it. The swap has
// happened even when replay errors are returned.
func (s *Session) Swap(ctx context.Context, target domain.ProviderID) error {
	if s.closed {
		return dispatch.ErrTornDown
	}
	ctx, span := s.tracer.Start(ctx, telemetry.SpanSwap, trace.WithAttributes(
		attribute.String(telemetry.AttrSession, s.id),
		attribute.String(telemetry.AttrProvider, string(target)),
	))
	defer span.End()

	if a, h, ok := s.live(); ok {
		if c, err := a.Center(ctx, h); err == nil {
			s.center, s.viewSet = c, true
		}
		if z, err := a.Zoom(ctx, h); err == nil {
			s.zoom = z
		}
	}

	adapter, known := s.dispatcher.Adapter(target)
	if !known {
		a, err := s.registry.New(target)
		if err != nil {
			return fmt.Errorf("swap to %s: %w", target, err)
		}
		adapter = a
	}
	if err := s.dispatcher.Select(ctx, adapter, s.container); err != nil {
		span.RecordError(err)
		return fmt.Errorf("swap to %s: %w", target, err)
	}

	prev := s.active
	s.active = target
	s.logger.Info("provider selected", "from", prev, "to", target)
	return s.replay(ctx)
}

func (s *Session) replay(ctx context.Context) error {
	var errs []error
	keep := func(err error) {
		if err == nil {
			return
		}
		if errors.Is(err, domain.ErrUnsupported) {
			s.logger.Debug("skipping unsupported setting on swap", "provider", s.active, "error", err)
			return
		}
		errs = append(errs, err)
	}

	if s.viewSet {
		keep(s.do(ctx, "setCenterAndZoom", viewOp(s.center, s.zoom)))
	}
	if s.mapTypeSet {
		keep(s.do(ctx, "setMapType", mapTypeOp(s.mapType)))
	}
	if s.controls.Any() {
		keep(s.do(ctx, "addControls", controlsOp(s.controls)))
	}
	if s.dragging != nil {
		keep(s.do(ctx, "dragging", draggingOp(*s.dragging)))
	}
	if s.scrollZoom {
		keep(s.do(ctx, "enableScrollWheelZoom", scrollZoomOp()))
	}
	for _, m := range s.store.Markers() {
		keep(s.do(ctx, "addMarker", s.renderOp(s.markerRef(m), renderReplay)))
	}
	for _, p := range s.store.Polylines() {
		keep(s.do(ctx, "addPolyline", s.renderOp(s.polylineRef(p), renderReplay)))
	}
	return errors.Join(errs...)
}

// MarkReady handles the host's ready notification for provider.
func (s *Session) MarkReady(ctx context.Context, provider domain.ProviderID) error {
	if s.closed {
		return dispatch.ErrTornDown
	}
	return s.dispatcher.MarkReady(ctx, provider)
}

// Teardown discards pending operations and listeners.
func (s *Session) Teardown() {
	if s.closed {
		return
	}
	s.dispatcher.Teardown()
	s.bus.Clear()
	s.closed = true
}

// --- View ---

// SetCenterAndZoom moves the map. The zoom is clamped to the canonical range
// and again to the provider's own range by the adapter.
func (s *Session) SetCenterAndZoom(ctx context.Context, center domain.GeoPoint, zoom int) error {
	return s.setView(ctx, "setCenterAndZoom", center, zoom)
}

// SetCenter moves the map keeping the zoom. pan asks for an animated move
// where the provider has one.
func (s *Session) SetCenter(ctx context.Context, center domain.GeoPoint, pan bool) error {
	zoom, err := s.Zoom(ctx)
	if err != nil {
		return err
	}
	name := "setCenter"
	if pan {
		name = "panTo"
	}
	return s.setView(ctx, name, center, zoom)
}

// SetZoom changes the zoom keeping the centre.
func (s *Session) SetZoom(ctx context.Context, zoom int) error {
	center, err := s.Center(ctx)
	if err != nil {
		return err
	}
	return s.setView(ctx, "setZoom", center, zoom)
}

func (s *Session) setView(ctx context.Context, name string, center domain.GeoPoint, zoom int) error {
	if !center.Valid() {
		return fmt.Errorf("%s: %w: %s", name, domain.ErrInvalidCoordinate, center)
	}
	zoom = max(0, min(geospatial.MaxZoom, zoom))

	prevCenter, prevZoom, prevSet := s.center, s.zoom, s.viewSet
	s.center, s.zoom, s.viewSet = center, zoom, true
	if err := s.do(ctx, name, viewOp(center, zoom)); err != nil {
		s.center, s.zoom, s.viewSet = prevCenter, prevZoom, prevSet
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Center reads the provider's centre when it is ready and the last requested
// centre otherwise.
func (s *Session) Center(ctx context.Context) (domain.GeoPoint, error) {
	if a, h, ok := s.live(); ok {
		return a.Center(ctx, h)
	}
	return s.center, nil
}

func (s *Session) Zoom(ctx context.Context) (int, error) {
	if a, h, ok := s.live(); ok {
		return a.Zoom(ctx, h)
	}
	return s.zoom, nil
}

// Bounds returns the visible box.
func (s *Session) Bounds(ctx context.Context) (domain.BoundingBox, error) {
	if a, h, ok := s.live(); ok {
		return a.Bounds(ctx, h)
	}
	return ViewBounds(s.center, s.zoom, s.viewport)
}

// PixelRatio returns screen pixels per kilometre at the current view.
func (s *Session) PixelRatio(ctx context.Context) (float64, error) {
	center, err := s.Center(ctx)
	if err != nil {
		return 0, err
	}
	zoom, err := s.Zoom(ctx)
	if err != nil {
		return 0, err
	}
	return 1000 / geospatial.MetersPerPixel(center.Lat, zoom), nil
}

// --- Fitting ---

// SetBounds centres and zooms the map on b.
func (s *Session) SetBounds(ctx context.Context, b domain.BoundingBox) (Fit, error) {
	return s.fitTo(ctx, "setBounds", b)
}

// AutoCenterAndZoom fits every marker and polyline vertex.
func (s *Session) AutoCenterAndZoom(ctx context.Context) (Fit, error) {
	return s.fitTo(ctx, "autoCenterAndZoom", s.store.Bounds(false))
}

// VisibleCenterAndZoom fits only the entities left visible by the filters.
func (s *Session) VisibleCenterAndZoom(ctx context.Context) (Fit, error) {
	return s.fitTo(ctx, "visibleCenterAndZoom", s.store.Bounds(true))
}

// PolylineCenterAndZoom fits every polyline padded by radiusKm.
func (s *Session) PolylineCenterAndZoom(ctx context.Context, radiusKm float64) (Fit, error) {
	return s.fitTo(ctx, "polylineCenterAndZoom", PaddedPolylineBounds(s.store.Polylines(), radiusKm))
}

// CenterAndZoomOnPoints fits pts.
func (s *Session) CenterAndZoomOnPoints(ctx context.Context, pts ...domain.GeoPoint) (Fit, error) {
	for _, p := range pts {
		if !p.Valid() {
			return Fit{}, fmt.Errorf("centerAndZoomOnPoints: %w: %s", domain.ErrInvalidCoordinate, p)
		}
	}
	return s.fitTo(ctx, "centerAndZoomOnPoints", domain.BoundingBoxFromPoints(pts...))
}

func (s *Session) fitTo(ctx context.Context, name string, b domain.BoundingBox) (Fit, error) {
	if b.IsEmpty() {
		return Fit{}, fmt.Errorf("%s: %w", name, domain.ErrEmptyExtent)
	}
	fit := FitBounds(b, s.viewport)
	if a, ok := s.dispatcher.Adapter(s.active); ok {
		if lo, _ := a.ZoomRange(); fit.Zoom < lo {
			fit.Clipped = true
			s.logger.Warn("fitted zoom below provider minimum, bounds will be clipped",
				"operation", name, "provider", s.active, "zoom", fit.Zoom, "min_zoom", lo)
		}
	}
	if err := s.setView(ctx, name, fit.Center, fit.Zoom); err != nil {
		return Fit{}, err
	}
	return fit, nil
}

// ZoomForBoundingBox returns the no-clip zoom for b in this session's viewport.
func (s *Session) ZoomForBoundingBox(b domain.BoundingBox) int {
	return ZoomForBoundingBox(b, s.viewport)
}

// AttributeExtremes returns the numeric range of field over all entities.
func (s *Session) AttributeExtremes(field string) (lo, hi float64, ok bool) {
	return AttributeExtremes(s.store, field)
}

// --- Map settings ---

func (s *Session) SetMapType(ctx context.Context, t domain.MapType) error {
	if t.String() == "unknown" {
		return fmt.Errorf("set map type: unknown type %d", t)
	}
	if err := s.do(ctx, "setMapType", mapTypeOp(t)); err != nil {
		return err
	}
	s.mapType, s.mapTypeSet = t, true
	return nil
}

// MapType asks the provider when it can answer and falls back to the last
// requested type.
func (s *Session) MapType(ctx context.Context) (domain.MapType, error) {
	if a, h, ok := s.live(); ok {
		if mt, ok := a.(ports.MapTyper); ok {
			return mt.MapType(ctx, h)
		}
	}
	return s.mapType, nil
}

// AddControls replaces the requested map controls.
func (s *Session) AddControls(ctx context.Context, c domain.Controls) error {
	if err := s.do(ctx, "addControls", controlsOp(c)); err != nil {
		return err
	}
	s.controls = c
	return nil
}

func (s *Session) Controls() domain.Controls { return s.controls }

// Dragging enables or disables panning by mouse.
func (s *Session) Dragging(ctx context.Context, on bool) error {
	if err := s.do(ctx, "dragging", draggingOp(on)); err != nil {
		return err
	}
	s.dragging = &on
	return nil
}

func (s *Session) EnableScrollWheelZoom(ctx context.Context) error {
	if err := s.do(ctx, "enableScrollWheelZoom", scrollZoomOp()); err != nil {
		return err
	}
	s.scrollZoom = true
	return nil
}

// ResizeTo changes the container size. Fitting uses the new viewport right
// away.
func (s *Session) ResizeTo(ctx context.Context, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize to %dx%d: dimensions must be positive", width, height)
	}
	if err := s.do(ctx, "resizeTo", resizeOp(width, height)); err != nil {
		return err
	}
	s.viewport = Viewport{Width: width, Height: height}
	s.container.Width, s.container.Height = width, height
	return nil
}

// --- Host callbacks ---

// HandleClick fires click listeners and returns how many ran cleanly.
func (s *Session) HandleClick(ctx context.Context, provider domain.ProviderID, loc domain.GeoPoint) (int, error) {
	if !loc.Valid() {
		return 0, fmt.Errorf("click: %w: %s", domain.ErrInvalidCoordinate, loc)
	}
	return s.bus.Fire(domain.EventClick, &loc, provider), nil
}

// HandleMoveEnd records a view change made by the host, when it reports one
// in native units, and fires moveend listeners.
func (s *Session) HandleMoveEnd(ctx context.Context, provider domain.ProviderID, native *domain.NativePoint, nativeZoom *float64) (int, error) {
	if provider == s.active && native != nil && nativeZoom != nil {
		if a, h, ok := s.live(); ok {
			if vs, ok := a.(ports.ViewSyncer); ok {
				if err := vs.SyncView(ctx, h, *native, *nativeZoom); err != nil {
					return 0, fmt.Errorf("moveend: %w", err)
				}
			}
			if c, err := a.Center(ctx, h); err == nil {
				s.center, s.viewSet = c, true
			}
			if z, err := a.Zoom(ctx, h); err == nil {
				s.zoom = z
			}
		}
	}
	return s.bus.Fire(domain.EventMoveEnd, nil, provider), nil
}

// --- Snapshot ---

// ProviderStatus describes one provider known to the session.
type ProviderStatus struct {
	ID      domain.ProviderID `json:"id"`
	State   string            `json:"state"`
	Pending int               `json:"pending"`
	Error   string            `json:"error,omitempty"`
}

// SessionInfo is a read-only view of a session.
type SessionInfo struct {
	ID           string            `json:"id"`
	Provider     domain.ProviderID `json:"provider"`
	Loaded       bool              `json:"loaded"`
	Providers    []ProviderStatus  `json:"providers"`
	Center       domain.GeoPoint   `json:"center"`
	Zoom         int               `json:"zoom"`
	Viewport     Viewport          `json:"viewport"`
	MapType      string            `json:"map_type"`
	Controls     domain.Controls   `json:"controls"`
	Markers      int               `json:"markers"`
	Polylines    int               `json:"polylines"`
	Filters      []domain.Filter   `json:"filters"`
	EqualityMode string            `json:"equality_mode"`
	Debug        bool              `json:"debug"`
}

func (s *Session) Info(ctx context.Context) SessionInfo {
	center, _ := s.Center(ctx)
	zoom, _ := s.Zoom(ctx)
	mt, _ := s.MapType(ctx)
	markers, polylines := s.store.Len()

	info := SessionInfo{
		ID:           s.id,
		Provider:     s.active,
		Loaded:       s.IsLoaded(),
		Center:       center,
		Zoom:         zoom,
		Viewport:     s.viewport,
		MapType:      mt.String(),
		Controls:     s.controls,
		Markers:      markers,
		Polylines:    polylines,
		Filters:      s.filters.Filters(),
		EqualityMode: s.filters.Mode().String(),
		Debug:        s.debug,
	}
	for _, id := range s.dispatcher.Providers() {
		st, err := s.dispatcher.State(id)
		ps := ProviderStatus{ID: id, State: st.String(), Pending: s.dispatcher.Pending(id)}
		if err != nil {
			ps.Error = err.Error()
		}
		info.Providers = append(info.Providers, ps)
	}
	return info
}

// --- Operation closures ---

func viewOp(center domain.GeoPoint, zoom int) dispatch.Op {
	return func(ctx context.Context, a ports.ProviderAdapter, h ports.MapHandle) error {
		return a.SetCenterAndZoom(ctx, h, center, zoom)
	}
}

func mapTypeOp(t domain.MapType) dispatch.Op {
	return func(ctx context.Context, a ports.ProviderAdapter, h ports.MapHandle) error {
		mt, err := dispatch.Capability[ports.MapTyper](a, "setMapType")
		if err != nil {
			return err
		}
		return mt.SetMapType(ctx, h, t)
	}
}

func controlsOp(c domain.Controls) dispatch.Op {
	return func(ctx context.Context, a ports.ProviderAdapter, h ports.MapHandle) error {
		cc, err := dispatch.Capability[ports.ControlConfigurer](a, "addControls")
		if err != nil {
			return err
		}
		return cc.ConfigureControls(ctx, h, c)
	}
}

func draggingOp(on bool) dispatch.Op {
	return func(ctx context.Context, a ports.ProviderAdapter, h ports.MapHandle) error {
		d, err := dispatch.Capability[ports.DragToggler](a, "dragging")
		if err != nil {
			return err
		}
		return d.SetDragging(ctx, h, on)
	}
}

func scrollZoomOp() dispatch.Op {
	return func(ctx context.Context, a ports.ProviderAdapter, h ports.MapHandle) error {
		z, err := dispatch.Capability[ports.ScrollWheelZoomer](a, "enableScrollWheelZoom")
		if err != nil {
			return err
		}
		return z.EnableScrollWheelZoom(ctx, h)
	}
}

func resizeOp(width, height int) dispatch.Op {
	return func(ctx context.Context, a ports.ProviderAdapter, h ports.MapHandle) error {
		r, err := dispatch.Capability[ports.Resizer](a, "resizeTo")
		if err != nil {
			return err
		}
		return r.Resize(ctx, h, width, height)
	}
}

func visibilityOp(oh domain.OverlayHandle, visible bool) dispatch.Op {
	return func(ctx context.Context, a ports.ProviderAdapter, h ports.MapHandle) error {
		t, err := dispatch.Capability[ports.OverlayToggler](a, "setOverlayVisible")
		if err != nil {
			return err
		}
		return t.SetOverlayVisible(ctx, h, oh, visible)
	}
}
