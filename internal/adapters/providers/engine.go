// Package providers implements the mapping back-ends. Each adapter keeps the
// native view state of its maps in native units and forwards every native
// call to a CommandSink, where the host that actually draws the map picks it
// up.
package providers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/ports"
	"github.com/samirrijal/mapbridge/internal/pkg/geospatial"
)

// projection is the pure conversion half of an adapter.
type projection interface {
	ToNative(p domain.GeoPoint) (domain.NativePoint, error)
	FromNative(p domain.NativePoint) (domain.GeoPoint, error)
	ZoomToNative(zoom int) float64
	ZoomFromNative(native float64) int
	ZoomRange() (lo, hi int)
}

type overlay struct {
	kind    string
	visible bool
}

type nativeMap struct {
	container  ports.Container
	center     domain.NativePoint
	zoom       float64
	mapType    domain.MapType
	controls   domain.Controls
	dragging   bool
	scrollZoom bool
	overlays   map[domain.OverlayHandle]*overlay
}

// Options configure an adapter.
type Options struct {
	APIKey string
	Sink   ports.CommandSink
	Logger *slog.Logger
}

// engine is the state shared by every adapter.
type engine struct {
	id          domain.ProviderID
	proj        projection
	keyRequired bool
	opts        Options

	mu   sync.Mutex
	seq  int
	maps map[ports.MapHandle]*nativeMap
}

func newEngine(id domain.ProviderID, proj projection, keyRequired bool, opts Options) *engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &engine{
		id:          id,
		proj:        proj,
		keyRequired: keyRequired,
		opts:        opts,
		maps:        make(map[ports.MapHandle]*nativeMap),
	}
}

func (e *engine) ID() domain.ProviderID { return e.id }

func (e *engine) ToNative(p domain.GeoPoint) (domain.NativePoint, error) { return e.proj.ToNative(p) }
func (e *engine) FromNative(p domain.NativePoint) (domain.GeoPoint, error) {
	return e.proj.FromNative(p)
}
func (e *engine) ZoomToNative(zoom int) float64     { return e.proj.ZoomToNative(zoom) }
func (e *engine) ZoomFromNative(native float64) int { return e.proj.ZoomFromNative(native) }
func (e *engine) ZoomRange() (int, int)             { return e.proj.ZoomRange() }

// Initialize creates a native map in the container.
func (e *engine) Initialize(ctx context.Context, c ports.Container) (ports.MapHandle, error) {
	if e.keyRequired && e.opts.APIKey == "" {
		return "", fmt.Errorf("%w: %s requires an API key", domain.ErrProviderUnavailable, e.id)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return "", fmt.Errorf("%w: %s container has no size", domain.ErrProviderUnavailable, e.id)
	}

	e.mu.Lock()
	e.seq++
	h := ports.MapHandle(fmt.Sprintf("%s-%d", e.id, e.seq))
	lo, _ := e.proj.ZoomRange()
	e.maps[h] = &nativeMap{
		container: c,
		zoom:      e.proj.ZoomToNative(lo),
		mapType:   domain.MapTypeRoad,
		dragging:  true,
		overlays:  make(map[domain.OverlayHandle]*overlay),
	}
	e.mu.Unlock()

	args := map[string]any{"element": c.Element, "width": c.Width, "height": c.Height}
	if e.opts.APIKey != "" {
		args["key"] = e.opts.APIKey
	}
	if err := e.send(ctx, c.Session, h, "init", args); err != nil {
		e.mu.Lock()
		delete(e.maps, h)
		e.mu.Unlock()
		return "", fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	return h, nil
}

// SetCenterAndZoom moves the view. The zoom is clamped to the provider range.
func (e *engine) SetCenterAndZoom(ctx context.Context, h ports.MapHandle, center domain.GeoPoint, zoom int) error {
	np, err := e.proj.ToNative(center)
	if err != nil {
		return fmt.Errorf("convert centre: %w", err)
	}
	nz := e.proj.ZoomToNative(clampZoom(e.proj, zoom))

	m, err := e.lookup(h)
	if err != nil {
		return err
	}
	e.mu.Lock()
	m.center, m.zoom = np, nz
	session := m.container.Session
	e.mu.Unlock()

	return e.send(ctx, session, h, "setCenterAndZoom", map[string]any{"x": np.X, "y": np.Y, "zoom": nz})
}

func (e *engine) Center(ctx context.Context, h ports.MapHandle) (domain.GeoPoint, error) {
	m, err := e.lookup(h)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	e.mu.Lock()
	np := m.center
	e.mu.Unlock()
	return e.proj.FromNative(np)
}

func (e *engine) Zoom(ctx context.Context, h ports.MapHandle) (int, error) {
	m, err := e.lookup(h)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	nz := m.zoom
	e.mu.Unlock()
	return e.proj.ZoomFromNative(nz), nil
}

// Bounds derives the visible box from the centre, zoom and container size.
func (e *engine) Bounds(ctx context.Context, h ports.MapHandle) (domain.BoundingBox, error) {
	m, err := e.lookup(h)
	if err != nil {
		return domain.BoundingBox{}, err
	}
	e.mu.Lock()
	np, nz, w, hgt := m.center, m.zoom, m.container.Width, m.container.Height
	e.mu.Unlock()

	center, err := e.proj.FromNative(np)
	if err != nil {
		return domain.BoundingBox{}, err
	}
	zoom := e.proj.ZoomFromNative(nz)
	x, y := geospatial.PixelXY(center.Lat, center.Lon, zoom)
	south, west := geospatial.PointFromPixel(x-float64(w)/2, y+float64(hgt)/2, zoom)
	north, east := geospatial.PointFromPixel(x+float64(w)/2, y-float64(hgt)/2, zoom)
	return domain.NewBoundingBox(
		domain.GeoPoint{Lat: south, Lon: west},
		domain.GeoPoint{Lat: north, Lon: east},
	)
}

func (e *engine) RenderMarker(ctx context.Context, h ports.MapHandle, mk *domain.Marker) (domain.OverlayHandle, error) {
	np, err := e.proj.ToNative(mk.Location)
	if err != nil {
		return "", fmt.Errorf("convert marker %s: %w", mk.ID, err)
	}
	args := map[string]any{"x": np.X, "y": np.Y}
	o := mk.Options
	if o.Label != "" {
		args["label"] = o.Label
	}
	if o.InfoBubble != "" {
		args["infoBubble"] = o.InfoBubble
	}
	if o.Icon != nil {
		args["icon"] = *o.Icon
	}
	if o.ShadowIcon != nil {
		args["shadow"] = *o.ShadowIcon
	}
	if o.HoverIcon != nil {
		args["hoverIcon"] = *o.HoverIcon
	}
	if o.Draggable {
		args["draggable"] = true
	}
	return e.addOverlay(ctx, h, "marker", mk.ID, args)
}

func (e *engine) RenderPolyline(ctx context.Context, h ports.MapHandle, p *domain.Polyline) (domain.OverlayHandle, error) {
	pts := make([][2]float64, 0, len(p.Points))
	for i, pt := range p.Points {
		np, err := e.proj.ToNative(pt)
		if err != nil {
			return "", fmt.Errorf("convert polyline %s vertex %d: %w", p.ID, i, err)
		}
		pts = append(pts, [2]float64{np.X, np.Y})
	}
	args := map[string]any{
		"points": pts,
		"closed": p.Closed,
		"style":  p.Style,
	}
	return e.addOverlay(ctx, h, "polyline", p.ID, args)
}

func (e *engine) addOverlay(ctx context.Context, h ports.MapHandle, kind, entityID string, args map[string]any) (domain.OverlayHandle, error) {
	m, err := e.lookup(h)
	if err != nil {
		return "", err
	}
	oh := domain.OverlayHandle(fmt.Sprintf("%s/%s/%s", h, kind, entityID))
	args["overlay"] = oh

	e.mu.Lock()
	session := m.container.Session
	e.mu.Unlock()
	if err := e.send(ctx, session, h, "add"+title(kind), args); err != nil {
		return "", err
	}

	e.mu.Lock()
	m.overlays[oh] = &overlay{kind: kind, visible: true}
	e.mu.Unlock()
	return oh, nil
}

func (e *engine) RemoveOverlay(ctx context.Context, h ports.MapHandle, oh domain.OverlayHandle) error {
	m, err := e.lookup(h)
	if err != nil {
		return err
	}
	e.mu.Lock()
	_, ok := m.overlays[oh]
	session := m.container.Session
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("remove overlay %s: %w", oh, domain.ErrEntityNotFound)
	}
	if err := e.send(ctx, session, h, "removeOverlay", map[string]any{"overlay": oh}); err != nil {
		return err
	}
	e.mu.Lock()
	delete(m.overlays, oh)
	e.mu.Unlock()
	return nil
}

// Overlays returns how many native overlays a map holds.
func (e *engine) Overlays(h ports.MapHandle) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if m, ok := e.maps[h]; ok {
		return len(m.overlays)
	}
	return 0
}

// SyncView records a view change the host made natively.
func (e *engine) SyncView(ctx context.Context, h ports.MapHandle, center domain.NativePoint, nativeZoom float64) error {
	if _, err := e.proj.FromNative(center); err != nil {
		return fmt.Errorf("sync view: %w", err)
	}
	m, err := e.lookup(h)
	if err != nil {
		return err
	}
	e.mu.Lock()
	m.center, m.zoom = center, nativeZoom
	e.mu.Unlock()
	return nil
}

// Capability helpers. Adapters expose these through their own methods so that
// only supported capabilities appear in their method sets.

func (e *engine) setOverlayVisible(ctx context.Context, h ports.MapHandle, oh domain.OverlayHandle, visible bool) error {
	m, err := e.lookup(h)
	if err != nil {
		return err
	}
	e.mu.Lock()
	o, ok := m.overlays[oh]
	session := m.container.Session
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("toggle overlay %s: %w", oh, domain.ErrEntityNotFound)
	}
	op := "hideOverlay"
	if visible {
		op = "showOverlay"
	}
	if err := e.send(ctx, session, h, op, map[string]any{"overlay": oh}); err != nil {
		return err
	}
	e.mu.Lock()
	o.visible = visible
	e.mu.Unlock()
	return nil
}

func (e *engine) setMapType(ctx context.Context, h ports.MapHandle, t domain.MapType) error {
	return e.update(ctx, h, "setMapType", map[string]any{"type": t.String()}, func(m *nativeMap) { m.mapType = t })
}

func (e *engine) mapType(h ports.MapHandle) (domain.MapType, error) {
	m, err := e.lookup(h)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return m.mapType, nil
}

func (e *engine) resize(ctx context.Context, h ports.MapHandle, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize to %dx%d: dimensions must be positive", width, height)
	}
	return e.update(ctx, h, "resize", map[string]any{"width": width, "height": height}, func(m *nativeMap) {
		m.container.Width, m.container.Height = width, height
	})
}

func (e *engine) configureControls(ctx context.Context, h ports.MapHandle, c domain.Controls) error {
	return e.update(ctx, h, "controls", map[string]any{"controls": c}, func(m *nativeMap) { m.controls = c })
}

func (e *engine) setDragging(ctx context.Context, h ports.MapHandle, on bool) error {
	return e.update(ctx, h, "dragging", map[string]any{"enabled": on}, func(m *nativeMap) { m.dragging = on })
}

func (e *engine) enableScrollWheelZoom(ctx context.Context, h ports.MapHandle) error {
	return e.update(ctx, h, "scrollWheelZoom", nil, func(m *nativeMap) { m.scrollZoom = true })
}

// update sends op and applies fn to the map state once the host accepted it.
func (e *engine) update(ctx context.Context, h ports.MapHandle, op string, args map[string]any, fn func(*nativeMap)) error {
	m, err := e.lookup(h)
	if err != nil {
		return err
	}
	e.mu.Lock()
	session := m.container.Session
	e.mu.Unlock()
	if err := e.send(ctx, session, h, op, args); err != nil {
		return err
	}
	e.mu.Lock()
	fn(m)
	e.mu.Unlock()
	return nil
}

func (e *engine) lookup(h ports.MapHandle) (*nativeMap, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.maps[h]
	if !ok {
		return nil, fmt.Errorf("%s: unknown map %q", e.id, h)
	}
	return m, nil
}

func (e *engine) send(ctx context.Context, session string, h ports.MapHandle, op string, args map[string]any) error {
	if e.opts.Sink == nil {
		return nil
	}
	cmd := ports.Command{Session: session, Provider: e.id, Map: h, Op: op, Args: args}
	if err := e.opts.Sink.SendCommand(ctx, cmd); err != nil {
		e.opts.Logger.Warn("native command failed", "provider", e.id, "op", op, "error", err)
		return fmt.Errorf("send %s: %w", op, err)
	}
	return nil
}

func clampZoom(p projection, zoom int) int {
	lo, hi := p.ZoomRange()
	if zoom < lo {
		return lo
	}
	if zoom > hi {
		return hi
	}
	return zoom
}

func title(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
