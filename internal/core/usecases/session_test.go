package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/ports"
	"github.com/samirrijal/mapbridge/internal/core/usecases"
	"github.com/samirrijal/mapbridge/internal/pkg/geospatial"
)

// --- Fake ProviderAdapter ---

type fakeAdapter struct {
	id               domain.ProviderID
	initializeFn     func(ctx context.Context, c ports.Container) (ports.MapHandle, error)
	renderMarkerFn   func(m *domain.Marker) error
	renderPolylineFn func(p *domain.Polyline) error
	removeOverlayFn  func(o domain.OverlayHandle) error

	calls    []string
	center   domain.GeoPoint
	zoom     int
	overlays map[domain.OverlayHandle]bool
}

func newFake(id domain.ProviderID) *fakeAdapter {
	return &fakeAdapter{id: id, overlays: make(map[domain.OverlayHandle]bool)}
}

func (f *fakeAdapter) ID() domain.ProviderID { return f.id }

func (f *fakeAdapter) Initialize(ctx context.Context, c ports.Container) (ports.MapHandle, error) {
	if f.initializeFn != nil {
		return f.initializeFn(ctx, c)
	}
	return ports.MapHandle(string(f.id) + "-1"), nil
}

func (f *fakeAdapter) SetCenterAndZoom(ctx context.Context, h ports.MapHandle, center domain.GeoPoint, zoom int) error {
	f.calls = append(f.calls, fmt.Sprintf("view %s z%d", center, zoom))
	f.center, f.zoom = center, zoom
	return nil
}

func (f *fakeAdapter) Center(ctx context.Context, h ports.MapHandle) (domain.GeoPoint, error) {
	return f.center, nil
}

func (f *fakeAdapter) Zoom(ctx context.Context, h ports.MapHandle) (int, error) { return f.zoom, nil }

func (f *fakeAdapter) Bounds(ctx context.Context, h ports.MapHandle) (domain.BoundingBox, error) {
	return usecases.ViewBounds(f.center, f.zoom, usecases.Viewport{Width: 800, Height: 600})
}

func (f *fakeAdapter) ToNative(p domain.GeoPoint) (domain.NativePoint, error) {
	return domain.NativePoint{X: p.Lon, Y: p.Lat}, nil
}

func (f *fakeAdapter) FromNative(p domain.NativePoint) (domain.GeoPoint, error) {
	return domain.GeoPoint{Lat: p.Y, Lon: p.X}, nil
}

func (f *fakeAdapter) ZoomToNative(zoom int) float64     { return float64(zoom) }
func (f *fakeAdapter) ZoomFromNative(native float64) int { return int(native) }
func (f *fakeAdapter) ZoomRange() (int, int)             { return 0, 21 }

func (f *fakeAdapter) RenderMarker(ctx context.Context, h ports.MapHandle, m *domain.Marker) (domain.OverlayHandle, error) {
	if f.renderMarkerFn != nil {
		if err := f.renderMarkerFn(m); err != nil {
			return "", err
		}
	}
	f.calls = append(f.calls, "marker "+m.Options.Label)
	oh := domain.OverlayHandle(string(f.id) + "/" + m.ID)
	f.overlays[oh] = true
	return oh, nil
}

func (f *fakeAdapter) RenderPolyline(ctx context.Context, h ports.MapHandle, p *domain.Polyline) (domain.OverlayHandle, error) {
	if f.renderPolylineFn != nil {
		if err := f.renderPolylineFn(p); err != nil {
			return "", err
		}
	}
	f.calls = append(f.calls, "polyline")
	oh := domain.OverlayHandle(string(f.id) + "/" + p.ID)
	f.overlays[oh] = true
	return oh, nil
}

func (f *fakeAdapter) RemoveOverlay(ctx context.Context, h ports.MapHandle, o domain.OverlayHandle) error {
	if f.removeOverlayFn != nil {
		if err := f.removeOverlayFn(o); err != nil {
			return err
		}
	}
	f.calls = append(f.calls, "remove")
	delete(f.overlays, o)
	return nil
}

// toggleAdapter can also show and hide overlays.
type toggleAdapter struct {
	*fakeAdapter
	hidden map[domain.OverlayHandle]bool
}

func newToggle(id domain.ProviderID) *toggleAdapter {
	return &toggleAdapter{fakeAdapter: newFake(id), hidden: make(map[domain.OverlayHandle]bool)}
}

func (t *toggleAdapter) SetOverlayVisible(ctx context.Context, h ports.MapHandle, o domain.OverlayHandle, visible bool) error {
	t.hidden[o] = !visible
	return nil
}

// --- Fake ProviderRegistry ---

type fakeRegistry map[domain.ProviderID]ports.ProviderAdapter

func (r fakeRegistry) New(id domain.ProviderID) (ports.ProviderAdapter, error) {
	a, ok := r[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, id)
	}
	return a, nil
}

func (r fakeRegistry) Available() []domain.ProviderID {
	out := make([]domain.ProviderID, 0, len(r))
	for id := range r {
		out = append(out, id)
	}
	return out
}

// --- Helpers ---

var ctx = context.Background()

// readySession returns a session whose provider is selected and ready.
func readySession(t *testing.T, a ports.ProviderAdapter) *usecases.Session {
	t.Helper()
	s := usecases.NewSession("s1", fakeRegistry{a.ID(): a}, usecases.SessionOptions{
		Viewport: usecases.Viewport{Width: 800, Height: 600},
	})
	if err := s.Swap(ctx, a.ID()); err != nil {
		t.Fatalf("swap: %v", err)
	}
	if err := s.MarkReady(ctx, a.ID()); err != nil {
		t.Fatalf("ready: %v", err)
	}
	return s
}

func marker(lat, lon float64, label string) *domain.Marker {
	return domain.NewMarker(domain.GeoPoint{Lat: lat, Lon: lon}, domain.MarkerOptions{Label: label})
}

// --- Tests ---

func TestSession_AutoCenterAndZoom(t *testing.T) {
	a := newFake("google")
	s := readySession(t, a)

	_ = s.AddMarker(ctx, marker(0, 0, "a"))
	_ = s.AddMarker(ctx, marker(10, 10, "b"))

	fit, err := s.AutoCenterAndZoom(ctx)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	want, _ := domain.NewBoundingBox(domain.GeoPoint{Lat: 0, Lon: 0}, domain.GeoPoint{Lat: 10, Lon: 10})
	if fit.Bounds != want {
		t.Errorf("expected bounds %v, got %v", want, fit.Bounds)
	}
	if !fit.Center.Equals(domain.GeoPoint{Lat: 5, Lon: 5}) {
		t.Errorf("expected centre (5, 5), got %v", fit.Center)
	}
	if fit.Zoom != 6 {
		t.Errorf("expected zoom 6, got %d", fit.Zoom)
	}
	if span := geospatial.DegreesFromZoom(800, float64(fit.Zoom)); span < 10 {
		t.Errorf("zoom %d clips the box: %f degrees visible", fit.Zoom, span)
	}
	if z, _ := s.Zoom(ctx); z != 6 {
		t.Errorf("expected provider zoom 6, got %d", z)
	}
}

func TestSession_AutoCenterAndZoom_Empty(t *testing.T) {
	s := readySession(t, newFake("google"))
	if _, err := s.AutoCenterAndZoom(ctx); !errors.Is(err, domain.ErrEmptyExtent) {
		t.Errorf("expected ErrEmptyExtent, got %v", err)
	}
}

func TestSession_DoFilter(t *testing.T) {
	a := newToggle("google")
	s := readySession(t, a)

	var low *domain.Marker
	for _, score := range []int{1, 5, 10} {
		m := marker(43.26, -2.93, fmt.Sprint(score))
		m.SetAttribute("score", score)
		if score == 1 {
			low = m
		}
		if err := s.AddMarker(ctx, m); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.AddFilter(domain.Filter{Field: "score", Op: domain.OpGE, Value: 5}); err != nil {
		t.Fatal(err)
	}

	n, err := s.DoFilter(ctx, nil, nil)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 visible, got %d", n)
	}
	for _, m := range s.Markers() {
		if (m == low) == m.Visible {
			t.Errorf("marker %s visible=%v", m.Options.Label, m.Visible)
		}
	}
	oh, _ := low.Handle("google")
	if !a.hidden[oh] {
		t.Errorf("score 1 marker should be hidden natively")
	}

	s.RemoveAllFilters()
	if n, _ := s.DoFilter(ctx, nil, nil); n != 3 {
		t.Errorf("expected all 3 visible without filters, got %d", n)
	}
}

func TestSession_DoFilterCallbacks(t *testing.T) {
	s := readySession(t, newFake("map24"))
	for _, v := range []string{"a", "b"} {
		m := marker(0, 0, v)
		m.SetAttribute("kind", v)
		_ = s.AddMarker(ctx, m)
	}
	_ = s.AddFilter(domain.Filter{Field: "kind", Op: domain.OpEQ, Value: "a"})

	var shown, hidden []string
	n, err := s.DoFilter(ctx,
		func(m *domain.Marker) { shown = append(shown, m.Options.Label) },
		func(m *domain.Marker) { hidden = append(hidden, m.Options.Label) },
	)
	if err != nil {
		t.Fatal(err)
	}
	// eq hides matches by default
	if n != 1 || !reflect.DeepEqual(shown, []string{"b"}) || !reflect.DeepEqual(hidden, []string{"a"}) {
		t.Errorf("unexpected result n=%d shown=%v hidden=%v", n, shown, hidden)
	}

	s.SetEqualityMode(domain.EqualityKeepsMatches)
	shown, hidden = nil, nil
	_, _ = s.DoFilter(ctx,
		func(m *domain.Marker) { shown = append(shown, m.Options.Label) },
		func(m *domain.Marker) { hidden = append(hidden, m.Options.Label) },
	)
	if !reflect.DeepEqual(shown, []string{"a"}) {
		t.Errorf("keep mode should show the match, shown=%v", shown)
	}
}

func TestSession_DoFilterUnsupported(t *testing.T) {
	s := readySession(t, newFake("map24"))
	m := marker(0, 0, "x")
	_ = s.AddMarker(ctx, m)
	_ = s.AddFilter(domain.Filter{Field: "score", Op: domain.OpGE, Value: 1})

	n, err := s.DoFilter(ctx, nil, nil)
	if !errors.Is(err, domain.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
	if n != 0 || m.Visible {
		t.Errorf("visibility flags should still be updated")
	}
}

func TestSession_OperationsReplayOnReady(t *testing.T) {
	a := newFake("yahoo")
	s := usecases.NewSession("s1", fakeRegistry{"yahoo": a}, usecases.SessionOptions{})
	if err := s.Swap(ctx, "yahoo"); err != nil {
		t.Fatal(err)
	}

	if err := s.SetCenterAndZoom(ctx, domain.GeoPoint{Lat: 1, Lon: 2}, 5); err != nil {
		t.Fatal(err)
	}
	if err := s.AddMarker(ctx, marker(1, 2, "A")); err != nil {
		t.Fatal(err)
	}
	if err := s.AddMarker(ctx, marker(3, 4, "B")); err != nil {
		t.Fatal(err)
	}
	if len(a.calls) != 0 {
		t.Fatalf("adapter called before ready: %v", a.calls)
	}
	if s.IsLoaded() {
		t.Fatal("session should not be loaded")
	}
	if c, _ := s.Center(ctx); !c.Equals(domain.GeoPoint{Lat: 1, Lon: 2}) {
		t.Errorf("expected cached centre, got %v", c)
	}
	if len(s.Markers()) != 2 {
		t.Errorf("queued markers should be visible canonically")
	}

	if err := s.MarkReady(ctx, "yahoo"); err != nil {
		t.Fatal(err)
	}
	want := []string{"view 1.000000, 2.000000 z5", "marker A", "marker B"}
	if !reflect.DeepEqual(a.calls, want) {
		t.Errorf("expected %v, got %v", want, a.calls)
	}
}

func TestSession_SwapDoesNotReAddRendered(t *testing.T) {
	g := newFake("google")
	o := newFake("openlayers")
	s := usecases.NewSession("s1", fakeRegistry{"google": g, "openlayers": o}, usecases.SessionOptions{})
	_ = s.Swap(ctx, "google")
	_ = s.MarkReady(ctx, "google")

	m := marker(43.26, -2.93, "m")
	_ = s.AddMarker(ctx, m)
	_ = s.SetCenterAndZoom(ctx, domain.GeoPoint{Lat: 43.26, Lon: -2.93}, 12)

	if err := s.Swap(ctx, "openlayers"); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkReady(ctx, "openlayers"); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Handle("openlayers"); !ok {
		t.Fatal("marker not drawn on swapped-in provider")
	}
	if o.zoom != 12 || !o.center.Equals(domain.GeoPoint{Lat: 43.26, Lon: -2.93}) {
		t.Errorf("view not carried over: %v z%d", o.center, o.zoom)
	}

	g.calls = nil
	if err := s.Swap(ctx, "google"); err != nil {
		t.Fatal(err)
	}
	for _, c := range g.calls {
		if c == "marker m" {
			t.Errorf("marker re-added on swap back: %v", g.calls)
		}
	}
	if len(g.calls) != 1 {
		t.Errorf("expected only a view re-sync, got %v", g.calls)
	}

	// removal unbinds from every provider
	if err := s.RemoveMarker(ctx, m.ID); err != nil {
		t.Fatal(err)
	}
	if len(g.overlays) != 0 || len(o.overlays) != 0 {
		t.Errorf("native overlays left behind: %v %v", g.overlays, o.overlays)
	}
}

func TestSession_AddMarkerRenderFailure(t *testing.T) {
	a := newFake("google")
	a.renderMarkerFn = func(*domain.Marker) error { return errors.New("bad icon") }
	s := readySession(t, a)

	if err := s.AddMarker(ctx, marker(0, 0, "x")); err == nil {
		t.Fatal("expected render error")
	}
	if len(s.Markers()) != 0 {
		t.Errorf("failed add left a canonical marker")
	}
}

func TestSession_QueuedAddRollsBack(t *testing.T) {
	g := newFake("google")
	g.renderPolylineFn = func(*domain.Polyline) error { return errors.New("too many vertices") }
	y := newFake("yahoo")
	s := usecases.NewSession("s1", fakeRegistry{"google": g, "yahoo": y}, usecases.SessionOptions{})

	// yahoo ready, google still loading
	_ = s.Swap(ctx, "yahoo")
	_ = s.MarkReady(ctx, "yahoo")
	_ = s.Swap(ctx, "google")

	p := domain.NewPolyline([]domain.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 1}}, false, domain.PolylineStyle{})
	if err := s.AddPolyline(ctx, p); err != nil {
		t.Fatalf("queued add should not fail: %v", err)
	}
	// swapping back draws it on yahoo
	_ = s.Swap(ctx, "yahoo")
	if _, ok := p.Handle("yahoo"); !ok {
		t.Fatal("expected polyline on yahoo")
	}

	if err := s.MarkReady(ctx, "google"); err == nil {
		t.Fatal("expected replay error")
	}
	if len(s.Polylines()) != 0 {
		t.Errorf("rolled back polyline still in store")
	}
	if len(y.overlays) != 0 {
		t.Errorf("rolled back polyline still drawn on yahoo")
	}
}

func TestSession_RemoveFailureKeepsEntity(t *testing.T) {
	a := newFake("google")
	s := readySession(t, a)
	m := marker(0, 0, "x")
	_ = s.AddMarker(ctx, m)

	a.removeOverlayFn = func(domain.OverlayHandle) error { return errors.New("host gone") }
	if err := s.RemoveMarker(ctx, m.ID); err == nil {
		t.Fatal("expected remove error")
	}
	if _, ok := s.Marker(m.ID); !ok {
		t.Error("marker dropped despite native failure")
	}

	a.removeOverlayFn = nil
	if err := s.RemoveMarker(ctx, m.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveMarker(ctx, m.ID); !errors.Is(err, domain.ErrEntityNotFound) {
		t.Errorf("expected ErrEntityNotFound, got %v", err)
	}
}

func TestSession_ProviderUnavailable(t *testing.T) {
	a := newFake("google")
	a.initializeFn = func(context.Context, ports.Container) (ports.MapHandle, error) {
		return "", fmt.Errorf("%w: no API key", domain.ErrProviderUnavailable)
	}
	s := usecases.NewSession("s1", fakeRegistry{"google": a}, usecases.SessionOptions{})
	if err := s.Swap(ctx, "google"); !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if s.Provider() != "" {
		t.Errorf("failed swap changed the active provider")
	}
	if err := s.AddMarker(ctx, marker(0, 0, "x")); !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestSession_Unsupported(t *testing.T) {
	s := readySession(t, newFake("map24"))
	err := s.SetMapType(ctx, domain.MapTypeSatellite)
	var ue *domain.UnsupportedError
	if !errors.As(err, &ue) || ue.Operation != "setMapType" {
		t.Errorf("expected UnsupportedError for setMapType, got %v", err)
	}
	if mt, _ := s.MapType(ctx); mt != domain.MapTypeRoad {
		t.Errorf("map type changed despite failure: %s", mt)
	}
}

func TestSession_InvalidInput(t *testing.T) {
	s := readySession(t, newFake("google"))
	if err := s.SetCenterAndZoom(ctx, domain.GeoPoint{Lat: 91}, 3); !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
	p := domain.NewPolyline([]domain.GeoPoint{{Lat: 0, Lon: 0}}, false, domain.PolylineStyle{})
	if err := s.AddPolyline(ctx, p); !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate for single vertex, got %v", err)
	}
	m := marker(0, 0, "dup")
	_ = s.AddMarker(ctx, m)
	if err := s.AddMarker(ctx, m); !errors.Is(err, domain.ErrDuplicateEntity) {
		t.Errorf("expected ErrDuplicateEntity, got %v", err)
	}
}

func TestSession_WithData(t *testing.T) {
	s := readySession(t, newFake("google"))
	m, err := s.AddMarkerWithData(ctx, domain.GeoPoint{Lat: 1, Lon: 1}, map[string]any{
		"label": "Abando", "draggable": true, "line": "L1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.Options.Label != "Abando" || !m.Options.Draggable {
		t.Errorf("typed options not applied: %+v", m.Options)
	}
	if v, _ := m.Attribute("line"); v != "L1" {
		t.Errorf("extra option not in attributes: %v", m.Attributes)
	}

	p, err := s.AddPolylineWithData(ctx, []domain.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 1}}, map[string]any{
		"color": "#ff0000", "width": 3, "closed": true, "speed": 40,
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.Style.Color != "#ff0000" || p.Style.Width != 3 || !p.Closed {
		t.Errorf("polyline options not applied: %+v", p)
	}
	lo, hi, ok := s.AttributeExtremes("speed")
	if !ok || lo != 40 || hi != 40 {
		t.Errorf("unexpected extremes %v %v %v", lo, hi, ok)
	}
}

func TestSession_HandleMoveEndSyncsView(t *testing.T) {
	a := &syncAdapter{fakeAdapter: newFake("openlayers")}
	s := readySession(t, a)

	var got []domain.Event
	s.Events().AddListener(domain.EventMoveEnd, func(ev domain.Event) error {
		got = append(got, ev)
		return nil
	}, "receiver")

	nz := 9.0
	n, err := s.HandleMoveEnd(ctx, "openlayers", &domain.NativePoint{X: 2, Y: 1}, &nz)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || len(got) != 1 || got[0].Source != "openlayers" || got[0].Receiver != "receiver" || got[0].Location != nil {
		t.Errorf("unexpected delivery %d %+v", n, got)
	}
	if z, _ := s.Zoom(ctx); z != 9 {
		t.Errorf("expected synced zoom 9, got %d", z)
	}
}

// syncAdapter accepts host view updates.
type syncAdapter struct{ *fakeAdapter }

func (a *syncAdapter) SyncView(ctx context.Context, h ports.MapHandle, c domain.NativePoint, nz float64) error {
	a.center = domain.GeoPoint{Lat: c.Y, Lon: c.X}
	a.zoom = int(nz)
	return nil
}

func TestSession_Teardown(t *testing.T) {
	s := usecases.NewSession("s1", fakeRegistry{"google": newFake("google")}, usecases.SessionOptions{})
	_ = s.Swap(ctx, "google")
	_ = s.AddMarker(ctx, marker(0, 0, "x"))
	s.Teardown()
	if err := s.SetZoom(ctx, 3); err == nil {
		t.Error("expected error after teardown")
	}
}

func TestSession_CenterAndZoomOnPoints(t *testing.T) {
	s := readySession(t, newFake("google"))

	fit, err := s.CenterAndZoomOnPoints(ctx, domain.GeoPoint{Lat: 0, Lon: 0}, domain.GeoPoint{Lat: 10, Lon: 10})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if fit.Zoom != 6 || !fit.Center.Equals(domain.GeoPoint{Lat: 5, Lon: 5}) {
		t.Errorf("expected zoom 6 at (5, 5), got %d at %v", fit.Zoom, fit.Center)
	}
	if _, err := s.CenterAndZoomOnPoints(ctx); !errors.Is(err, domain.ErrEmptyExtent) {
		t.Errorf("expected ErrEmptyExtent for no points, got %v", err)
	}
	if _, err := s.CenterAndZoomOnPoints(ctx, domain.GeoPoint{Lat: 95}); !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestSession_PolylineCenterAndZoom(t *testing.T) {
	s := readySession(t, newFake("google"))
	line := domain.NewPolyline([]domain.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 1}}, false, domain.PolylineStyle{})
	if err := s.AddPolyline(ctx, line); err != nil {
		t.Fatalf("add polyline: %v", err)
	}

	tight, err := s.PolylineCenterAndZoom(ctx, 0)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	padded, err := s.PolylineCenterAndZoom(ctx, 111)
	if err != nil {
		t.Fatalf("padded fit: %v", err)
	}
	for _, p := range []domain.GeoPoint{{Lat: -0.9, Lon: -0.9}, {Lat: 1.9, Lon: 1.9}} {
		if !padded.Bounds.Contains(p) {
			t.Errorf("padded bounds %v should contain %v", padded.Bounds, p)
		}
	}
	if padded.Zoom >= tight.Zoom {
		t.Errorf("padding should zoom out: tight %d, padded %d", tight.Zoom, padded.Zoom)
	}
}

func TestSession_PixelRatio(t *testing.T) {
	s := readySession(t, newFake("google"))
	if err := s.SetCenterAndZoom(ctx, domain.GeoPoint{}, 10); err != nil {
		t.Fatalf("set view: %v", err)
	}
	got, err := s.PixelRatio(ctx)
	if err != nil {
		t.Fatalf("pixel ratio: %v", err)
	}
	want := 1000 / geospatial.MetersPerPixel(0, 10)
	if got != want {
		t.Errorf("expected %f px/km, got %f", want, got)
	}
}

// minZoomAdapter cannot zoom out past lo.
type minZoomAdapter struct {
	*fakeAdapter
	lo int
}

func (a *minZoomAdapter) ZoomRange() (int, int) { return a.lo, 21 }

func TestSession_FitReportsClipping(t *testing.T) {
	world := []domain.GeoPoint{{Lat: -60, Lon: -170}, {Lat: 60, Lon: 170}}

	s := readySession(t, &minZoomAdapter{fakeAdapter: newFake("mapquest"), lo: 3})
	fit, err := s.CenterAndZoomOnPoints(ctx, world...)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if fit.Zoom >= 3 {
		t.Fatalf("expected a fitted zoom below 3, got %d", fit.Zoom)
	}
	if !fit.Clipped {
		t.Error("fit below the provider minimum should be reported as clipped")
	}

	s = readySession(t, newFake("google"))
	fit, err = s.CenterAndZoomOnPoints(ctx, world...)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if fit.Clipped {
		t.Errorf("zoom %d is within range and should not be clipped", fit.Zoom)
	}
}
