package ports

import (
	"context"

	"github.com/samirrijal/mapbridge/internal/core/domain"
)

// MapHandle identifies a native map instance created by a provider.
type MapHandle string

// Container describes where a provider should draw its map.
type Container struct {
	Session string `json:"session"`
	Element string `json:"element"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// ProviderAdapter is the contract every mapping back-end implements. Zoom
// arguments and results are canonical unless the method name says otherwise.
// The conversion methods are pure.
type ProviderAdapter interface {
	ID() domain.ProviderID
	Initialize(ctx context.Context, c Container) (MapHandle, error)

	SetCenterAndZoom(ctx context.Context, h MapHandle, center domain.GeoPoint, zoom int) error
	Center(ctx context.Context, h MapHandle) (domain.GeoPoint, error)
	Zoom(ctx context.Context, h MapHandle) (int, error)
	Bounds(ctx context.Context, h MapHandle) (domain.BoundingBox, error)

	ToNative(p domain.GeoPoint) (domain.NativePoint, error)
	FromNative(p domain.NativePoint) (domain.GeoPoint, error)
	ZoomToNative(zoom int) float64
	ZoomFromNative(native float64) int
	ZoomRange() (lo, hi int)

	RenderMarker(ctx context.Context, h MapHandle, m *domain.Marker) (domain.OverlayHandle, error)
	RenderPolyline(ctx context.Context, h MapHandle, p *domain.Polyline) (domain.OverlayHandle, error)
	RemoveOverlay(ctx context.Context, h MapHandle, o domain.OverlayHandle) error
}

// Optional capabilities. A provider that lacks one reports domain.ErrUnsupported
// through the dispatcher.

type OverlayToggler interface {
	SetOverlayVisible(ctx context.Context, h MapHandle, o domain.OverlayHandle, visible bool) error
}

type MapTyper interface {
	SetMapType(ctx context.Context, h MapHandle, t domain.MapType) error
	MapType(ctx context.Context, h MapHandle) (domain.MapType, error)
}

type Resizer interface {
	Resize(ctx context.Context, h MapHandle, width, height int) error
}

type ControlConfigurer interface {
	ConfigureControls(ctx context.Context, h MapHandle, c domain.Controls) error
}

type DragToggler interface {
	SetDragging(ctx context.Context, h MapHandle, on bool) error
}

type ScrollWheelZoomer interface {
	EnableScrollWheelZoom(ctx context.Context, h MapHandle) error
}

// ViewSyncer accepts view changes made natively by the host, in native units.
type ViewSyncer interface {
	SyncView(ctx context.Context, h MapHandle, center domain.NativePoint, nativeZoom float64) error
}

// ProviderRegistry builds adapters by id.
type ProviderRegistry interface {
	New(id domain.ProviderID) (ProviderAdapter, error)
	Available() []domain.ProviderID
}
