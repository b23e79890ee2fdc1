package providers

import (
	"context"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/ports"
)

// OpenLayers works in spherical Mercator metres (EPSG:3857). Points past the
// Mercator latitude limit cannot be drawn.
type OpenLayers struct{ *engine }

func NewOpenLayers(opts Options) *OpenLayers {
	conv := conversion{point: sphericalMercator{}, zoom: linearZoom{sign: 1, lo: 0, hi: 19}}
	return &OpenLayers{newEngine(ProviderOpenLayers, conv, false, opts)}
}

func (o *OpenLayers) SetOverlayVisible(ctx context.Context, h ports.MapHandle, oh domain.OverlayHandle, visible bool) error {
	return o.setOverlayVisible(ctx, h, oh, visible)
}

func (o *OpenLayers) Resize(ctx context.Context, h ports.MapHandle, width, height int) error {
	return o.resize(ctx, h, width, height)
}

func (o *OpenLayers) ConfigureControls(ctx context.Context, h ports.MapHandle, c domain.Controls) error {
	return o.configureControls(ctx, h, c)
}

func (o *OpenLayers) SetDragging(ctx context.Context, h ports.MapHandle, on bool) error {
	return o.setDragging(ctx, h, on)
}

func (o *OpenLayers) EnableScrollWheelZoom(ctx context.Context, h ports.MapHandle) error {
	return o.enableScrollWheelZoom(ctx, h)
}
