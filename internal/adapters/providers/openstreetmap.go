package providers

import (
	"context"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/ports"
)

// OpenStreetMap draws OSM tiles. It has a single base layer, so map types are
// not supported.
type OpenStreetMap struct{ *engine }

func NewOpenStreetMap(opts Options) *OpenStreetMap {
	conv := conversion{point: degrees{}, zoom: linearZoom{sign: 1, lo: 0, hi: 19}}
	return &OpenStreetMap{newEngine(ProviderOpenStreetMap, conv, false, opts)}
}

func (o *OpenStreetMap) SetOverlayVisible(ctx context.Context, h ports.MapHandle, oh domain.OverlayHandle, visible bool) error {
	return o.setOverlayVisible(ctx, h, oh, visible)
}

func (o *OpenStreetMap) Resize(ctx context.Context, h ports.MapHandle, width, height int) error {
	return o.resize(ctx, h, width, height)
}

func (o *OpenStreetMap) ConfigureControls(ctx context.Context, h ports.MapHandle, c domain.Controls) error {
	return o.configureControls(ctx, h, c)
}

func (o *OpenStreetMap) SetDragging(ctx context.Context, h ports.MapHandle, on bool) error {
	return o.setDragging(ctx, h, on)
}

func (o *OpenStreetMap) EnableScrollWheelZoom(ctx context.Context, h ports.MapHandle) error {
	return o.enableScrollWheelZoom(ctx, h)
}
