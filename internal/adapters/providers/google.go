package providers

import (
	"context"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/ports"
)

// Google drives the Google Maps JavaScript API. Native points are lon/lat
// degrees and native zoom equals canonical zoom.
type Google struct{ *engine }

func NewGoogle(opts Options) *Google {
	conv := conversion{point: degrees{}, zoom: linearZoom{sign: 1, lo: 0, hi: 21}}
	return &Google{newEngine(ProviderGoogle, conv, true, opts)}
}

func (g *Google) SetOverlayVisible(ctx context.Context, h ports.MapHandle, o domain.OverlayHandle, visible bool) error {
	return g.setOverlayVisible(ctx, h, o, visible)
}

func (g *Google) SetMapType(ctx context.Context, h ports.MapHandle, t domain.MapType) error {
	return g.setMapType(ctx, h, t)
}

func (g *Google) MapType(ctx context.Context, h ports.MapHandle) (domain.MapType, error) {
	return g.mapType(h)
}

func (g *Google) Resize(ctx context.Context, h ports.MapHandle, width, height int) error {
	return g.resize(ctx, h, width, height)
}

func (g *Google) ConfigureControls(ctx context.Context, h ports.MapHandle, c domain.Controls) error {
	return g.configureControls(ctx, h, c)
}

func (g *Google) SetDragging(ctx context.Context, h ports.MapHandle, on bool) error {
	return g.setDragging(ctx, h, on)
}

func (g *Google) EnableScrollWheelZoom(ctx context.Context, h ports.MapHandle) error {
	return g.enableScrollWheelZoom(ctx, h)
}
