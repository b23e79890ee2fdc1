package providers

import (
	"context"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/ports"
)

// OpenSpace serves Ordnance Survey mapping with eleven native levels, 0 to
// 10, starting at canonical zoom 6.
type OpenSpace struct{ *engine }

func NewOpenSpace(opts Options) *OpenSpace {
	conv := conversion{point: sphericalMercator{}, zoom: linearZoom{sign: 1, offset: -6, lo: 6, hi: 16}}
	return &OpenSpace{newEngine(ProviderOpenSpace, conv, true, opts)}
}

func (o *OpenSpace) SetOverlayVisible(ctx context.Context, h ports.MapHandle, oh domain.OverlayHandle, visible bool) error {
	return o.setOverlayVisible(ctx, h, oh, visible)
}

func (o *OpenSpace) Resize(ctx context.Context, h ports.MapHandle, width, height int) error {
	return o.resize(ctx, h, width, height)
}

func (o *OpenSpace) ConfigureControls(ctx context.Context, h ports.MapHandle, c domain.Controls) error {
	return o.configureControls(ctx, h, c)
}

func (o *OpenSpace) SetDragging(ctx context.Context, h ports.MapHandle, on bool) error {
	return o.setDragging(ctx, h, on)
}
