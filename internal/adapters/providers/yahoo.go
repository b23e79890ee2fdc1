package providers

import (
	"context"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/ports"
)

// Yahoo numbers zoom levels backwards: native 1 is street level and 17 is the
// whole world.
type Yahoo struct{ *engine }

func NewYahoo(opts Options) *Yahoo {
	conv := conversion{point: degrees{}, zoom: linearZoom{sign: -1, offset: 18, lo: 1, hi: 17}}
	return &Yahoo{newEngine(ProviderYahoo, conv, true, opts)}
}

func (y *Yahoo) SetOverlayVisible(ctx context.Context, h ports.MapHandle, o domain.OverlayHandle, visible bool) error {
	return y.setOverlayVisible(ctx, h, o, visible)
}

func (y *Yahoo) SetMapType(ctx context.Context, h ports.MapHandle, t domain.MapType) error {
	return y.setMapType(ctx, h, t)
}

func (y *Yahoo) MapType(ctx context.Context, h ports.MapHandle) (domain.MapType, error) {
	return y.mapType(h)
}

func (y *Yahoo) Resize(ctx context.Context, h ports.MapHandle, width, height int) error {
	return y.resize(ctx, h, width, height)
}

func (y *Yahoo) ConfigureControls(ctx context.Context, h ports.MapHandle, c domain.Controls) error {
	return y.configureControls(ctx, h, c)
}

func (y *Yahoo) SetDragging(ctx context.Context, h ports.MapHandle, on bool) error {
	return y.setDragging(ctx, h, on)
}
