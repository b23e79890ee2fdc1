package providers

import (
	"context"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/ports"
)

// Map24 takes coordinates in arc-minutes and expresses zoom as the width of
// the view in arc-minutes. Overlays cannot be hidden individually.
type Map24 struct{ *engine }

func NewMap24(opts Options) *Map24 {
	conv := conversion{point: arcMinutes{}, zoom: canvasWidthZoom{lo: 0, hi: 19}}
	return &Map24{newEngine(ProviderMap24, conv, false, opts)}
}

func (m *Map24) Resize(ctx context.Context, h ports.MapHandle, width, height int) error {
	return m.resize(ctx, h, width, height)
}

func (m *Map24) ConfigureControls(ctx context.Context, h ports.MapHandle, c domain.Controls) error {
	return m.configureControls(ctx, h, c)
}
