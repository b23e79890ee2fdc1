package providers

import (
	"context"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/ports"
)

// Microsoft drives Virtual Earth. Dragging cannot be switched off.
type Microsoft struct{ *engine }

func NewMicrosoft(opts Options) *Microsoft {
	conv := conversion{point: degrees{}, zoom: linearZoom{sign: 1, lo: 1, hi: 19}}
	return &Microsoft{newEngine(ProviderMicrosoft, conv, false, opts)}
}

func (m *Microsoft) SetOverlayVisible(ctx context.Context, h ports.MapHandle, o domain.OverlayHandle, visible bool) error {
	return m.setOverlayVisible(ctx, h, o, visible)
}

func (m *Microsoft) SetMapType(ctx context.Context, h ports.MapHandle, t domain.MapType) error {
	return m.setMapType(ctx, h, t)
}

func (m *Microsoft) MapType(ctx context.Context, h ports.MapHandle) (domain.MapType, error) {
	return m.mapType(h)
}

func (m *Microsoft) Resize(ctx context.Context, h ports.MapHandle, width, height int) error {
	return m.resize(ctx, h, width, height)
}

func (m *Microsoft) ConfigureControls(ctx context.Context, h ports.MapHandle, c domain.Controls) error {
	return m.configureControls(ctx, h, c)
}
