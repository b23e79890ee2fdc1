package providers

import (
	"context"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/ports"
)

// MapQuest starts counting at canonical zoom 3.
type MapQuest struct{ *engine }

func NewMapQuest(opts Options) *MapQuest {
	conv := conversion{point: degrees{}, zoom: linearZoom{sign: 1, offset: -3, lo: 3, hi: 19}}
	return &MapQuest{newEngine(ProviderMapQuest, conv, true, opts)}
}

func (m *MapQuest) SetOverlayVisible(ctx context.Context, h ports.MapHandle, o domain.OverlayHandle, visible bool) error {
	return m.setOverlayVisible(ctx, h, o, visible)
}

func (m *MapQuest) SetMapType(ctx context.Context, h ports.MapHandle, t domain.MapType) error {
	return m.setMapType(ctx, h, t)
}

func (m *MapQuest) MapType(ctx context.Context, h ports.MapHandle) (domain.MapType, error) {
	return m.mapType(h)
}

func (m *MapQuest) Resize(ctx context.Context, h ports.MapHandle, width, height int) error {
	return m.resize(ctx, h, width, height)
}

func (m *MapQuest) ConfigureControls(ctx context.Context, h ports.MapHandle, c domain.Controls) error {
	return m.configureControls(ctx, h, c)
}

func (m *MapQuest) SetDragging(ctx context.Context, h ports.MapHandle, on bool) error {
	return m.setDragging(ctx, h, on)
}
