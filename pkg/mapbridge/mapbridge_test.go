package mapbridge_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/pkg/mapbridge"
)

func TestNew_QueuesUntilReady(t *testing.T) {
	ctx := context.Background()
	s, err := mapbridge.New(ctx, "demo", mapbridge.Options{Viewport: mapbridge.Viewport{Width: 800, Height: 600}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Teardown()

	for _, ll := range [][2]float64{{0, 0}, {10, 10}} {
		p, err := mapbridge.NewGeoPoint(ll[0], ll[1])
		if err != nil {
			t.Fatalf("NewGeoPoint: %v", err)
		}
		if err := s.AddMarker(ctx, mapbridge.NewMarker(p, mapbridge.MarkerOptions{})); err != nil {
			t.Fatalf("AddMarker: %v", err)
		}
	}
	if s.IsLoaded() {
		t.Fatal("session should still be loading")
	}
	if err := s.MarkReady(ctx, mapbridge.OpenLayers); err != nil {
		t.Fatalf("MarkReady: %v", err)
	}

	fit, err := s.AutoCenterAndZoom(ctx)
	if err != nil {
		t.Fatalf("AutoCenterAndZoom: %v", err)
	}
	if fit.Zoom != 6 {
		t.Errorf("zoom = %d, want 6", fit.Zoom)
	}
}

func TestNew_KeyedProviderUnavailable(t *testing.T) {
	_, err := mapbridge.New(context.Background(), "demo", mapbridge.Options{Provider: mapbridge.Google})
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
}
