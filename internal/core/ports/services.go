package ports

import (
	"context"

	"github.com/samirrijal/mapbridge/internal/core/domain"
)

// Command is a native call forwarded to the host that draws a provider's map.
type Command struct {
	Session  string            `json:"session"`
	Provider domain.ProviderID `json:"provider"`
	Map      MapHandle         `json:"map"`
	Op       string            `json:"op"`
	Args     map[string]any    `json:"args,omitempty"`
}

// CommandSink delivers native commands to the host.
type CommandSink interface {
	SendCommand(ctx context.Context, cmd Command) error
}

// EventPublisher fans map events out to remote subscribers.
type EventPublisher interface {
	PublishMapEvent(ctx context.Context, session string, ev domain.Event) error
}

// HostNotification is a callback from the host that draws a provider's map.
type HostNotification struct {
	Session    string              `json:"session"`
	Provider   domain.ProviderID   `json:"provider"`
	Kind       string              `json:"kind"` // ready | click | moveend
	Location   *domain.GeoPoint    `json:"location,omitempty"`
	Native     *domain.NativePoint `json:"native,omitempty"`
	NativeZoom *float64            `json:"native_zoom,omitempty"`
}

// HostSubscriber receives host notifications from a message broker.
type HostSubscriber interface {
	SubscribeHost(ctx context.Context, handler func(ctx context.Context, n HostNotification) error) error
}
