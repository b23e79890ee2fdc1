package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/mapbridge/internal/core/ports"
	"github.com/samirrijal/mapbridge/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Sessions *usecases.Manager
	Registry ports.ProviderRegistry
	// NATS is optional. Without it the WebSocket relay listens on the
	// session's event bus directly.
	NATS *nats.Conn
}
