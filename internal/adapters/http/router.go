package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/mapbridge/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	app.Use(AccessLogMiddleware())

	// Host pages send a moveend per pan, so the limit is generous: 600
	// requests per minute per IP.
	app.Use(limiter.New(limiter.Config{
		Max:        600,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, 429, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1, 15s per-request timeout
	v1 := app.Group("/v1")
	t := func(h fiber.Handler) fiber.Handler { return timeout.NewWithContext(h, 15*time.Second) }

	v1.Get("/providers", t(ListProvidersHandler(deps)))
	v1.Get("/zoom", t(ZoomForBoundsHandler(deps)))
	v1.Get("/project", t(ProjectHandler(deps)))
	v1.Get("/distance", t(DistanceHandler(deps)))

	v1.Get("/sessions", t(ListSessionsHandler(deps)))
	v1.Post("/sessions", t(CreateSessionHandler(deps)))
	v1.Get("/sessions/:id", t(GetSessionHandler(deps)))
	v1.Delete("/sessions/:id", t(DeleteSessionHandler(deps)))
	v1.Put("/sessions/:id/provider", t(SwapProviderHandler(deps)))

	// View and map settings
	v1.Get("/sessions/:id/view", t(GetViewHandler(deps)))
	v1.Put("/sessions/:id/view", t(SetViewHandler(deps)))
	v1.Put("/sessions/:id/map-type", t(SetMapTypeHandler(deps)))
	v1.Put("/sessions/:id/controls", t(SetControlsHandler(deps)))
	v1.Put("/sessions/:id/dragging", t(SetDraggingHandler(deps)))
	v1.Post("/sessions/:id/scroll-wheel-zoom", t(EnableScrollWheelZoomHandler(deps)))
	v1.Put("/sessions/:id/size", t(ResizeHandler(deps)))
	v1.Put("/sessions/:id/debug", t(SetDebugHandler(deps)))

	// Entities
	v1.Get("/sessions/:id/markers", t(ListMarkersHandler(deps)))
	v1.Post("/sessions/:id/markers", t(AddMarkerHandler(deps)))
	v1.Delete("/sessions/:id/markers", t(RemoveAllMarkersHandler(deps)))
	v1.Get("/sessions/:id/markers/:mid", t(GetMarkerHandler(deps)))
	v1.Delete("/sessions/:id/markers/:mid", t(RemoveMarkerHandler(deps)))
	v1.Get("/sessions/:id/polylines", t(ListPolylinesHandler(deps)))
	v1.Post("/sessions/:id/polylines", t(AddPolylineHandler(deps)))
	v1.Delete("/sessions/:id/polylines", t(RemoveAllPolylinesHandler(deps)))
	v1.Get("/sessions/:id/polylines/:pid", t(GetPolylineHandler(deps)))
	v1.Delete("/sessions/:id/polylines/:pid", t(RemovePolylineHandler(deps)))
	v1.Post("/sessions/:id/circles", t(AddCircleHandler(deps)))

	// Filters and extent
	v1.Get("/sessions/:id/filters", t(ListFiltersHandler(deps)))
	v1.Post("/sessions/:id/filters", t(AddFilterHandler(deps)))
	v1.Delete("/sessions/:id/filters", t(RemoveFiltersHandler(deps)))
	v1.Post("/sessions/:id/filters/toggle", t(ToggleFilterHandler(deps)))
	v1.Put("/sessions/:id/filters/mode", t(SetEqualityModeHandler(deps)))
	v1.Post("/sessions/:id/filters/apply", t(ApplyFiltersHandler(deps)))
	v1.Post("/sessions/:id/fit", t(FitHandler(deps)))
	v1.Get("/sessions/:id/extremes", t(ExtremesHandler(deps)))

	// Host callbacks (HTTP twin of the NATS host subjects)
	v1.Post("/sessions/:id/providers/:provider/:kind", t(HostCallbackHandler(deps)))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/sessions/:id", websocket.New(WebSocketHandler(deps)))
}
