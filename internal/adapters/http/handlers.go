package http

import (
	"regexp"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/usecases"
)

// Session ids end up as NATS subject tokens.
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// sessionResponse is a session snapshot plus non-fatal replay failures.
type sessionResponse struct {
	usecases.SessionInfo
	Warnings []string `json:"warnings,omitempty"`
}

// ListProvidersHandler returns every registered provider id.
func ListProvidersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"providers": deps.Sessions.Providers()})
	}
}

// ListSessionsHandler returns session ids, paginated.
func ListSessionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(paginate(c, deps.Sessions.List(), 50, 200))
	}
}

// CreateSessionHandler creates a session and selects its first provider.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		ID       string `json:"id"`
		Provider string `json:"provider"`
		Element  string `json:"element"`
		Width    int    `json:"width"`
		Height   int    `json:"height"`
		Debug    *bool  `json:"debug"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}
		if req.ID != "" && !sessionIDPattern.MatchString(req.ID) {
			return errBadRequest(c, "id may only contain letters, digits, '-' and '_' (max 64)")
		}
		if req.Width < 0 || req.Height < 0 {
			return errBadRequest(c, "width and height must be positive")
		}

		info, err := deps.Sessions.Create(c.UserContext(), usecases.CreateSessionRequest{
			ID:       req.ID,
			Provider: domain.ProviderID(req.Provider),
			Element:  req.Element,
			Width:    req.Width,
			Height:   req.Height,
			Debug:    req.Debug,
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sessionResponse{SessionInfo: info})
	}
}

// GetSessionHandler returns a session snapshot.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var info usecases.SessionInfo
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			info = s.Info(c.UserContext())
			return nil
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(sessionResponse{SessionInfo: info})
	}
}

// DeleteSessionHandler tears a session down.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Sessions.Delete(c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SwapProviderHandler switches the session to another provider. Replay
// failures on the new provider are reported as warnings; the swap itself
// stands.
func SwapProviderHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Provider string `json:"provider"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil || req.Provider == "" {
			return errBadRequest(c, "provider is required")
		}
		target := domain.ProviderID(req.Provider)
		ctx := c.UserContext()

		var resp sessionResponse
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			if err := s.Swap(ctx, target); err != nil {
				if s.Provider() != target {
					return err
				}
				resp.Warnings = append(resp.Warnings, err.Error())
			}
			resp.SessionInfo = s.Info(ctx)
			return nil
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(resp)
	}
}

// viewResponse describes what the map currently shows.
type viewResponse struct {
	Center     domain.GeoPoint    `json:"center"`
	Zoom       int                `json:"zoom"`
	Bounds     domain.BoundingBox `json:"bounds"`
	PixelRatio float64            `json:"pixels_per_km"`
}

func readView(c *fiber.Ctx, s *usecases.Session) (viewResponse, error) {
	ctx := c.UserContext()
	var v viewResponse
	var err error
	if v.Center, err = s.Center(ctx); err != nil {
		return v, err
	}
	if v.Zoom, err = s.Zoom(ctx); err != nil {
		return v, err
	}
	if v.Bounds, err = s.Bounds(ctx); err != nil {
		return v, err
	}
	v.PixelRatio, err = s.PixelRatio(ctx)
	return v, err
}

// GetViewHandler returns centre, zoom and visible bounds.
func GetViewHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var v viewResponse
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) (err error) {
			v, err = readView(c, s)
			return err
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(v)
	}
}

// SetViewHandler moves the map. Either field may be omitted; pan animates a
// centre-only move where the provider supports it.
func SetViewHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Center *domain.GeoPoint `json:"center"`
		Zoom   *int             `json:"zoom"`
		Pan    bool             `json:"pan"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Center == nil && req.Zoom == nil {
			return errBadRequest(c, "center or zoom is required")
		}
		if req.Center != nil && !req.Center.Valid() {
			return errBadRequest(c, "center latitude must be within [-90, 90]")
		}
		ctx := c.UserContext()

		var v viewResponse
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			var err error
			switch {
			case req.Center != nil && req.Zoom != nil:
				err = s.SetCenterAndZoom(ctx, *req.Center, *req.Zoom)
			case req.Center != nil:
				err = s.SetCenter(ctx, *req.Center, req.Pan)
			default:
				err = s.SetZoom(ctx, *req.Zoom)
			}
			if err != nil {
				return err
			}
			v, err = readView(c, s)
			return err
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(v)
	}
}

// SetMapTypeHandler selects road, satellite or hybrid.
func SetMapTypeHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Type string `json:"type"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		t, ok := domain.ParseMapType(req.Type)
		if !ok {
			return errBadRequest(c, "type must be road, satellite or hybrid")
		}
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			return s.SetMapType(c.UserContext(), t)
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{"map_type": t.String()})
	}
}

// SetControlsHandler requests map widgets.
func SetControlsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var ctl domain.Controls
		if err := c.BodyParser(&ctl); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		switch ctl.Zoom {
		case domain.ZoomControlNone, domain.ZoomControlSmall, domain.ZoomControlLarge:
		default:
			return errBadRequest(c, "zoom control must be small or large")
		}
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			return s.AddControls(c.UserContext(), ctl)
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(ctl)
	}
}

// SetDraggingHandler turns map dragging on or off.
func SetDraggingHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Enabled bool `json:"enabled"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			return s.Dragging(c.UserContext(), req.Enabled)
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{"dragging": req.Enabled})
	}
}

func EnableScrollWheelZoomHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			return s.EnableScrollWheelZoom(c.UserContext())
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ResizeHandler changes the viewport size.
func ResizeHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Width <= 0 || req.Height <= 0 {
			return errBadRequest(c, "width and height must be positive")
		}
		var vp usecases.Viewport
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			if err := s.ResizeTo(c.UserContext(), req.Width, req.Height); err != nil {
				return err
			}
			vp = s.Viewport()
			return nil
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(vp)
	}
}

func SetDebugHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Enabled bool `json:"enabled"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			s.SetDebug(req.Enabled)
			return nil
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{"debug": req.Enabled})
	}
}

// queryPoint reads a required lat/lon pair from the query string.
func queryPoint(c *fiber.Ctx, latKey, lonKey string) (domain.GeoPoint, error) {
	lat, err := cast.ToFloat64E(c.Query(latKey))
	if err != nil || c.Query(latKey) == "" {
		return domain.GeoPoint{}, domain.ErrInvalidCoordinate
	}
	lon, err := cast.ToFloat64E(c.Query(lonKey))
	if err != nil || c.Query(lonKey) == "" {
		return domain.GeoPoint{}, domain.ErrInvalidCoordinate
	}
	return domain.NewGeoPoint(lat, lon)
}

// ZoomForBoundsHandler returns the deepest zoom at which a box fits a
// viewport, without needing a session.
func ZoomForBoundsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sw, err := queryPoint(c, "south", "west")
		if err != nil {
			return errBadRequest(c, "south and west are required coordinates")
		}
		ne, err := queryPoint(c, "north", "east")
		if err != nil {
			return errBadRequest(c, "north and east are required coordinates")
		}
		b, err := domain.NewBoundingBox(sw, ne)
		if err != nil {
			return errFromDomain(c, err)
		}
		vp := usecases.Viewport{Width: c.QueryInt("width", 800), Height: c.QueryInt("height", 600)}
		if vp.Width <= 0 || vp.Height <= 0 {
			return errBadRequest(c, "width and height must be positive")
		}
		return c.JSON(usecases.FitBounds(b, vp))
	}
}

// ProjectHandler converts a point and zoom into a provider's native units.
func ProjectHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := queryPoint(c, "lat", "lon")
		if err != nil {
			return errBadRequest(c, "lat and lon are required coordinates")
		}
		a, err := deps.Registry.New(domain.ProviderID(c.Query("provider")))
		if err != nil {
			return errFromDomain(c, err)
		}
		native, err := a.ToNative(p)
		if err != nil {
			return errFromDomain(c, err)
		}
		zoom := c.QueryInt("zoom", 0)
		lo, hi := a.ZoomRange()
		return c.JSON(fiber.Map{
			"provider":    a.ID(),
			"native":      native,
			"zoom":        zoom,
			"native_zoom": a.ZoomToNative(zoom),
			"zoom_range":  []int{lo, hi},
		})
	}
}

// DistanceHandler returns the great-circle distance between two points.
func DistanceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, err := queryPoint(c, "from_lat", "from_lon")
		if err != nil {
			return errBadRequest(c, "from_lat and from_lon are required coordinates")
		}
		to, err := queryPoint(c, "to_lat", "to_lon")
		if err != nil {
			return errBadRequest(c, "to_lat and to_lon are required coordinates")
		}
		km := from.Distance(to)
		return c.JSON(fiber.Map{"km": km, "miles": domain.KMToMiles(km)})
	}
}
