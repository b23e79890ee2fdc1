package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/ports"
	"github.com/samirrijal/mapbridge/internal/core/usecases"
)

type markerView struct {
	ID         string               `json:"id"`
	Location   domain.GeoPoint      `json:"location"`
	Options    domain.MarkerOptions `json:"options"`
	Attributes domain.Attributes    `json:"attributes,omitempty"`
	Visible    bool                 `json:"visible"`
	RenderedOn []domain.ProviderID  `json:"rendered_on"`
}

func viewMarker(m *domain.Marker) markerView {
	attrs := make(domain.Attributes, len(m.Attributes))
	for k, v := range m.Attributes {
		attrs[k] = v
	}
	return markerView{
		ID:         m.ID,
		Location:   m.Location,
		Options:    m.Options,
		Attributes: attrs,
		Visible:    m.Visible,
		RenderedOn: m.RenderedOn(),
	}
}

type polylineView struct {
	ID         string               `json:"id"`
	Points     []domain.GeoPoint    `json:"points"`
	Closed     bool                 `json:"closed"`
	Style      domain.PolylineStyle `json:"style"`
	Attributes domain.Attributes    `json:"attributes,omitempty"`
	Visible    bool                 `json:"visible"`
	RenderedOn []domain.ProviderID  `json:"rendered_on"`
}

func viewPolyline(p *domain.Polyline) polylineView {
	pts := make([]domain.GeoPoint, len(p.Points))
	copy(pts, p.Points)
	attrs := make(domain.Attributes, len(p.Attributes))
	for k, v := range p.Attributes {
		attrs[k] = v
	}
	return polylineView{
		ID:         p.ID,
		Points:     pts,
		Closed:     p.Closed,
		Style:      p.Style,
		Attributes: attrs,
		Visible:    p.Visible,
		RenderedOn: p.RenderedOn(),
	}
}

// --- Markers ---

// AddMarkerHandler places a marker. data accepts the loosely typed option
// keys (label, infoBubble, icon, ...); unknown keys become attributes.
func AddMarkerHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Lat  *float64       `json:"lat"`
		Lon  *float64       `json:"lon"`
		Data map[string]any `json:"data"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Lat == nil || req.Lon == nil {
			return errBadRequest(c, "lat and lon are required")
		}
		loc, err := domain.NewGeoPoint(*req.Lat, *req.Lon)
		if err != nil {
			return errFromDomain(c, err)
		}

		var out markerView
		err = deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			m, err := s.AddMarkerWithData(c.UserContext(), loc, req.Data)
			if err != nil {
				return err
			}
			out = viewMarker(m)
			return nil
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// ListMarkersHandler returns markers, paginated. visible=true keeps only the
// ones passing the active filters.
func ListMarkersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		visibleOnly := c.QueryBool("visible", false)
		var out []markerView
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			for _, m := range s.Markers() {
				if visibleOnly && !m.Visible {
					continue
				}
				out = append(out, viewMarker(m))
			}
			return nil
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(paginate(c, out, 100, 500))
	}
}

func GetMarkerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var out markerView
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			m, ok := s.Marker(c.Params("mid"))
			if !ok {
				return domain.ErrEntityNotFound
			}
			out = viewMarker(m)
			return nil
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(out)
	}
}

func RemoveMarkerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			return s.RemoveMarker(c.UserContext(), c.Params("mid"))
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func RemoveAllMarkersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			return s.RemoveAllMarkers(c.UserContext())
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// --- Polylines ---

// AddPolylineHandler draws a path. data accepts color, width, opacity,
// closed and fillColor; unknown keys become attributes.
func AddPolylineHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Points []domain.GeoPoint `json:"points"`
		Data   map[string]any    `json:"data"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		var out polylineView
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			p, err := s.AddPolylineWithData(c.UserContext(), req.Points, req.Data)
			if err != nil {
				return err
			}
			out = viewPolyline(p)
			return nil
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// AddCircleHandler draws a closed ring of radius_km around a centre.
func AddCircleHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Center   *domain.GeoPoint `json:"center"`
		RadiusKm float64          `json:"radius_km"`
		Quality  int              `json:"quality"`
		Color    string           `json:"color"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Center == nil || !req.Center.Valid() {
			return errBadRequest(c, "a valid center is required")
		}
		if req.RadiusKm <= 0 {
			return errBadRequest(c, "radius_km must be positive")
		}
		p := domain.NewRadius(*req.Center, req.Quality).Polyline(req.RadiusKm, req.Color)

		var out polylineView
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			if err := s.AddPolyline(c.UserContext(), p); err != nil {
				return err
			}
			out = viewPolyline(p)
			return nil
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

func ListPolylinesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var out []polylineView
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			for _, p := range s.Polylines() {
				out = append(out, viewPolyline(p))
			}
			return nil
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(paginate(c, out, 100, 500))
	}
}

func GetPolylineHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var out polylineView
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			p, ok := s.Polyline(c.Params("pid"))
			if !ok {
				return domain.ErrEntityNotFound
			}
			out = viewPolyline(p)
			return nil
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(out)
	}
}

func RemovePolylineHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			return s.RemovePolyline(c.UserContext(), c.Params("pid"))
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func RemoveAllPolylinesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			return s.RemoveAllPolylines(c.UserContext())
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// --- Filters ---

type filterRequest struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Value any    `json:"value"`
}

func (r filterRequest) filter() (domain.Filter, error) {
	op, err := domain.ParseFilterOp(r.Op)
	if err != nil {
		return domain.Filter{}, err
	}
	f := domain.Filter{Field: r.Field, Op: op, Value: r.Value}
	return f, f.Validate()
}

type filtersResponse struct {
	Mode    string          `json:"mode"`
	Filters []domain.Filter `json:"filters"`
}

func ListFiltersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var out filtersResponse
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			info := s.Info(c.UserContext())
			out = filtersResponse{Mode: info.EqualityMode, Filters: info.Filters}
			return nil
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(out)
	}
}

// AddFilterHandler registers an attribute predicate. It takes effect on the
// next apply.
func AddFilterHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req filterRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		f, err := req.filter()
		if err != nil {
			return errFromDomain(c, err)
		}
		err = deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			return s.AddFilter(f)
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(f)
	}
}

// ToggleFilterHandler adds the filter or removes it when already active.
func ToggleFilterHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req filterRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		f, err := req.filter()
		if err != nil {
			return errFromDomain(c, err)
		}
		var active bool
		err = deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) (err error) {
			active, err = s.ToggleFilter(f)
			return err
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{"filter": f, "active": active})
	}
}

// RemoveFiltersHandler drops filters matching the query. Without field every
// filter is removed; without op every filter on field is removed.
func RemoveFiltersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		field := c.Query("field")
		var op domain.FilterOp
		if raw := c.Query("op"); raw != "" {
			var err error
			if op, err = domain.ParseFilterOp(raw); err != nil {
				return errFromDomain(c, err)
			}
		}
		var removed int
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			if field == "" {
				removed = len(s.Filters())
				s.RemoveAllFilters()
				return nil
			}
			removed = s.RemoveFilter(field, op, c.Query("value"))
			return nil
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{"removed": removed})
	}
}

// SetEqualityModeHandler selects whether eq filters hide or keep matches.
func SetEqualityModeHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Mode string `json:"mode"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		mode, err := domain.ParseEqualityMode(req.Mode)
		if err != nil {
			return errFromDomain(c, err)
		}
		err = deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			s.SetEqualityMode(mode)
			return nil
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{"mode": mode.String()})
	}
}

// ApplyFiltersHandler recomputes marker visibility and pushes it to the
// provider. A provider that cannot toggle overlays still gets the flags
// updated; the failure is reported as a warning.
func ApplyFiltersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var visible int
		var warning string
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			n, err := s.DoFilter(c.UserContext(), nil, nil)
			visible = n
			if errors.Is(err, domain.ErrUnsupported) {
				warning = err.Error()
				return nil
			}
			return err
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		resp := fiber.Map{"visible": visible}
		if warning != "" {
			resp["warning"] = warning
		}
		return c.JSON(resp)
	}
}

// --- Extent ---

// FitHandler centres and zooms the map on a target: markers (default),
// visible, polylines, points or bounds.
func FitHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Target   string              `json:"target"`
		RadiusKm float64             `json:"radius_km"`
		Points   []domain.GeoPoint   `json:"points"`
		Bounds   *domain.BoundingBox `json:"bounds"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}

		var fit usecases.Fit
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) (err error) {
			ctx := c.UserContext()
			switch req.Target {
			case "", "markers":
				fit, err = s.AutoCenterAndZoom(ctx)
			case "visible":
				fit, err = s.VisibleCenterAndZoom(ctx)
			case "polylines":
				fit, err = s.PolylineCenterAndZoom(ctx, req.RadiusKm)
			case "points":
				fit, err = s.CenterAndZoomOnPoints(ctx, req.Points...)
			case "bounds":
				if req.Bounds == nil {
					return domain.ErrInvalidBoundingBox
				}
				var b domain.BoundingBox
				if b, err = domain.NewBoundingBox(req.Bounds.SouthWest, req.Bounds.NorthEast); err != nil {
					return err
				}
				fit, err = s.SetBounds(ctx, b)
			default:
				return errUnknownTarget
			}
			return err
		})
		if errors.Is(err, errUnknownTarget) {
			return errBadRequest(c, "target must be markers, visible, polylines, points or bounds")
		}
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fit)
	}
}

var errUnknownTarget = errors.New("unknown fit target")

// ExtremesHandler returns the numeric range of a marker attribute.
func ExtremesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		field := c.Query("field")
		if field == "" {
			return errBadRequest(c, "field query parameter is required")
		}
		var lo, hi float64
		var ok bool
		err := deps.Sessions.Do(c.Params("id"), func(s *usecases.Session) error {
			lo, hi, ok = s.AttributeExtremes(field)
			return nil
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		if !ok {
			return errNotFound(c, "no marker has a numeric "+field)
		}
		return c.JSON(fiber.Map{"field": field, "min": lo, "max": hi})
	}
}

// --- Host callbacks ---

// HostCallbackHandler accepts ready, click and moveend notifications from
// the page drawing a provider's map. It is the HTTP twin of the NATS host
// subjects.
func HostCallbackHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Lat        *float64            `json:"lat"`
		Lon        *float64            `json:"lon"`
		Native     *domain.NativePoint `json:"native"`
		NativeZoom *float64            `json:"native_zoom"`
	}
	return func(c *fiber.Ctx) error {
		kind := c.Params("kind")
		switch kind {
		case "ready", "click", "moveend":
		default:
			return errNotFound(c, "unknown host notification "+kind)
		}

		var req request
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}
		n := ports.HostNotification{
			Session:  c.Params("id"),
			Provider: domain.ProviderID(c.Params("provider")),
			Kind:     kind,
		}
		if req.Lat != nil && req.Lon != nil {
			loc, err := domain.NewGeoPoint(*req.Lat, *req.Lon)
			if err != nil {
				return errFromDomain(c, err)
			}
			n.Location = &loc
		}
		n.Native, n.NativeZoom = req.Native, req.NativeZoom

		if err := deps.Sessions.HandleHost(c.UserContext(), n); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
