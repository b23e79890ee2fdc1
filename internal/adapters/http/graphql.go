package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to the session manager.
// Resolvers copy session state while holding the session lock; the returned
// values are plain data.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BoundingBox",
		Fields: graphql.Fields{
			"southwest": &graphql.Field{Type: geoPointType},
			"northeast": &graphql.Field{Type: geoPointType},
		},
	})

	providerStatusType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProviderStatus",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.String},
			"state":   &graphql.Field{Type: graphql.String},
			"pending": &graphql.Field{Type: graphql.Int},
			"error":   &graphql.Field{Type: graphql.String},
		},
	})

	markerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Marker",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
			"visible":  &graphql.Field{Type: graphql.Boolean},
			"label": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(markerView).Options.Label, nil
				},
			},
			"rendered_on": &graphql.Field{Type: graphql.NewList(graphql.String)},
		},
	})

	polylineType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Polyline",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.String},
			"points":  &graphql.Field{Type: graphql.NewList(geoPointType)},
			"closed":  &graphql.Field{Type: graphql.Boolean},
			"visible": &graphql.Field{Type: graphql.Boolean},
			"color": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(polylineView).Style.Color, nil
				},
			},
		},
	})

	fitType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Fit",
		Fields: graphql.Fields{
			"bounds":  &graphql.Field{Type: boundsType},
			"center":  &graphql.Field{Type: geoPointType},
			"zoom":    &graphql.Field{Type: graphql.Int},
			"clipped": &graphql.Field{Type: graphql.Boolean},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.String},
			"provider":      &graphql.Field{Type: graphql.String},
			"loaded":        &graphql.Field{Type: graphql.Boolean},
			"providers":     &graphql.Field{Type: graphql.NewList(providerStatusType)},
			"center":        &graphql.Field{Type: geoPointType},
			"zoom":          &graphql.Field{Type: graphql.Int},
			"map_type":      &graphql.Field{Type: graphql.String},
			"equality_mode": &graphql.Field{Type: graphql.String},
			"markers":       &graphql.Field{Type: graphql.NewList(markerType)},
			"polylines":     &graphql.Field{Type: graphql.NewList(polylineType)},
		},
	})

	loadSession := func(p graphql.ResolveParams, id string) (interface{}, error) {
		var out map[string]interface{}
		err := deps.Sessions.Do(id, func(s *usecases.Session) error {
			info := s.Info(p.Context)
			markers := make([]markerView, 0, len(s.Markers()))
			for _, m := range s.Markers() {
				markers = append(markers, viewMarker(m))
			}
			lines := make([]polylineView, 0, len(s.Polylines()))
			for _, pl := range s.Polylines() {
				lines = append(lines, viewPolyline(pl))
			}
			out = map[string]interface{}{
				"id":            info.ID,
				"provider":      string(info.Provider),
				"loaded":        info.Loaded,
				"providers":     info.Providers,
				"center":        info.Center,
				"zoom":          info.Zoom,
				"map_type":      info.MapType,
				"equality_mode": info.EqualityMode,
				"markers":       markers,
				"polylines":     lines,
			}
			return nil
		})
		return out, err
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"providers": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "Registered map providers",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Sessions.Providers(), nil
				},
			},
			"sessions": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "Ids of live sessions",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Sessions.List(), nil
				},
			},
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "A session with its markers and polylines",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return loadSession(p, p.Args["id"].(string))
				},
			},
			"zoomForBounds": &graphql.Field{
				Type:        fitType,
				Description: "Deepest zoom at which a box fits a viewport",
				Args: graphql.FieldConfigArgument{
					"south":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"west":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"north":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"east":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"width":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 800},
					"height": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 600},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					b, err := domain.NewBoundingBox(
						domain.GeoPoint{Lat: p.Args["south"].(float64), Lon: p.Args["west"].(float64)},
						domain.GeoPoint{Lat: p.Args["north"].(float64), Lon: p.Args["east"].(float64)},
					)
					if err != nil {
						return nil, err
					}
					vp := usecases.Viewport{Width: p.Args["width"].(int), Height: p.Args["height"].(int)}
					return usecases.FitBounds(b, vp), nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"addMarker": &graphql.Field{
				Type:        markerType,
				Description: "Place a marker on a session",
				Args: graphql.FieldConfigArgument{
					"session": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"lat":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"label":   &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					loc, err := domain.NewGeoPoint(p.Args["lat"].(float64), p.Args["lon"].(float64))
					if err != nil {
						return nil, err
					}
					data := map[string]any{}
					if label, ok := p.Args["label"].(string); ok {
						data["label"] = label
					}
					var out markerView
					err = deps.Sessions.Do(p.Args["session"].(string), func(s *usecases.Session) error {
						m, err := s.AddMarkerWithData(p.Context, loc, data)
						if err != nil {
							return err
						}
						out = viewMarker(m)
						return nil
					})
					if err != nil {
						return nil, err
					}
					return out, nil
				},
			},
			"autoCenterAndZoom": &graphql.Field{
				Type:        fitType,
				Description: "Fit the view to every marker and polyline",
				Args: graphql.FieldConfigArgument{
					"session": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var fit usecases.Fit
					err := deps.Sessions.Do(p.Args["session"].(string), func(s *usecases.Session) (err error) {
						fit, err = s.AutoCenterAndZoom(p.Context)
						return err
					})
					if err != nil {
						return nil, err
					}
					return fit, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
