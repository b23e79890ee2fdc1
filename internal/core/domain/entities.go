package domain

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// ProviderID names a mapping back-end (e.g. "google", "openlayers").
type ProviderID string

// OverlayHandle identifies a native overlay created by a provider.
type OverlayHandle string

// MapType is the base layer shown by a provider.
type MapType int

const (
	MapTypeRoad      MapType = 1
	MapTypeSatellite MapType = 2
	MapTypeHybrid    MapType = 3
)

func (t MapType) String() string {
	switch t {
	case MapTypeRoad:
		return "road"
	case MapTypeSatellite:
		return "satellite"
	case MapTypeHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// ParseMapType accepts the names returned by MapType.String.
func ParseMapType(s string) (MapType, bool) {
	switch strings.ToLower(s) {
	case "road":
		return MapTypeRoad, true
	case "satellite":
		return MapTypeSatellite, true
	case "hybrid":
		return MapTypeHybrid, true
	}
	return 0, false
}

// Attributes is the open, string-keyed bag filters operate on.
type Attributes map[string]any

// Icon describes an image used to draw a marker.
type Icon struct {
	URL     string `json:"url"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	AnchorX int    `json:"anchor_x,omitempty"`
	AnchorY int    `json:"anchor_y,omitempty"`
}

// MarkerOptions holds the well-known rendering hints for a marker.
// Anything else goes into Extra and ends up in the marker's attributes.
type MarkerOptions struct {
	Label      string         `json:"label,omitempty"`
	InfoBubble string         `json:"info_bubble,omitempty"`
	InfoDiv    string         `json:"info_div,omitempty"`
	InfoDivID  string         `json:"info_div_id,omitempty"`
	Icon       *Icon          `json:"icon,omitempty"`
	ShadowIcon *Icon          `json:"shadow_icon,omitempty"`
	HoverIcon  *Icon          `json:"hover_icon,omitempty"`
	Hover      bool           `json:"hover,omitempty"`
	Draggable  bool           `json:"draggable,omitempty"`
	OpenBubble bool           `json:"open_bubble,omitempty"`
	GroupName  string         `json:"group_name,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// overlayHandles tracks the native overlay each provider drew for an entity.
type overlayHandles struct {
	handles map[ProviderID]OverlayHandle
}

// Bind records the native overlay h drawn by provider p.
func (o *overlayHandles) Bind(p ProviderID, h OverlayHandle) {
	if o.handles == nil {
		o.handles = make(map[ProviderID]OverlayHandle)
	}
	o.handles[p] = h
}

// Unbind forgets the overlay drawn by p.
func (o *overlayHandles) Unbind(p ProviderID) {
	delete(o.handles, p)
}

// Handle returns the overlay drawn by p, if any.
func (o *overlayHandles) Handle(p ProviderID) (OverlayHandle, bool) {
	h, ok := o.handles[p]
	return h, ok
}

// RenderedOn lists the providers holding a native overlay, sorted.
func (o *overlayHandles) RenderedOn() []ProviderID {
	out := make([]ProviderID, 0, len(o.handles))
	for p := range o.handles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Marker is a point entity placed on the map.
type Marker struct {
	ID         string        `json:"id"`
	Location   GeoPoint      `json:"location"`
	Options    MarkerOptions `json:"options"`
	Attributes Attributes    `json:"attributes,omitempty"`
	Visible    bool          `json:"visible"`
	overlayHandles
}

// NewMarker creates a visible marker with a fresh ID. Extra options are copied
// into the attribute bag.
func NewMarker(loc GeoPoint, opts MarkerOptions) *Marker {
	m := &Marker{
		ID:         uuid.NewString(),
		Location:   loc,
		Options:    opts,
		Attributes: make(Attributes, len(opts.Extra)),
		Visible:    true,
	}
	for k, v := range opts.Extra {
		m.Attributes[k] = v
	}
	return m
}

// SetAttribute stores a filterable value on the marker.
func (m *Marker) SetAttribute(key string, value any) {
	if m.Attributes == nil {
		m.Attributes = make(Attributes)
	}
	m.Attributes[key] = value
}

// Attribute returns the named value and whether it was set.
func (m *Marker) Attribute(key string) (any, bool) {
	v, ok := m.Attributes[key]
	return v, ok
}

// MarkerOptionsFromData maps a loosely typed option object onto MarkerOptions.
// Unknown keys land in Extra.
func MarkerOptionsFromData(data map[string]any) MarkerOptions {
	var opts MarkerOptions
	var iconSize, iconAnchor, shadowSize []int
	for k, v := range data {
		switch k {
		case "label":
			opts.Label = cast.ToString(v)
		case "infoBubble":
			opts.InfoBubble = cast.ToString(v)
		case "infoDiv":
			parts := cast.ToStringSlice(v)
			if len(parts) > 0 {
				opts.InfoDiv = parts[0]
			}
			if len(parts) > 1 {
				opts.InfoDivID = parts[1]
			}
		case "icon":
			opts.Icon = ensureIcon(opts.Icon, cast.ToString(v))
		case "iconSize":
			iconSize = cast.ToIntSlice(v)
		case "iconAnchor":
			iconAnchor = cast.ToIntSlice(v)
		case "iconShadow":
			opts.ShadowIcon = ensureIcon(opts.ShadowIcon, cast.ToString(v))
		case "iconShadowSize":
			shadowSize = cast.ToIntSlice(v)
		case "hoverIcon":
			opts.HoverIcon = ensureIcon(opts.HoverIcon, cast.ToString(v))
		case "hover":
			opts.Hover = cast.ToBool(v)
		case "draggable":
			opts.Draggable = cast.ToBool(v)
		case "openBubble":
			opts.OpenBubble = cast.ToBool(v)
		case "groupName":
			opts.GroupName = cast.ToString(v)
		default:
			if opts.Extra == nil {
				opts.Extra = make(map[string]any)
			}
			opts.Extra[k] = v
		}
	}
	if opts.Icon != nil {
		if len(iconSize) == 2 {
			opts.Icon.Width, opts.Icon.Height = iconSize[0], iconSize[1]
		}
		if len(iconAnchor) == 2 {
			opts.Icon.AnchorX, opts.Icon.AnchorY = iconAnchor[0], iconAnchor[1]
		}
	}
	if opts.ShadowIcon != nil && len(shadowSize) == 2 {
		opts.ShadowIcon.Width, opts.ShadowIcon.Height = shadowSize[0], shadowSize[1]
	}
	return opts
}

func ensureIcon(i *Icon, url string) *Icon {
	if i == nil {
		i = &Icon{}
	}
	i.URL = url
	return i
}

// PolylineStyle holds stroke and fill settings.
type PolylineStyle struct {
	Color     string  `json:"color,omitempty"`
	Width     int     `json:"width,omitempty"`
	Opacity   float64 `json:"opacity,omitempty"`
	FillColor string  `json:"fill_color,omitempty"`
}

// Polyline is an ordered path. When Closed it is drawn as a polygon.
type Polyline struct {
	ID         string        `json:"id"`
	Points     []GeoPoint    `json:"points"`
	Closed     bool          `json:"closed"`
	Style      PolylineStyle `json:"style"`
	Attributes Attributes    `json:"attributes,omitempty"`
	Visible    bool          `json:"visible"`
	overlayHandles
}

// NewPolyline creates a visible polyline with a fresh ID. The points slice is
// copied.
func NewPolyline(points []GeoPoint, closed bool, style PolylineStyle) *Polyline {
	pts := make([]GeoPoint, len(points))
	copy(pts, points)
	return &Polyline{
		ID:         uuid.NewString(),
		Points:     pts,
		Closed:     closed,
		Style:      style,
		Attributes: make(Attributes),
		Visible:    true,
	}
}

// ApplyData maps a loosely typed option object onto the polyline.
func (p *Polyline) ApplyData(data map[string]any) {
	for k, v := range data {
		switch k {
		case "color":
			p.Style.Color = cast.ToString(v)
		case "width":
			p.Style.Width = cast.ToInt(v)
		case "opacity":
			p.Style.Opacity = cast.ToFloat64(v)
		case "fillColor":
			p.Style.FillColor = cast.ToString(v)
		case "closed":
			p.Closed = cast.ToBool(v)
		default:
			p.SetAttribute(k, v)
		}
	}
}

// SetAttribute stores a filterable value on the polyline.
func (p *Polyline) SetAttribute(key string, value any) {
	if p.Attributes == nil {
		p.Attributes = make(Attributes)
	}
	p.Attributes[key] = value
}

// Attribute returns the named value and whether it was set.
func (p *Polyline) Attribute(key string) (any, bool) {
	v, ok := p.Attributes[key]
	return v, ok
}

// Bounds returns the box covering every vertex.
func (p *Polyline) Bounds() BoundingBox {
	return BoundingBoxFromPoints(p.Points...)
}

// Simplify drops intermediate vertices closer than toleranceKm to the last
// kept vertex. The first and last vertices are always kept.
func (p *Polyline) Simplify(toleranceKm float64) {
	if len(p.Points) < 3 {
		return
	}
	reduced := []GeoPoint{p.Points[0]}
	for _, pt := range p.Points[1 : len(p.Points)-1] {
		if pt.Distance(reduced[len(reduced)-1]) >= toleranceKm {
			reduced = append(reduced, pt)
		}
	}
	p.Points = append(reduced, p.Points[len(p.Points)-1])
}
