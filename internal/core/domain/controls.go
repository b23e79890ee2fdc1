package domain

// ZoomControl sizes of the zoom widget.
const (
	ZoomControlNone  = ""
	ZoomControlSmall = "small"
	ZoomControlLarge = "large"
)

// Controls is the set of map widgets requested by the caller. It is re-applied
// after a provider swap.
type Controls struct {
	Pan      bool   `json:"pan"`
	Zoom     string `json:"zoom,omitempty"`
	Overview bool   `json:"overview"`
	Scale    bool   `json:"scale"`
	MapType  bool   `json:"map_type"`
}

// Any reports whether at least one control is requested.
func (c Controls) Any() bool {
	return c.Pan || c.Zoom != ZoomControlNone || c.Overview || c.Scale || c.MapType
}
