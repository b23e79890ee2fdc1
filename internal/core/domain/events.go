package domain

// EventKind is a map-level event name.
type EventKind string

const (
	EventClick   EventKind = "click"
	EventMoveEnd EventKind = "moveend"
)

// Event is the structured payload delivered to modern listeners.
type Event struct {
	Kind     EventKind  `json:"kind"`
	Location *GeoPoint  `json:"location,omitempty"`
	Source   ProviderID `json:"source"`
	Receiver any        `json:"-"`
}
