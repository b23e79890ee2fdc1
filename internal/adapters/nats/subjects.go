package natsadapter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/ports"
)

// Subject layout:
//
//	mapbridge.<session>.<provider>.cmd        native commands to the host
//	mapbridge.<session>.<provider>.<kind>     host notifications (ready, click, moveend)
//	mapbridge.<session>.events.<kind>         map events for subscribers
const subjectRoot = "mapbridge"

// HostKinds are the notifications a host may send.
var HostKinds = []string{"ready", "click", "moveend"}

var tokenReplacer = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_")

// token makes s safe to use as one subject token.
func token(s string) string {
	if s == "" {
		return "_"
	}
	return tokenReplacer.Replace(s)
}

func CommandSubject(session string, provider domain.ProviderID) string {
	return fmt.Sprintf("%s.%s.%s.cmd", subjectRoot, token(session), token(string(provider)))
}

func HostSubject(session string, provider domain.ProviderID, kind string) string {
	return fmt.Sprintf("%s.%s.%s.%s", subjectRoot, token(session), token(string(provider)), kind)
}

func EventSubject(session string, kind domain.EventKind) string {
	return fmt.Sprintf("%s.%s.events.%s", subjectRoot, token(session), kind)
}

// SessionEventsSubject matches every event of one session.
func SessionEventsSubject(session string) string {
	return fmt.Sprintf("%s.%s.events.>", subjectRoot, token(session))
}

type hostPayload struct {
	Lat        *float64            `json:"lat,omitempty"`
	Lon        *float64            `json:"lon,omitempty"`
	Native     *domain.NativePoint `json:"native,omitempty"`
	NativeZoom *float64            `json:"native_zoom,omitempty"`
}

// DecodeHost parses a host notification from its subject and body. The body
// may be empty for ready and moveend.
func DecodeHost(subject string, data []byte) (ports.HostNotification, error) {
	parts := strings.Split(subject, ".")
	if len(parts) != 4 || parts[0] != subjectRoot {
		return ports.HostNotification{}, fmt.Errorf("decode host subject %q: unexpected layout", subject)
	}
	n := ports.HostNotification{
		Session:  parts[1],
		Provider: domain.ProviderID(parts[2]),
		Kind:     parts[3],
	}
	switch n.Kind {
	case "ready", "click", "moveend":
	default:
		return ports.HostNotification{}, fmt.Errorf("decode host subject %q: unknown kind %q", subject, n.Kind)
	}
	if len(data) == 0 {
		return n, nil
	}

	var p hostPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return ports.HostNotification{}, fmt.Errorf("decode host payload: %w", err)
	}
	if p.Lat != nil && p.Lon != nil {
		loc, err := domain.NewGeoPoint(*p.Lat, *p.Lon)
		if err != nil {
			return ports.HostNotification{}, fmt.Errorf("decode host payload: %w", err)
		}
		n.Location = &loc
	}
	n.Native, n.NativeZoom = p.Native, p.NativeZoom
	return n, nil
}
