package natsadapter_test

import (
	"testing"

	natsadapter "github.com/samirrijal/mapbridge/internal/adapters/nats"
	"github.com/samirrijal/mapbridge/internal/adapters/providers"
	"github.com/samirrijal/mapbridge/internal/core/domain"
)

func TestSubjects(t *testing.T) {
	if got := natsadapter.CommandSubject("s1", providers.ProviderGoogle); got != "mapbridge.s1.google.cmd" {
		t.Errorf("CommandSubject = %q", got)
	}
	if got := natsadapter.EventSubject("s1", domain.EventMoveEnd); got != "mapbridge.s1.events.moveend" {
		t.Errorf("EventSubject = %q", got)
	}
	if got := natsadapter.SessionEventsSubject("a.b"); got != "mapbridge.a_b.events.>" {
		t.Errorf("SessionEventsSubject = %q", got)
	}
	if got := natsadapter.HostSubject("s*1", providers.ProviderYahoo, "ready"); got != "mapbridge.s_1.yahoo.ready" {
		t.Errorf("HostSubject = %q", got)
	}
}

func TestDecodeHost_Click(t *testing.T) {
	n, err := natsadapter.DecodeHost("mapbridge.s1.google.click", []byte(`{"lat":43.26,"lon":-2.93}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Session != "s1" || n.Provider != providers.ProviderGoogle || n.Kind != "click" {
		t.Errorf("unexpected routing %+v", n)
	}
	if n.Location == nil || n.Location.Lat != 43.26 || n.Location.Lon != -2.93 {
		t.Errorf("unexpected location %+v", n.Location)
	}
}

func TestDecodeHost_MoveEndNative(t *testing.T) {
	n, err := natsadapter.DecodeHost("mapbridge.s1.yahoo.moveend", []byte(`{"native":{"x":1,"y":2},"native_zoom":6}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Native == nil || n.Native.X != 1 || n.Native.Y != 2 {
		t.Errorf("unexpected native point %+v", n.Native)
	}
	if n.NativeZoom == nil || *n.NativeZoom != 6 {
		t.Errorf("unexpected native zoom %v", n.NativeZoom)
	}
	if n.Location != nil {
		t.Errorf("expected no location, got %+v", n.Location)
	}
}

func TestDecodeHost_EmptyBody(t *testing.T) {
	n, err := natsadapter.DecodeHost("mapbridge.s1.openlayers.ready", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Kind != "ready" {
		t.Errorf("expected ready, got %q", n.Kind)
	}
}

func TestDecodeHost_Rejects(t *testing.T) {
	cases := []struct {
		subject string
		body    string
	}{
		{"mapbridge.s1.google.cmd", ""},
		{"mapbridge.s1.ready", ""},
		{"other.s1.google.click", ""},
		{"mapbridge.s1.google.click", `{"lat":91,"lon":0}`},
		{"mapbridge.s1.google.click", `not json`},
	}
	for _, c := range cases {
		if _, err := natsadapter.DecodeHost(c.subject, []byte(c.body)); err == nil {
			t.Errorf("DecodeHost(%q, %q): expected error", c.subject, c.body)
		}
	}
}
