package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/mapbridge/internal/adapters/http"
	"github.com/samirrijal/mapbridge/internal/adapters/providers"
	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/ports"
	"github.com/samirrijal/mapbridge/internal/core/usecases"
)

// ---- Test doubles ----

type recordingSink struct {
	mu   sync.Mutex
	cmds []ports.Command
}

func (s *recordingSink) SendCommand(ctx context.Context, cmd ports.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cmds = append(s.cmds, cmd)
	return nil
}

func (s *recordingSink) ops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.cmds))
	for i, c := range s.cmds {
		out[i] = c.Op
	}
	return out
}

func (s *recordingSink) count(op string) int {
	n := 0
	for _, o := range s.ops() {
		if o == op {
			n++
		}
	}
	return n
}

// ---- Setup ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(keys map[string]string) (*handler.Dependencies, *recordingSink) {
	sink := &recordingSink{}
	reg := providers.NewRegistry(keys, sink)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mgr := usecases.NewManager(reg, nil, usecases.ManagerConfig{
		DefaultProvider: providers.ProviderOpenLayers,
		Viewport:        usecases.Viewport{Width: 800, Height: 600},
	}, logger)
	return &handler.Dependencies{Sessions: mgr, Registry: reg}, sink
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data
}

// createReady creates session id on openlayers and reports the host ready.
func createReady(t *testing.T, app *fiber.App, id string) {
	t.Helper()
	if code, body := do(t, app, "POST", "/v1/sessions", `{"id":"`+id+`"}`); code != 201 {
		t.Fatalf("create: expected 201, got %d: %s", code, body)
	}
	if code, body := do(t, app, "POST", "/v1/sessions/"+id+"/providers/openlayers/ready", ""); code != 204 {
		t.Fatalf("ready: expected 204, got %d: %s", code, body)
	}
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var apiErr handler.APIError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		t.Fatalf("not an API error: %s", body)
	}
	return apiErr.Code
}

// ---- Sessions ----

func TestCreateSession_Defaults(t *testing.T) {
	deps, sink := makeDeps(nil)
	app := setupApp(deps)

	code, body := do(t, app, "POST", "/v1/sessions", `{"id":"s1","element":"map"}`)
	if code != 201 {
		t.Fatalf("expected 201, got %d: %s", code, body)
	}
	var info usecases.SessionInfo
	json.Unmarshal(body, &info)
	if info.ID != "s1" || info.Provider != providers.ProviderOpenLayers {
		t.Errorf("unexpected session %+v", info)
	}
	if info.Loaded {
		t.Error("session should not be loaded before the host reports ready")
	}
	if info.Viewport.Width != 800 || info.Viewport.Height != 600 {
		t.Errorf("expected default viewport, got %+v", info.Viewport)
	}
	if ops := sink.ops(); len(ops) != 1 || ops[0] != "init" {
		t.Errorf("expected a single init command, got %v", ops)
	}
}

func TestCreateSession_Rejects(t *testing.T) {
	deps, _ := makeDeps(nil)
	app := setupApp(deps)
	do(t, app, "POST", "/v1/sessions", `{"id":"s1"}`)

	cases := []struct {
		body string
		code int
		err  string
	}{
		{`{"id":"a.b"}`, 400, "bad_request"},
		{`{"id":"s1"}`, 409, "conflict"},
		{`{"id":"s2","provider":"google"}`, 503, "provider_unavailable"},
		{`{"id":"s3","provider":"bing"}`, 400, "bad_request"},
	}
	for _, c := range cases {
		code, body := do(t, app, "POST", "/v1/sessions", c.body)
		if code != c.code {
			t.Errorf("%s: expected %d, got %d: %s", c.body, c.code, code, body)
			continue
		}
		if got := errorCode(t, body); got != c.err {
			t.Errorf("%s: expected code %s, got %s", c.body, c.err, got)
		}
	}

	// failed creations are not kept
	if code, _ := do(t, app, "GET", "/v1/sessions/s2", ""); code != 404 {
		t.Errorf("expected 404 for failed session, got %d", code)
	}
}

func TestSession_NotFound(t *testing.T) {
	deps, _ := makeDeps(nil)
	app := setupApp(deps)

	for _, path := range []string{"/v1/sessions/nope", "/v1/sessions/nope/view", "/v1/sessions/nope/markers"} {
		if code, _ := do(t, app, "GET", path, ""); code != 404 {
			t.Errorf("GET %s: expected 404, got %d", path, code)
		}
	}
	if code, _ := do(t, app, "DELETE", "/v1/sessions/nope", ""); code != 404 {
		t.Errorf("DELETE: expected 404, got %d", code)
	}
}

func TestDeleteSession(t *testing.T) {
	deps, _ := makeDeps(nil)
	app := setupApp(deps)
	createReady(t, app, "s1")

	if code, _ := do(t, app, "DELETE", "/v1/sessions/s1", ""); code != 204 {
		t.Fatalf("expected 204, got %d", code)
	}
	if code, _ := do(t, app, "GET", "/v1/sessions/s1", ""); code != 404 {
		t.Errorf("expected 404 after delete, got %d", code)
	}
}

// ---- Deferred dispatch through the host callbacks ----

func TestMarkers_QueuedUntilReady(t *testing.T) {
	deps, sink := makeDeps(nil)
	app := setupApp(deps)
	do(t, app, "POST", "/v1/sessions", `{"id":"s1"}`)

	code, body := do(t, app, "POST", "/v1/sessions/s1/markers", `{"lat":43.26,"lon":-2.93,"data":{"label":"Bilbao","score":5}}`)
	if code != 201 {
		t.Fatalf("expected 201, got %d: %s", code, body)
	}
	var m struct {
		ID         string            `json:"id"`
		Options    map[string]any    `json:"options"`
		Attributes map[string]any    `json:"attributes"`
		RenderedOn []string          `json:"rendered_on"`
		Location   map[string]float64 `json:"location"`
	}
	json.Unmarshal(body, &m)
	if m.Options["label"] != "Bilbao" || m.Attributes["score"] != float64(5) {
		t.Errorf("options not mapped: %+v", m)
	}
	if len(m.RenderedOn) != 0 {
		t.Errorf("marker should not be drawn before ready, got %v", m.RenderedOn)
	}
	if sink.count("addMarker") != 0 {
		t.Fatalf("addMarker sent before ready: %v", sink.ops())
	}

	if code, _ := do(t, app, "POST", "/v1/sessions/s1/providers/openlayers/ready", ""); code != 204 {
		t.Fatalf("ready: expected 204, got %d", code)
	}
	if sink.count("addMarker") != 1 {
		t.Errorf("expected the queued add to replay once, got %v", sink.ops())
	}

	_, body = do(t, app, "GET", "/v1/sessions/s1/markers/"+m.ID, "")
	json.Unmarshal(body, &m)
	if len(m.RenderedOn) != 1 || m.RenderedOn[0] != "openlayers" {
		t.Errorf("expected marker drawn on openlayers, got %v", m.RenderedOn)
	}

	// a second ready is a no-op
	do(t, app, "POST", "/v1/sessions/s1/providers/openlayers/ready", "")
	if sink.count("addMarker") != 1 {
		t.Errorf("ready replayed twice: %v", sink.ops())
	}
}

func TestMarkers_InvalidAndRemove(t *testing.T) {
	deps, sink := makeDeps(nil)
	app := setupApp(deps)
	createReady(t, app, "s1")

	if code, _ := do(t, app, "POST", "/v1/sessions/s1/markers", `{"lat":95,"lon":0}`); code != 400 {
		t.Errorf("expected 400 for lat 95, got %d", code)
	}
	if code, _ := do(t, app, "POST", "/v1/sessions/s1/markers", `{"lon":0}`); code != 400 {
		t.Errorf("expected 400 for missing lat, got %d", code)
	}

	_, body := do(t, app, "POST", "/v1/sessions/s1/markers", `{"lat":1,"lon":1}`)
	var m struct {
		ID string `json:"id"`
	}
	json.Unmarshal(body, &m)

	if code, _ := do(t, app, "DELETE", "/v1/sessions/s1/markers/"+m.ID, ""); code != 204 {
		t.Fatalf("expected 204, got %d", code)
	}
	if sink.count("removeOverlay") != 1 {
		t.Errorf("expected a native removal, got %v", sink.ops())
	}
	if code, _ := do(t, app, "DELETE", "/v1/sessions/s1/markers/"+m.ID, ""); code != 404 {
		t.Errorf("expected 404 on second removal, got %d", code)
	}
}

func TestListMarkers_Pagination(t *testing.T) {
	deps, _ := makeDeps(nil)
	app := setupApp(deps)
	createReady(t, app, "s1")
	for i := 0; i < 5; i++ {
		do(t, app, "POST", "/v1/sessions/s1/markers", `{"lat":1,"lon":1}`)
	}

	req := httptest.NewRequest("GET", "/v1/sessions/s1/markers?offset=2&limit=2", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Data       []json.RawMessage  `json:"data"`
		Pagination handler.Pagination `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Data) != 2 || result.Pagination.Total != 5 || result.Pagination.Offset != 2 {
		t.Errorf("unexpected page %+v (%d items)", result.Pagination, len(result.Data))
	}
	link := resp.Header.Get("Link")
	if !strings.Contains(link, `rel="next"`) || !strings.Contains(link, `rel="prev"`) {
		t.Errorf("expected next and prev links, got %q", link)
	}
}

// ---- View & fitting ----

func TestView_SetAndGet(t *testing.T) {
	deps, _ := makeDeps(nil)
	app := setupApp(deps)
	createReady(t, app, "s1")

	code, body := do(t, app, "PUT", "/v1/sessions/s1/view", `{"center":{"lat":43.26,"lon":-2.93},"zoom":12}`)
	if code != 200 {
		t.Fatalf("expected 200, got %d: %s", code, body)
	}
	var v struct {
		Center domain.GeoPoint `json:"center"`
		Zoom   int             `json:"zoom"`
		Ratio  float64         `json:"pixels_per_km"`
	}
	json.Unmarshal(body, &v)
	if v.Zoom != 12 {
		t.Errorf("expected zoom 12, got %d", v.Zoom)
	}
	if math.Abs(v.Center.Lat-43.26) > 1e-6 || math.Abs(v.Center.Lon+2.93) > 1e-6 {
		t.Errorf("centre did not round-trip: %+v", v.Center)
	}
	if v.Ratio <= 0 {
		t.Errorf("expected a positive pixel ratio, got %v", v.Ratio)
	}

	if code, _ := do(t, app, "PUT", "/v1/sessions/s1/view", `{}`); code != 400 {
		t.Errorf("expected 400 for empty view, got %d", code)
	}
}

func TestFit_AutoCenterAndZoom(t *testing.T) {
	deps, _ := makeDeps(nil)
	app := setupApp(deps)
	createReady(t, app, "s1")
	do(t, app, "POST", "/v1/sessions/s1/markers", `{"lat":0,"lon":0}`)
	do(t, app, "POST", "/v1/sessions/s1/markers", `{"lat":10,"lon":10}`)

	code, body := do(t, app, "POST", "/v1/sessions/s1/fit", "")
	if code != 200 {
		t.Fatalf("expected 200, got %d: %s", code, body)
	}
	var fit usecases.Fit
	json.Unmarshal(body, &fit)
	if fit.Zoom != 6 {
		t.Errorf("expected zoom 6, got %d", fit.Zoom)
	}
	if math.Abs(fit.Center.Lat-5) > 1e-9 || math.Abs(fit.Center.Lon-5) > 1e-9 {
		t.Errorf("expected centre (5,5), got %+v", fit.Center)
	}
}

func TestFit_EmptyAndUnknownTarget(t *testing.T) {
	deps, _ := makeDeps(nil)
	app := setupApp(deps)
	createReady(t, app, "s1")

	if code, _ := do(t, app, "POST", "/v1/sessions/s1/fit", ""); code != 400 {
		t.Errorf("expected 400 with no entities, got %d", code)
	}
	if code, _ := do(t, app, "POST", "/v1/sessions/s1/fit", `{"target":"everything"}`); code != 400 {
		t.Errorf("expected 400 for unknown target, got %d", code)
	}
}

// ---- Filters ----

func TestFilters_Apply(t *testing.T) {
	deps, sink := makeDeps(nil)
	app := setupApp(deps)
	createReady(t, app, "s1")
	for _, score := range []string{"1", "5", "10"} {
		do(t, app, "POST", "/v1/sessions/s1/markers", `{"lat":1,"lon":1,"data":{"score":`+score+`}}`)
	}

	if code, body := do(t, app, "POST", "/v1/sessions/s1/filters", `{"field":"score","op":">=","value":5}`); code != 201 {
		t.Fatalf("expected 201, got %d: %s", code, body)
	}
	code, body := do(t, app, "POST", "/v1/sessions/s1/filters/apply", "")
	if code != 200 {
		t.Fatalf("expected 200, got %d: %s", code, body)
	}
	var res struct {
		Visible int    `json:"visible"`
		Warning string `json:"warning"`
	}
	json.Unmarshal(body, &res)
	if res.Visible != 2 {
		t.Errorf("expected 2 visible, got %d", res.Visible)
	}
	if res.Warning != "" {
		t.Errorf("openlayers toggles overlays natively, got warning %q", res.Warning)
	}
	if sink.count("hideOverlay") != 1 {
		t.Errorf("expected one native hide, got %v", sink.ops())
	}

	_, body = do(t, app, "GET", "/v1/sessions/s1/extremes?field=score", "")
	var ext struct{ Min, Max float64 }
	json.Unmarshal(body, &ext)
	if ext.Min != 1 || ext.Max != 10 {
		t.Errorf("expected extremes 1..10, got %+v", ext)
	}

	_, body = do(t, app, "DELETE", "/v1/sessions/s1/filters?field=score", "")
	if !strings.Contains(string(body), `"removed":1`) {
		t.Errorf("expected one filter removed, got %s", body)
	}
}

func TestFilters_InvalidOperator(t *testing.T) {
	deps, _ := makeDeps(nil)
	app := setupApp(deps)
	createReady(t, app, "s1")

	code, body := do(t, app, "POST", "/v1/sessions/s1/filters", `{"field":"score","op":"like","value":5}`)
	if code != 400 {
		t.Fatalf("expected 400, got %d", code)
	}
	if got := errorCode(t, body); got != "bad_request" {
		t.Errorf("expected bad_request, got %s", got)
	}
}

// ---- Capabilities ----

func TestMapType_Unsupported(t *testing.T) {
	deps, _ := makeDeps(nil)
	app := setupApp(deps)
	createReady(t, app, "s1")

	code, body := do(t, app, "PUT", "/v1/sessions/s1/map-type", `{"type":"satellite"}`)
	if code != 501 {
		t.Fatalf("expected 501, got %d: %s", code, body)
	}
	if got := errorCode(t, body); got != "unsupported" {
		t.Errorf("expected unsupported, got %s", got)
	}
	if code, _ := do(t, app, "PUT", "/v1/sessions/s1/map-type", `{"type":"terrain"}`); code != 400 {
		t.Errorf("expected 400 for unknown type, got %d", code)
	}
}

func TestSwapProvider_ReplaysEntities(t *testing.T) {
	deps, sink := makeDeps(map[string]string{"yahoo": "k"})
	app := setupApp(deps)
	createReady(t, app, "s1")
	do(t, app, "POST", "/v1/sessions/s1/markers", `{"lat":1,"lon":1}`)
	do(t, app, "PUT", "/v1/sessions/s1/view", `{"center":{"lat":1,"lon":1},"zoom":10}`)

	code, body := do(t, app, "PUT", "/v1/sessions/s1/provider", `{"provider":"yahoo"}`)
	if code != 200 {
		t.Fatalf("expected 200, got %d: %s", code, body)
	}
	var info usecases.SessionInfo
	json.Unmarshal(body, &info)
	if info.Provider != providers.ProviderYahoo || info.Loaded {
		t.Errorf("expected yahoo loading, got %+v", info)
	}

	before := sink.count("addMarker")
	do(t, app, "POST", "/v1/sessions/s1/providers/yahoo/ready", "")
	if sink.count("addMarker") != before+1 {
		t.Errorf("expected the marker replayed on yahoo, got %v", sink.ops())
	}

	_, body = do(t, app, "GET", "/v1/sessions/s1/view", "")
	var v struct {
		Zoom int `json:"zoom"`
	}
	json.Unmarshal(body, &v)
	if v.Zoom != 10 {
		t.Errorf("expected the view carried over at zoom 10, got %d", v.Zoom)
	}

	code, body = do(t, app, "PUT", "/v1/sessions/s1/provider", `{"provider":"google"}`)
	if code != 503 {
		t.Fatalf("expected 503 for keyless google, got %d: %s", code, body)
	}
	_, body = do(t, app, "GET", "/v1/sessions/s1", "")
	json.Unmarshal(body, &info)
	if info.Provider != providers.ProviderYahoo {
		t.Errorf("failed swap changed the active provider to %s", info.Provider)
	}
}

// ---- Host callbacks ----

func TestHostCallback_Rejects(t *testing.T) {
	deps, _ := makeDeps(nil)
	app := setupApp(deps)
	createReady(t, app, "s1")

	cases := []struct {
		path, body string
		code       int
	}{
		{"/v1/sessions/nope/providers/openlayers/ready", "", 404},
		{"/v1/sessions/s1/providers/openlayers/zoom", "", 404},
		{"/v1/sessions/s1/providers/openlayers/click", "", 400},
		{"/v1/sessions/s1/providers/openlayers/click", `{"lat":99,"lon":0}`, 400},
	}
	for _, c := range cases {
		if code, body := do(t, app, "POST", c.path, c.body); code != c.code {
			t.Errorf("POST %s %s: expected %d, got %d: %s", c.path, c.body, c.code, code, body)
		}
	}
	if code, _ := do(t, app, "POST", "/v1/sessions/s1/providers/openlayers/click", `{"lat":1,"lon":2}`); code != 204 {
		t.Errorf("expected 204 for a valid click, got %d", code)
	}
}

func TestHostCallback_MoveEndSyncsView(t *testing.T) {
	deps, _ := makeDeps(nil)
	app := setupApp(deps)
	createReady(t, app, "s1")

	// openlayers speaks spherical Mercator metres; 0,0 at zoom 4
	if code, body := do(t, app, "POST", "/v1/sessions/s1/providers/openlayers/moveend", `{"native":{"x":0,"y":0},"native_zoom":4}`); code != 204 {
		t.Fatalf("expected 204, got %d: %s", code, body)
	}
	_, body := do(t, app, "GET", "/v1/sessions/s1/view", "")
	var v struct {
		Center domain.GeoPoint `json:"center"`
		Zoom   int             `json:"zoom"`
	}
	json.Unmarshal(body, &v)
	if v.Zoom != 4 || math.Abs(v.Center.Lat) > 1e-9 || math.Abs(v.Center.Lon) > 1e-9 {
		t.Errorf("view not synced from host: %+v", v)
	}
}

// ---- Calculators ----

func TestZoomForBounds(t *testing.T) {
	deps, _ := makeDeps(nil)
	app := setupApp(deps)

	code, body := do(t, app, "GET", "/v1/zoom?south=0&west=0&north=10&east=10", "")
	if code != 200 {
		t.Fatalf("expected 200, got %d: %s", code, body)
	}
	var fit usecases.Fit
	json.Unmarshal(body, &fit)
	if fit.Zoom != 6 {
		t.Errorf("expected zoom 6, got %d", fit.Zoom)
	}

	if code, _ := do(t, app, "GET", "/v1/zoom?south=10&west=0&north=0&east=10", ""); code != 400 {
		t.Errorf("expected 400 for inverted box, got %d", code)
	}
	if code, _ := do(t, app, "GET", "/v1/zoom?south=0&west=0", ""); code != 400 {
		t.Errorf("expected 400 for missing corner, got %d", code)
	}
}

func TestProject(t *testing.T) {
	deps, _ := makeDeps(nil)
	app := setupApp(deps)

	code, body := do(t, app, "GET", "/v1/project?provider=yahoo&lat=0&lon=0&zoom=12", "")
	if code != 200 {
		t.Fatalf("expected 200, got %d: %s", code, body)
	}
	var res struct {
		NativeZoom float64 `json:"native_zoom"`
	}
	json.Unmarshal(body, &res)
	if res.NativeZoom != 6 {
		t.Errorf("expected yahoo native zoom 6, got %v", res.NativeZoom)
	}

	code, body = do(t, app, "GET", "/v1/project?provider=openlayers&lat=89&lon=0", "")
	if code != 400 {
		t.Errorf("expected 400 beyond the Mercator limit, got %d: %s", code, body)
	}
	if code, _ := do(t, app, "GET", "/v1/project?provider=bing&lat=0&lon=0", ""); code != 400 {
		t.Errorf("expected 400 for unknown provider, got %d", code)
	}
}

func TestDistance_LondonParis(t *testing.T) {
	deps, _ := makeDeps(nil)
	app := setupApp(deps)

	code, body := do(t, app, "GET", "/v1/distance?from_lat=51.5074&from_lon=-0.1278&to_lat=48.8566&to_lon=2.3522", "")
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	var res struct{ KM, Miles float64 }
	json.Unmarshal(body, &res)
	if res.KM < 343 || res.KM > 344 {
		t.Errorf("expected ~343.5 km, got %v", res.KM)
	}
}

// ---- Misc ----

func TestGraphQL_Session(t *testing.T) {
	deps, _ := makeDeps(nil)
	app := setupApp(deps)
	createReady(t, app, "s1")
	do(t, app, "POST", "/v1/sessions/s1/markers", `{"lat":1,"lon":2,"data":{"label":"here"}}`)

	q := `{"query":"{ session(id: \"s1\") { id provider loaded markers { label location { lat lon } } } }"}`
	code, body := do(t, app, "POST", "/graphql", q)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	var res struct {
		Data struct {
			Session struct {
				ID       string `json:"id"`
				Provider string `json:"provider"`
				Loaded   bool   `json:"loaded"`
				Markers  []struct {
					Label    string          `json:"label"`
					Location domain.GeoPoint `json:"location"`
				} `json:"markers"`
			} `json:"session"`
		} `json:"data"`
		Errors []any `json:"errors"`
	}
	json.Unmarshal(body, &res)
	if len(res.Errors) > 0 {
		t.Fatalf("graphql errors: %v", res.Errors)
	}
	s := res.Data.Session
	if s.ID != "s1" || s.Provider != "openlayers" || !s.Loaded {
		t.Errorf("unexpected session %+v", s)
	}
	if len(s.Markers) != 1 || s.Markers[0].Label != "here" || s.Markers[0].Location.Lon != 2 {
		t.Errorf("unexpected markers %+v", s.Markers)
	}
}

func TestHealthAndReady(t *testing.T) {
	deps, _ := makeDeps(nil)
	app := setupApp(deps)

	if code, _ := do(t, app, "GET", "/v1/health", ""); code != 200 {
		t.Errorf("health: expected 200, got %d", code)
	}
	code, body := do(t, app, "GET", "/v1/ready", "")
	if code != 200 {
		t.Errorf("ready: expected 200, got %d: %s", code, body)
	}
}

func TestETag_NotModified(t *testing.T) {
	deps, _ := makeDeps(nil)
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/providers", nil), -1)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected an ETag")
	}
	req := httptest.NewRequest("GET", "/v1/providers", nil)
	req.Header.Set("If-None-Match", etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}
