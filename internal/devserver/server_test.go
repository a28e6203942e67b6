package devserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/canopy/internal/demo"
	"github.com/vango-dev/canopy/internal/errors"
	"github.com/vango-dev/canopy/pkg/dom"
	"github.com/vango-dev/canopy/pkg/dom/memdom"
	"github.com/vango-dev/canopy/pkg/render"
	"github.com/vango-dev/canopy/pkg/snapshot"
	"github.com/vango-dev/canopy/pkg/telemetry"
	"github.com/vango-dev/canopy/pkg/vdom"
)

// counterApp renders a button that counts its clicks and an input that
// echoes what is typed.
func counterApp() App {
	count := 0
	name := ""
	return RootFunc(func() *vdom.VNode {
		return vdom.Div(
			vdom.Button(vdom.ID("inc"), vdom.OnClick(func() { count++ }), vdom.Textf("%d", count)),
			vdom.Input(vdom.ID("name"), vdom.Value(name), vdom.OnInput(func(e dom.Event) {
				name = e.Target.Property("value").(string)
			})),
			vdom.P(vdom.Class("greeting-"+strconv.Itoa(len(name)))),
		)
	})
}

func newTestServer(t *testing.T, configure ...func(*Options)) (*Server, *httptest.Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(telemetry.WithRegistry(reg))
	opts := Options{
		NewApp:   counterApp,
		Gatherer: reg,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Observer: func(string) render.Observer { return metrics },
	}
	for _, fn := range configure {
		fn(&opts)
	}
	s := New(opts)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return s, ts, reg
}

var (
	cidPattern   = regexp.MustCompile(`<button data-cid="(\d+)"`)
	inputPattern = regexp.MustCompile(`<input data-cid="(\d+)"`)
)

func openPage(t *testing.T, ts *httptest.Server) (session string, buttonID int, body string) {
	t.Helper()
	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	body = string(data)
	session = resp.Header.Get(SessionHeader)
	if session == "" {
		t.Fatal("page response has no session header")
	}
	m := cidPattern.FindStringSubmatch(body)
	if m == nil {
		t.Fatalf("no annotated button in page:\n%s", body)
	}
	buttonID, _ = strconv.Atoi(m[1])
	return session, buttonID, body
}

func dial(t *testing.T, ts *httptest.Server, session string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=" + session
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

func TestPageRendersApp(t *testing.T) {
	s, ts, _ := newTestServer(t)
	_, _, body := openPage(t, ts)

	if !strings.Contains(body, `id="inc">0</button>`) {
		t.Errorf("page does not contain the rendered button:\n%s", body)
	}
	if !strings.Contains(body, "new WebSocket") {
		t.Error("page has no client script")
	}
	if s.Sessions() != 1 {
		t.Errorf("Sessions() = %d, want 1", s.Sessions())
	}
}

func TestAppRenderOptions(t *testing.T) {
	s := New(Options{
		NewApp: func() App { return demo.New() },
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	_, _, body := openPage(t, ts)

	// The footer is only reachable through the app's registry.
	if !strings.Contains(body, "Rendered by canopy</small>") {
		t.Errorf("registered footer missing from page:\n%s", body)
	}
}

func TestClickStreamsPatch(t *testing.T) {
	_, ts, reg := newTestServer(t)
	session, button, _ := openPage(t, ts)
	conn := dial(t, ts, session)

	if err := conn.WriteJSON(Event{Type: "click", Target: button}); err != nil {
		t.Fatal(err)
	}
	msg := readMessage(t, conn)
	if msg.Type != MessagePatch {
		t.Fatalf("message type = %q, want %q", msg.Type, MessagePatch)
	}
	var text bool
	for _, m := range msg.Mutations {
		if m.Kind == memdom.MutationText && m.Value == "1" {
			text = true
		}
	}
	if !text {
		t.Errorf("mutations = %+v, want a text mutation to 1", msg.Mutations)
	}
	if !strings.Contains(msg.HTML, ">1</button>") {
		t.Errorf("structural patch HTML = %q", msg.HTML)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	var drains bool
	for _, f := range families {
		if f.GetName() == "canopy_drains_total" {
			drains = true
		}
	}
	if !drains {
		t.Error("session drains were not recorded")
	}
}

func TestInputStreamsAttributePatch(t *testing.T) {
	_, ts, _ := newTestServer(t)
	session, _, body := openPage(t, ts)
	conn := dial(t, ts, session)

	m := inputPattern.FindStringSubmatch(body)
	if m == nil {
		t.Fatalf("no annotated input in page:\n%s", body)
	}
	input, _ := strconv.Atoi(m[1])

	if err := conn.WriteJSON(Event{Type: "input", Target: input, Value: "ada"}); err != nil {
		t.Fatal(err)
	}
	msg := readMessage(t, conn)
	if msg.HTML != "" {
		t.Errorf("attribute-only patch carried HTML: %q", msg.HTML)
	}
	var class bool
	for _, m := range msg.Mutations {
		if m.Kind == memdom.MutationAttr && m.Name == "class" && m.Value == "greeting-3" {
			class = true
		}
	}
	if !class {
		t.Errorf("mutations = %+v, want class greeting-3", msg.Mutations)
	}
}

func TestTreeEndpoint(t *testing.T) {
	_, ts, _ := newTestServer(t)
	session, _, _ := openPage(t, ts)

	resp, err := http.Get(ts.URL + "/sessions/" + session + "/tree")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var tree []snapshot.Node
	if err := json.NewDecoder(resp.Body).Decode(&tree); err != nil {
		t.Fatal(err)
	}
	if len(tree) != 1 || tree[0].Name != "Root" || tree[0].Children[0].Name != "div" {
		t.Errorf("tree = %+v", tree)
	}
}

func TestUnknownSession(t *testing.T) {
	_, ts, _ := newTestServer(t)

	for _, path := range []string{"/ws?session=nope", "/sessions/nope/tree"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", path, resp.StatusCode)
		}
		if !strings.Contains(string(body), errors.ErrDevSession) {
			t.Errorf("%s body = %s, want %s", path, body, errors.ErrDevSession)
		}
	}
}

func TestSessionEndsWithClient(t *testing.T) {
	s, ts, _ := newTestServer(t)
	session, _, _ := openPage(t, ts)
	conn := dial(t, ts, session)
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for s.Sessions() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("Sessions() = %d after the client left", s.Sessions())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestUnattachedSessionsExpire(t *testing.T) {
	const timeout = 200 * time.Millisecond
	s, ts, _ := newTestServer(t, func(o *Options) { o.AttachTimeout = timeout })
	for range 5 {
		openPage(t, ts)
	}
	session, _, _ := openPage(t, ts)
	dial(t, ts, session)

	deadline := time.Now().Add(5 * time.Second)
	for s.Sessions() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("Sessions() = %d, want only the attached one", s.Sessions())
		}
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(2 * timeout)
	if _, ok := s.session(session); !ok {
		t.Error("attached session expired")
	}
}

func TestMetricsAndHealth(t *testing.T) {
	_, ts, _ := newTestServer(t)
	openPage(t, ts)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "canopy_drains_total") {
		t.Errorf("/metrics does not expose drain metrics:\n%s", body)
	}

	resp, err = http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/healthz status = %d", resp.StatusCode)
	}
}
