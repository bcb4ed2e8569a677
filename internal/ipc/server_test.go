package ipc

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/1broseidon/winsnap/internal/config"
	"github.com/1broseidon/winsnap/internal/dispatch"
	"github.com/1broseidon/winsnap/internal/geom"
	"github.com/1broseidon/winsnap/internal/layout"
	"github.com/1broseidon/winsnap/internal/platform"
)

type fakePlacer struct {
	mu      sync.Mutex
	placed  []layout.ID
	err     error
	applied int64
}

func (p *fakePlacer) Place(id layout.ID) (dispatch.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.placed = append(p.placed, id)
	if p.err != nil {
		return dispatch.Result{}, p.err
	}
	p.applied++
	return dispatch.Result{
		Outcome:   dispatch.OutcomeApplied,
		Layout:    id,
		WindowID:  42,
		DisplayID: 1,
		Bounds:    geom.Rect{X: 1125, Y: 100, Width: 750, Height: 600},
	}, nil
}

func (p *fakePlacer) Applied() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.applied
}

// panickingPlacer fails loudly on every placement.
type panickingPlacer struct{}

func (panickingPlacer) Place(layout.ID) (dispatch.Result, error) { panic("placer exploded") }
func (panickingPlacer) Applied() int64 { return 0 }

// panickingBackend panics as soon as the dispatcher asks for the focused window.
type panickingBackend struct{}

func (panickingBackend) FocusedWindow() (platform.Window, error) { panic("boom") }
func (panickingBackend) Window(platform.WindowID) (platform.Window, error) {
	return platform.Window{}, nil
}
func (panickingBackend) SetWindowState(platform.WindowID, platform.WindowState) error { return nil }
func (panickingBackend) Displays() ([]platform.Display, error) { return nil, nil }
func (panickingBackend) SetWindowBounds(platform.WindowID, platform.BoundsUpdate) error {
	return nil
}

type fakeDisplays struct {
	displays []platform.Display
	err      error
}

func (d fakeDisplays) Displays() ([]platform.Display, error) {
	return d.displays, d.err
}

// Unix socket paths are length-limited, so avoid the long t.TempDir names.
func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "winsnap")
	if err != nil {
		t.Fatalf("mkdir temp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func startServer(t *testing.T, opts ServerOptions) *Client {
	t.Helper()
	opts.SocketPath = socketPath(t)
	srv, err := NewServer(opts)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return NewClientAt(opts.SocketPath)
}

func testDisplays() fakeDisplays {
	return fakeDisplays{displays: []platform.Display{
		{ID: 0, Name: "DP-1", Primary: true, Bounds: geom.Rect{Width: 1000, Height: 800}, WorkArea: geom.Rect{Y: 30, Width: 1000, Height: 770}},
		{ID: 1, Name: "HDMI-1", Bounds: geom.Rect{X: 1000, Width: 1000, Height: 800}, WorkArea: geom.Rect{X: 1000, Width: 1000, Height: 800}},
	}}
}

func TestServer_PlaceRoundTrip(t *testing.T) {
	placer := &fakePlacer{}
	client := startServer(t, ServerOptions{Placer: placer, Displays: testDisplays()})

	data, err := client.Place("center-window")
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if data.Outcome != "applied" || data.Layout != "center" || data.WindowID != 42 || data.DisplayID != 1 {
		t.Fatalf("unexpected place data: %+v", data)
	}
	if got := data.Bounds.Geom(); got != (geom.Rect{X: 1125, Y: 100, Width: 750, Height: 600}) {
		t.Fatalf("unexpected bounds: %+v", got)
	}
	if len(placer.placed) != 1 || placer.placed[0] != layout.Center {
		t.Fatalf("expected one center placement, got %v", placer.placed)
	}
}

func TestServer_PlaceErrors(t *testing.T) {
	placer := &fakePlacer{err: errors.New("x11 gone")}
	client := startServer(t, ServerOptions{Placer: placer, Displays: testDisplays()})

	tests := []struct {
		layout  string
		wantErr string
	}{
		{layout: "", wantErr: "layout is required"},
		{layout: "left-third", wantErr: "Unknown layout: left-third"},
		{layout: "center", wantErr: "x11 gone"},
	}
	for _, tt := range tests {
		_, err := client.Place(tt.layout)
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Fatalf("Place(%q): expected %q, got %v", tt.layout, tt.wantErr, err)
		}
	}
	if len(placer.placed) != 1 {
		t.Fatalf("expected only the valid layout to reach the placer, got %v", placer.placed)
	}
}

func TestServer_PlaceBackendPanicKeepsDaemon(t *testing.T) {
	client := startServer(t, ServerOptions{
		Placer:   dispatch.New(panickingBackend{}, nil),
		Displays: testDisplays(),
	})

	_, err := client.Place("center")
	if err == nil || !strings.Contains(err.Error(), "placement panicked") {
		t.Fatalf("expected placement panic error, got %v", err)
	}

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus after panic: %v", err)
	}
	if !status.DaemonRunning || status.PlacementsApplied != 0 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestServer_HandlerPanicBecomesError(t *testing.T) {
	client := startServer(t, ServerOptions{Placer: panickingPlacer{}, Displays: testDisplays()})

	_, err := client.Place("center")
	if err == nil || !strings.Contains(err.Error(), "internal error: placer exploded") {
		t.Fatalf("expected internal error, got %v", err)
	}
	if err := client.Ping(); err != nil {
		t.Fatalf("Ping after panic: %v", err)
	}
}

func TestServer_GetDisplays(t *testing.T) {
	client := startServer(t, ServerOptions{Placer: &fakePlacer{}, Displays: testDisplays()})

	data, err := client.GetDisplays()
	if err != nil {
		t.Fatalf("GetDisplays: %v", err)
	}
	if len(data.Displays) != 2 {
		t.Fatalf("expected 2 displays, got %d", len(data.Displays))
	}
	first := data.Displays[0]
	if first.Name != "DP-1" || !first.Primary || first.WorkArea.Y != 30 || first.WorkArea.Height != 770 {
		t.Fatalf("unexpected first display: %+v", first)
	}
}

func TestServer_GetDisplaysError(t *testing.T) {
	client := startServer(t, ServerOptions{Placer: &fakePlacer{}, Displays: fakeDisplays{err: errors.New("randr failed")}})

	if _, err := client.GetDisplays(); err == nil || !strings.Contains(err.Error(), "randr failed") {
		t.Fatalf("expected randr error, got %v", err)
	}
}

func TestServer_ListLayoutsAndStatus(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Keybindings["bottom-right-50"] = ""
	placer := &fakePlacer{}
	client := startServer(t, ServerOptions{Config: cfg, Placer: placer, Displays: testDisplays()})

	layouts, err := client.ListLayouts()
	if err != nil {
		t.Fatalf("ListLayouts: %v", err)
	}
	if len(layouts.Layouts) != len(layout.IDs()) {
		t.Fatalf("expected full catalog, got %+v", layouts.Layouts)
	}
	for _, l := range layouts.Layouts {
		switch l.ID {
		case "center":
			if l.Key != "Mod4-Mod1-c" {
				t.Fatalf("expected center key, got %q", l.Key)
			}
		case "bottom-right-50":
			if l.Key != "" {
				t.Fatalf("expected disabled key, got %q", l.Key)
			}
		}
	}

	if _, err := client.Place("top-left-50"); err != nil {
		t.Fatalf("Place: %v", err)
	}
	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !status.DaemonRunning || status.PlacementsApplied != 1 || status.BoundKeys != 5 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestServer_StatusReportsGrabbedKeys(t *testing.T) {
	// Six bindings are configured but only two could be grabbed.
	client := startServer(t, ServerOptions{
		Placer:    &fakePlacer{},
		Displays:  testDisplays(),
		BoundKeys: func() int { return 2 },
	})

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.BoundKeys != 2 {
		t.Fatalf("expected grabbed key count 2, got %d", status.BoundKeys)
	}
}

func TestServer_ReloadSwapsConfig(t *testing.T) {
	reloaded := config.DefaultConfig()
	reloaded.Keybindings["center"] = "Mod4-space"
	reloadChan := make(chan *config.Config, 1)
	client := startServer(t, ServerOptions{
		Placer:     &fakePlacer{},
		Displays:   testDisplays(),
		Load:       func() (*config.Config, error) { return reloaded, nil },
		ReloadChan: reloadChan,
	})

	if err := client.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	select {
	case got := <-reloadChan:
		if got != reloaded {
			t.Fatalf("expected reloaded config on channel")
		}
	default:
		t.Fatalf("expected reload notification")
	}

	layouts, err := client.ListLayouts()
	if err != nil {
		t.Fatalf("ListLayouts: %v", err)
	}
	if layouts.Layouts[0].Key != "Mod4-space" {
		t.Fatalf("expected reloaded binding, got %+v", layouts.Layouts[0])
	}
}

func TestServer_ReloadFailureKeepsConfig(t *testing.T) {
	client := startServer(t, ServerOptions{
		Placer:   &fakePlacer{},
		Displays: testDisplays(),
		Load:     func() (*config.Config, error) { return nil, errors.New("bad yaml") },
	})

	if err := client.Reload(); err == nil || !strings.Contains(err.Error(), "bad yaml") {
		t.Fatalf("expected reload error, got %v", err)
	}
	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.BoundKeys != 6 {
		t.Fatalf("expected default bindings kept, got %d", status.BoundKeys)
	}
}

func TestClient_NoDaemon(t *testing.T) {
	client := NewClientAt(filepath.Join(t.TempDir(), "missing.sock"))
	if err := client.Ping(); err == nil || !strings.Contains(err.Error(), "is the daemon running?") {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestParseRequest_Invalid(t *testing.T) {
	if _, err := ParseRequest([]byte("{not json")); err == nil {
		t.Fatalf("expected parse error")
	}
}
