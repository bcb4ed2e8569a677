//go:build linux

package platform

import (
	"fmt"
	"sort"

	"github.com/1broseidon/winsnap/internal/geom"
	"github.com/1broseidon/winsnap/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackendFromDisplay opens a fresh X11 connection to display.
// An empty display uses $DISPLAY.
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// StopEventLoop makes a running EventLoop return.
func (b *LinuxBackend) StopEventLoop() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// FocusedWindow returns the active window if it is a normal application window.
func (b *LinuxBackend) FocusedWindow() (Window, error) {
	conn, err := b.connection()
	if err != nil {
		return Window{}, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil || wid == 0 {
		return Window{}, ErrNoWindow
	}
	if !conn.IsNormalWindow(wid) {
		return Window{}, ErrNoWindow
	}
	return b.describe(wid)
}

// Window re-reads a window's state and geometry.
func (b *LinuxBackend) Window(id WindowID) (Window, error) {
	if _, err := b.connection(); err != nil {
		return Window{}, err
	}
	return b.describe(xproto.Window(id))
}

// SetWindowState requests a state transition. Only StateNormal is supported;
// it clears maximized and fullscreen states and maps a hidden window. The
// call returns after the X server has processed the requests.
func (b *LinuxBackend) SetWindowState(id WindowID, state WindowState) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	if state != StateNormal {
		return fmt.Errorf("unsupported window state %q", state)
	}
	if err := b.restore(conn, xproto.Window(id)); err != nil {
		return err
	}
	conn.Sync()
	return nil
}

// Displays returns all active displays ordered by ID.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, displayFromMonitor(m))
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

// SetWindowBounds moves and resizes a window after forcing it to the
// requested state.
func (b *LinuxBackend) SetWindowBounds(id WindowID, update BoundsUpdate) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	wid := xproto.Window(id)

	if update.State == StateNormal {
		if err := b.restore(conn, wid); err != nil {
			return err
		}
	}
	if !update.DrawAttention {
		if _, err := conn.RemoveStates(wid, x11.StateDemandsAttention); err != nil {
			return err
		}
	}

	r := update.Bounds
	return conn.MoveResizeWindow(wid, r.X, r.Y, r.Width, r.Height)
}

func (b *LinuxBackend) restore(conn *x11.Connection, wid xproto.Window) error {
	if _, err := conn.Unmaximize(wid); err != nil {
		return err
	}
	if stateFromAtoms(conn.WindowStates(wid)) == StateMinimized {
		if err := conn.Activate(wid); err != nil {
			return fmt.Errorf("failed to restore minimized window: %w", err)
		}
	}
	return nil
}

func (b *LinuxBackend) describe(wid xproto.Window) (Window, error) {
	conn := b.conn
	win := Window{
		ID:    WindowID(wid),
		Title: conn.WindowTitle(wid),
		State: stateFromAtoms(conn.WindowStates(wid)),
	}

	g, err := conn.WindowGeometry(wid)
	if err != nil {
		// An unmapped window has no geometry yet; report zero bounds.
		return win, nil
	}
	win.Bounds = geom.Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
	return win, nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}
