package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// stateRemove is the _NET_WM_STATE client message action for removal.
const stateRemove = 0

const (
	StateMaximizedHorz    = "_NET_WM_STATE_MAXIMIZED_HORZ"
	StateMaximizedVert    = "_NET_WM_STATE_MAXIMIZED_VERT"
	StateFullscreen       = "_NET_WM_STATE_FULLSCREEN"
	StateHidden           = "_NET_WM_STATE_HIDDEN"
	StateDemandsAttention = "_NET_WM_STATE_DEMANDS_ATTENTION"
)

// Geometry is a window's outer position in root coordinates and its size.
type Geometry struct {
	X      int
	Y      int
	Width  int
	Height int
}

// GetActiveWindow returns the window named by _NET_ACTIVE_WINDOW (0 when none).
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// WindowStates returns the raw _NET_WM_STATE atoms set on a window.
// A window without the property has no states.
func (c *Connection) WindowStates(windowID xproto.Window) []string {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return nil
	}
	return states
}

// RemoveStates asks the window manager to clear each of the given states that
// is currently set. It reports whether any request was sent.
func (c *Connection) RemoveStates(windowID xproto.Window, names ...string) (bool, error) {
	current := make(map[string]bool)
	for _, s := range c.WindowStates(windowID) {
		current[s] = true
	}

	sent := false
	for _, name := range names {
		if !current[name] {
			continue
		}
		if err := ewmh.WmStateReq(c.XUtil, windowID, stateRemove, name); err != nil {
			return sent, fmt.Errorf("failed to remove %s: %w", name, err)
		}
		sent = true
	}
	return sent, nil
}

// Unmaximize clears maximized and fullscreen states from a window.
func (c *Connection) Unmaximize(windowID xproto.Window) (bool, error) {
	return c.RemoveStates(windowID, StateMaximizedHorz, StateMaximizedVert, StateFullscreen)
}

// Activate raises and focuses a window through _NET_ACTIVE_WINDOW, which also
// maps a minimized window. The message is built by hand because the xgbutil
// ewmh request helpers panic on this library version (uint vs int assertion).
func (c *Connection) Activate(windowID xproto.Window) error {
	atomReply, err := xproto.InternAtom(c.XUtil.Conn(), false,
		uint16(len("_NET_ACTIVE_WINDOW")), "_NET_ACTIVE_WINDOW").Reply()
	if err != nil {
		return fmt.Errorf("failed to intern _NET_ACTIVE_WINDOW: %w", err)
	}

	const sourceIndication = 2 // pager/direct action
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   atomReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{sourceIndication, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// WindowGeometry returns a window's position translated to root coordinates.
func (c *Connection) WindowGeometry(windowID xproto.Window) (Geometry, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("failed to get geometry: %w", err)
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("failed to translate coordinates: %w", err)
	}

	return Geometry{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// WindowTitle returns _NET_WM_NAME, or "" when unset.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	name, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	return name
}

// MoveResizeWindow moves and resizes a window to the specified geometry.
// It fails only when both _NET_MOVERESIZE_WINDOW and the direct
// ConfigureWindow fallback are rejected.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// _NET_MOVERESIZE_WINDOW lets the WM account for decorations.
	netErr := ewmh.MoveresizeWindow(
		c.XUtil,
		windowID,
		x, y, width, height,
	)
	if netErr == nil {
		return nil
	}

	// Not every WM supports it; fall back to ConfigureWindow.
	mask, values := configureValues(x, y, width, height)
	fallbackErr := xproto.ConfigureWindowChecked(c.XUtil.Conn(), windowID, mask, values).Check()
	return moveResizeError(windowID, netErr, fallbackErr)
}

// configureValues builds the ConfigureWindow mask and value list for a
// move+resize. Negative coordinates are sent as two's complement.
func configureValues(x, y, width, height int) (uint16, []uint32) {
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY |
		xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
	return mask, []uint32{
		uint32(int32(x)),
		uint32(int32(y)),
		uint32(max(width, 1)),
		uint32(max(height, 1)),
	}
}

func moveResizeError(windowID xproto.Window, netErr, fallbackErr error) error {
	if fallbackErr == nil {
		return nil
	}
	return fmt.Errorf("failed to move window %d: _NET_MOVERESIZE_WINDOW: %v; ConfigureWindow: %w", windowID, netErr, fallbackErr)
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" {
			return true
		}
		// Reject desktop, dock, splash, etc.
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}
