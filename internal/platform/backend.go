package platform

import (
	"errors"

	"github.com/1broseidon/winsnap/internal/geom"
)

// ErrNoWindow reports that no focused normal window could be resolved.
var ErrNoWindow = errors.New("no focused window")

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// WindowState describes how the window manager is presenting a window.
type WindowState string

const (
	StateNormal     WindowState = "normal"
	StateMaximized  WindowState = "maximized"
	StateFullscreen WindowState = "fullscreen"
	StateDocked     WindowState = "docked"
	StateMinimized  WindowState = "minimized"
)

// NeedsRestore reports whether bounds reported in this state are unreliable
// for layout math and the window must be returned to normal first.
func (s WindowState) NeedsRestore() bool {
	switch s {
	case StateMaximized, StateFullscreen, StateDocked:
		return true
	}
	return false
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID       int
	Name     string
	Primary  bool
	Bounds   geom.Rect
	WorkArea geom.Rect
}

// Window contains the state and geometry of a top-level window. Bounds is
// zero-valued when the window has no readable geometry yet.
type Window struct {
	ID     WindowID
	Title  string
	State  WindowState
	Bounds geom.Rect
}

// BoundsUpdate is a request to move, resize and restore a window.
type BoundsUpdate struct {
	Bounds        geom.Rect
	State         WindowState
	DrawAttention bool
}

// Backend abstracts the window-system calls the dispatcher makes.
type Backend interface {
	FocusedWindow() (Window, error)
	Window(id WindowID) (Window, error)
	SetWindowState(id WindowID, state WindowState) error
	Displays() ([]Display, error)
	SetWindowBounds(id WindowID, update BoundsUpdate) error
}
