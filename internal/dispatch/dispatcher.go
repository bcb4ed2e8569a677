package dispatch

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/1broseidon/winsnap/internal/display"
	"github.com/1broseidon/winsnap/internal/geom"
	"github.com/1broseidon/winsnap/internal/layout"
	"github.com/1broseidon/winsnap/internal/platform"
)

// Outcome summarizes what a placement did.
type Outcome string

const (
	OutcomeApplied  Outcome = "applied"
	OutcomeNoWindow Outcome = "no-window"
)

// ErrPanicked wraps a panic raised by the backend during a placement.
var ErrPanicked = errors.New("placement panicked")

// Result describes a completed placement.
type Result struct {
	Outcome   Outcome
	Layout    layout.ID
	WindowID  platform.WindowID
	DisplayID int
	Bounds    geom.Rect
}

// Dispatcher turns layout commands into window placements. It keeps no state
// between invocations beyond counters, so concurrent calls race only on the
// window itself.
type Dispatcher struct {
	backend platform.Backend
	logger  *slog.Logger
	applied atomic.Int64
}

// New creates a dispatcher. A nil logger discards output.
func New(backend platform.Backend, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{backend: backend, logger: logger}
}

// Applied returns how many placements have completed since start.
func (d *Dispatcher) Applied() int64 {
	return d.applied.Load()
}

// HandleCommand runs the placement named by command and never fails.
// Unknown commands are ignored. Host failures and panics are logged and
// dropped so the next command starts clean.
func (d *Dispatcher) HandleCommand(command string) {
	logger := d.logger.With("invocation", uuid.NewString(), "command", command)

	id, ok := layout.ParseID(command)
	if !ok {
		logger.Debug("ignoring unknown command")
		return
	}

	res, err := d.place(id, logger)
	if errors.Is(err, ErrPanicked) {
		logger.Error("placement panicked", "error", err)
		return
	}
	if err != nil {
		logger.Warn("placement failed", "error", err)
		return
	}
	if res.Outcome == OutcomeNoWindow {
		logger.Debug("no focused window")
	}
}

// Place applies layout id to the focused window and reports what happened.
// A missing focused window is not an error. A backend panic is returned as
// an error wrapping ErrPanicked.
func (d *Dispatcher) Place(id layout.ID) (Result, error) {
	return d.place(id, d.logger.With("invocation", uuid.NewString(), "command", string(id)))
}

func (d *Dispatcher) place(id layout.ID, logger *slog.Logger) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = Result{}, fmt.Errorf("%w: %v", ErrPanicked, r)
		}
	}()

	fn, ok := layout.Lookup(id)
	if !ok {
		return Result{}, fmt.Errorf("unknown layout %q", id)
	}

	win, err := d.resolveWindow(logger)
	if errors.Is(err, platform.ErrNoWindow) {
		return Result{Outcome: OutcomeNoWindow, Layout: id}, nil
	}
	if err != nil {
		return Result{}, err
	}

	displays, err := d.backend.Displays()
	if err != nil {
		return Result{}, fmt.Errorf("failed to enumerate displays: %w", err)
	}
	target, err := display.Select(win.Bounds, displays)
	if err != nil {
		return Result{}, err
	}
	logger.Debug("selected display",
		"display", target.ID,
		"name", target.Name,
		"work_area", target.WorkArea)

	bounds := fn(win.Bounds, target.WorkArea)
	update := platform.BoundsUpdate{
		Bounds:        bounds,
		State:         platform.StateNormal,
		DrawAttention: false,
	}
	if err := d.backend.SetWindowBounds(win.ID, update); err != nil {
		return Result{}, fmt.Errorf("failed to set bounds of window %d: %w", win.ID, err)
	}

	d.applied.Add(1)
	logger.Info("window placed",
		"window", win.ID,
		"display", target.ID,
		"x", bounds.X,
		"y", bounds.Y,
		"width", bounds.Width,
		"height", bounds.Height)

	return Result{
		Outcome:   OutcomeApplied,
		Layout:    id,
		WindowID:  win.ID,
		DisplayID: target.ID,
		Bounds:    bounds,
	}, nil
}

// resolveWindow returns the focused window with bounds that are meaningful
// for layout math. Maximized, fullscreen and docked windows are restored and
// re-read, since the state change may not be reflected synchronously.
func (d *Dispatcher) resolveWindow(logger *slog.Logger) (platform.Window, error) {
	win, err := d.backend.FocusedWindow()
	if err != nil {
		if errors.Is(err, platform.ErrNoWindow) {
			return platform.Window{}, err
		}
		return platform.Window{}, fmt.Errorf("failed to resolve focused window: %w", err)
	}
	if win.ID == 0 {
		return platform.Window{}, platform.ErrNoWindow
	}

	if !win.State.NeedsRestore() {
		return win, nil
	}

	logger.Debug("restoring window before placement", "window", win.ID, "state", win.State)
	if err := d.backend.SetWindowState(win.ID, platform.StateNormal); err != nil {
		return platform.Window{}, fmt.Errorf("failed to restore window %d: %w", win.ID, err)
	}
	refreshed, err := d.backend.Window(win.ID)
	if err != nil {
		return platform.Window{}, fmt.Errorf("failed to re-read window %d: %w", win.ID, err)
	}
	return refreshed, nil
}
