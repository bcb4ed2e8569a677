package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Area is a rectangle in root-window coordinates.
type Area struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Monitor represents a physical display
type Monitor struct {
	ID      int
	Name    string
	Primary bool
	Bounds  Area
	// WorkArea is Bounds minus panels and docks.
	WorkArea Area
}

// GetMonitors retrieves all active monitors using XRandR, with their work
// areas resolved.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primary = reply.Output
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		isPrimary := false
		for _, out := range crtcInfo.Outputs {
			if primary != 0 && out == primary {
				isPrimary = true
				break
			}
		}

		bounds := Area{
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		}
		monitors = append(monitors, Monitor{
			ID:       i,
			Name:     outputName,
			Primary:  isPrimary,
			Bounds:   bounds,
			WorkArea: bounds,
		})
	}

	c.applyWorkAreas(monitors)
	return monitors, nil
}

// applyWorkAreas shrinks each monitor's WorkArea by the dock struts that
// touch it. Without any struts, the desktop-wide _NET_WORKAREA is
// intersected with each monitor instead.
func (c *Connection) applyWorkAreas(monitors []Monitor) {
	struts, ok := c.dockStruts()
	for i := range monitors {
		mon := &monitors[i]
		if ok && applyStruts(mon, struts) {
			continue
		}
		if wa, ok := c.desktopWorkArea(); ok {
			if isect, ok := intersect(mon.Bounds, wa); ok {
				mon.WorkArea = isect
			}
		}
	}
}

func (c *Connection) desktopWorkArea() (Area, bool) {
	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return Area{}, false
	}
	desktopIndex := 0
	if currentDesktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil {
		if int(currentDesktop) < len(workArea) {
			desktopIndex = int(currentDesktop)
		}
	}
	wa := workArea[desktopIndex]
	return Area{X: int(wa.X), Y: int(wa.Y), Width: int(wa.Width), Height: int(wa.Height)}, true
}

type rootStruts struct {
	rootWidth  int
	rootHeight int
	partials   []*ewmh.WmStrutPartial
}

// dockStruts collects the strut reservations of every dock window.
func (c *Connection) dockStruts() (rootStruts, bool) {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return rootStruts{}, false
	}
	out := rootStruts{
		rootWidth:  int(rootGeom.Width),
		rootHeight: int(rootGeom.Height),
	}

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return rootStruts{}, false
	}

	for _, windowID := range clients {
		if !c.isDock(windowID) {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			out.partials = append(out.partials, sp)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			out.partials = append(out.partials, &ewmh.WmStrutPartial{
				Left:       s.Left,
				Right:      s.Right,
				Top:        s.Top,
				Bottom:     s.Bottom,
				LeftEndY:   uint(out.rootHeight - 1),
				RightEndY:  uint(out.rootHeight - 1),
				TopEndX:    uint(out.rootWidth - 1),
				BottomEndX: uint(out.rootWidth - 1),
			})
		}
	}
	return out, len(out.partials) > 0
}

func (c *Connection) isDock(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

type edges struct {
	left   int
	right  int
	top    int
	bottom int
}

// applyStruts reports whether any strut touched the monitor.
func applyStruts(mon *Monitor, struts rootStruts) bool {
	var acc edges
	for _, sp := range struts.partials {
		accumulateStrut(mon.Bounds, struts.rootWidth, struts.rootHeight, sp, &acc)
	}
	if acc == (edges{}) {
		return false
	}

	wa := mon.Bounds
	wa.X += acc.left
	wa.Y += acc.top
	wa.Width = max(1, wa.Width-(acc.left+acc.right))
	wa.Height = max(1, wa.Height-(acc.top+acc.bottom))
	mon.WorkArea = wa
	return true
}

func accumulateStrut(mon Area, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *edges) {
	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		band := Area{X: int(sp.TopStartX), Y: 0, Width: int(sp.TopEndX) + 1 - int(sp.TopStartX), Height: int(sp.Top)}
		if isect, ok := intersect(mon, band); ok {
			acc.top = max(acc.top, isect.Height)
		}
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		band := Area{X: int(sp.BottomStartX), Y: rootHeight - int(sp.Bottom), Width: int(sp.BottomEndX) + 1 - int(sp.BottomStartX), Height: int(sp.Bottom)}
		if isect, ok := intersect(mon, band); ok {
			acc.bottom = max(acc.bottom, isect.Height)
		}
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		band := Area{X: 0, Y: int(sp.LeftStartY), Width: int(sp.Left), Height: int(sp.LeftEndY) + 1 - int(sp.LeftStartY)}
		if isect, ok := intersect(mon, band); ok {
			acc.left = max(acc.left, isect.Width)
		}
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		band := Area{X: rootWidth - int(sp.Right), Y: int(sp.RightStartY), Width: int(sp.Right), Height: int(sp.RightEndY) + 1 - int(sp.RightStartY)}
		if isect, ok := intersect(mon, band); ok {
			acc.right = max(acc.right, isect.Width)
		}
	}
}

func intersect(a, b Area) (Area, bool) {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)
	if x2 <= x1 || y2 <= y1 {
		return Area{}, false
	}
	return Area{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, true
}
