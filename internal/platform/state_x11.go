package platform

import (
	"github.com/1broseidon/winsnap/internal/geom"
	"github.com/1broseidon/winsnap/internal/x11"
)

// stateFromAtoms maps _NET_WM_STATE atoms onto a WindowState. X11 has no
// docked state. Fullscreen wins over maximized, and hidden over both.
func stateFromAtoms(atoms []string) WindowState {
	state := StateNormal
	for _, atom := range atoms {
		switch atom {
		case x11.StateHidden:
			return StateMinimized
		case x11.StateFullscreen:
			state = StateFullscreen
		case x11.StateMaximizedHorz, x11.StateMaximizedVert:
			if state == StateNormal {
				state = StateMaximized
			}
		}
	}
	return state
}

func displayFromMonitor(m x11.Monitor) Display {
	return Display{
		ID:       m.ID,
		Name:     m.Name,
		Primary:  m.Primary,
		Bounds:   rectFromArea(m.Bounds),
		WorkArea: rectFromArea(m.WorkArea),
	}
}

func rectFromArea(a x11.Area) geom.Rect {
	return geom.Rect{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height}
}
