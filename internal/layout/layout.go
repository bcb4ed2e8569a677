package layout

import (
	"math"

	"github.com/1broseidon/winsnap/internal/geom"
)

// ID names one of the built-in placements. Each ID is also the command a
// hotkey sends to the dispatcher.
type ID string

const (
	Center        ID = "center"
	Center75      ID = "center-75"
	TopLeft50     ID = "top-left-50"
	TopRight50    ID = "top-right-50"
	BottomRight50 ID = "bottom-right-50"
	BottomLeft50  ID = "bottom-left-50"
)

// centerPercent is the work-area fraction used by Center75.
const centerPercent = 0.75

// Func computes the target bounds for a window given its current bounds and
// the work area of the display it should land on.
type Func func(current, workArea geom.Rect) geom.Rect

// Corner selects a quadrant of the work area.
type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomRight
	BottomLeft
)

var catalog = []struct {
	id ID
	fn Func
}{
	{Center, Centered},
	{Center75, func(_, wa geom.Rect) geom.Rect { return CenteredAtPercent(centerPercent, wa) }},
	{TopLeft50, quadrantFunc(TopLeft)},
	{TopRight50, quadrantFunc(TopRight)},
	{BottomRight50, quadrantFunc(BottomRight)},
	{BottomLeft50, quadrantFunc(BottomLeft)},
}

// aliases maps older command names onto catalog IDs.
var aliases = map[string]ID{
	"center-window": Center,
}

// IDs returns every layout ID in catalog order.
func IDs() []ID {
	out := make([]ID, len(catalog))
	for i, entry := range catalog {
		out[i] = entry.id
	}
	return out
}

// ParseID resolves a command name to a layout ID.
func ParseID(name string) (ID, bool) {
	if id, ok := aliases[name]; ok {
		return id, true
	}
	for _, entry := range catalog {
		if string(entry.id) == name {
			return entry.id, true
		}
	}
	return "", false
}

// Lookup returns the layout function for id.
func Lookup(id ID) (Func, bool) {
	for _, entry := range catalog {
		if entry.id == id {
			return entry.fn, true
		}
	}
	return nil, false
}

// Centered keeps the window's current size (capped to the work area) and
// centers it. A zero current dimension is treated as unknown and takes the
// work area's size.
func Centered(current, workArea geom.Rect) geom.Rect {
	width := workArea.Width
	if current.Width > 0 {
		width = min(current.Width, workArea.Width)
	}
	height := workArea.Height
	if current.Height > 0 {
		height = min(current.Height, workArea.Height)
	}
	return centeredRect(width, height, workArea)
}

// CenteredAtPercent sizes the window to percent of the work area on both axes
// and centers it. percent is expected in (0, 1].
func CenteredAtPercent(percent float64, workArea geom.Rect) geom.Rect {
	width := roundInt(float64(workArea.Width) * percent)
	height := roundInt(float64(workArea.Height) * percent)
	return centeredRect(width, height, workArea)
}

// Quadrant places the window in one quarter of the work area. Odd dimensions
// floor, leaving at most a 1px seam.
func Quadrant(corner Corner, workArea geom.Rect) geom.Rect {
	halfW := workArea.Width / 2
	halfH := workArea.Height / 2

	r := geom.Rect{X: workArea.X, Y: workArea.Y, Width: halfW, Height: halfH}
	switch corner {
	case TopRight:
		r.X += halfW
	case BottomRight:
		r.X += halfW
		r.Y += halfH
	case BottomLeft:
		r.Y += halfH
	}
	return geom.ClampToArea(r, workArea)
}

func quadrantFunc(corner Corner) Func {
	return func(_, workArea geom.Rect) geom.Rect {
		return Quadrant(corner, workArea)
	}
}

func centeredRect(width, height int, workArea geom.Rect) geom.Rect {
	r := geom.Rect{
		X:      workArea.X + roundInt(float64(workArea.Width-width)/2),
		Y:      workArea.Y + roundInt(float64(workArea.Height-height)/2),
		Width:  width,
		Height: height,
	}
	return geom.ClampToArea(r, workArea)
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
